// Package pipeline runs a whole generation: read the build descriptions,
// emit build objects, and hand them to every selected backend.
//
// Read and emit are lazy and single-pass. With more than one backend the
// object stream is materialized first so that each backend sees every
// object; with a single backend it streams straight through.
package pipeline

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/arthur-debert/treegen/pkg/backend"
	"github.com/arthur-debert/treegen/pkg/emitter"
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/filesystem"
	"github.com/arthur-debert/treegen/pkg/logging"
	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/reader"
	"github.com/arthur-debert/treegen/pkg/stream"
	"github.com/arthur-debert/treegen/pkg/timing"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/spf13/afero"

	// Register the bundled backends.
	_ "github.com/arthur-debert/treegen/pkg/backend/all"
)

// RejectedEnv are legacy overrides that are refused outright.
var RejectedEnv = []string{"CONFIG_FILES", "CONFIG_HEADERS"}

// ContextSource produces the Context stream. The HCL reader is the default.
type ContextSource interface {
	Read() *stream.Stream[*types.Context]
	Summary() timing.ExecutionSummary
}

// Options configure a Run.
type Options struct {
	Config *types.Config
	// Fs defaults to the real filesystem.
	Fs afero.Fs
	// Backends to run, in order. Empty selects backend.DefaultNames.
	Backends []string
	// NotTopObjDir keeps Config.TopObjDir instead of the working directory.
	NotTopObjDir bool
	DryRun       bool
	Diff         bool

	BuildFile string
	// FilesPerUnifiedFile is the default batch size. Nil selects
	// emitter.DefaultFilesPerUnifiedFile.
	FilesPerUnifiedFile *int

	// Source replaces the HCL reader. It is built from the final Config.
	Source func(fsys afero.Fs, cfg *types.Config) ContextSource

	// Process environment, replaceable in tests. Env has the
	// os.LookupEnv contract: a variable set to "" is present.
	Env    func(string) (string, bool)
	Getwd  func() (string, error)
	HostOS string
}

// FileDiff is one changed output with its line counts.
type FileDiff struct {
	Path    string
	Added   int
	Deleted int
	Text    string
}

// Result is everything a run reports.
type Result struct {
	Config *types.Config
	// Backends lists the selected backend names in run order.
	Backends []string
	// Summaries are the reader, the emitter, then each backend.
	Summaries  []timing.ExecutionSummary
	Totals     timing.Totals
	Objects    int
	Diffs      []FileDiff
	Advisories []Advisory
}

func (o *Options) defaults() {
	if o.Fs == nil {
		o.Fs = filesystem.NewOS()
	}
	if o.Env == nil {
		o.Env = os.LookupEnv
	}
	if o.Getwd == nil {
		o.Getwd = workingDir
	}
	if o.HostOS == "" {
		o.HostOS = runtime.GOOS
	}
	if o.Source == nil {
		buildFile := o.BuildFile
		o.Source = func(fsys afero.Fs, cfg *types.Config) ContextSource {
			return reader.New(fsys, cfg, buildFile)
		}
	}
}

// CheckEnvironment fails with CONFIG_INVALID when any RejectedEnv variable
// is present, even if empty.
func CheckEnvironment(lookup func(string) (string, bool)) error {
	for _, name := range RejectedEnv {
		if _, ok := lookup(name); ok {
			return errors.Newf(errors.ErrConfigValid,
				"using the %s environment variable is not supported", name).
				WithDetail("variable", name)
		}
	}
	return nil
}

// Run executes the pipeline. Every error aborts the run.
func Run(opts Options) (*Result, error) {
	logger := logging.GetLogger("pipeline")
	wallStart := time.Now()
	cpuStart := timing.ProcessCPUTime()
	opts.defaults()

	if err := CheckEnvironment(opts.Env); err != nil {
		return nil, err
	}

	if opts.Config == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no configuration given")
	}
	cfg := opts.Config
	if !filepath.IsAbs(cfg.TopSrcDir) {
		return nil, errors.Newf(errors.ErrConfigValid, "topsrcdir must be an absolute path, got %q", cfg.TopSrcDir).
			WithDetail("topsrcdir", cfg.TopSrcDir)
	}
	if !opts.NotTopObjDir {
		wd, err := opts.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine the working directory")
		}
		cfg = cfg.WithTopObjDir(wd)
	}

	names := opts.Backends
	if len(names) == 0 {
		names = backend.DefaultNames(cfg)
	}
	if err := backend.Validate(names); err != nil {
		return nil, err
	}
	names = uniqueNames(names)
	backends := make([]backend.Backend, 0, len(names))
	for _, name := range names {
		b, err := backend.New(name, cfg, opts.Fs)
		if err != nil {
			return nil, err
		}
		b.SetDryRun(opts.DryRun)
		b.SetCaptureDiffs(opts.Diff)
		backends = append(backends, b)
	}

	logger.Info().
		Str("topsrcdir", cfg.TopSrcDir).
		Str("topobjdir", cfg.TopObjDir).
		Strs("backends", names).
		Bool("dryRun", opts.DryRun).
		Msg("Starting generation")

	source := opts.Source(opts.Fs, cfg)
	em := emitter.New(opts.Fs, emitter.Options{FilesPerUnifiedFile: opts.FilesPerUnifiedFile})
	objs := em.Emit(source.Read())

	var materialized []objects.Object
	if len(backends) > 1 {
		var err error
		if materialized, err = objs.Collect(); err != nil {
			return nil, err
		}
		logger.Debug().Int("objects", len(materialized)).Msg("Materialized build objects for fan-out")
	}

	for _, b := range backends {
		input := objs
		if materialized != nil {
			input = stream.FromSlice(materialized)
		}
		done := logging.LogOperationStart(logger, "backend "+b.Name())
		if err := b.Consume(input); err != nil {
			return nil, err
		}
		done()
	}

	result := &Result{
		Config:    cfg,
		Backends:  names,
		Summaries: []timing.ExecutionSummary{source.Summary(), em.Summary()},
		Objects:   em.Emitted(),
	}
	for _, b := range backends {
		result.Summaries = append(result.Summaries, b.Summary())
	}

	if _, ok := opts.Env(EnvWriteBuildInfo); ok {
		if err := writeBuildInfo(opts.Fs, cfg, names, opts.DryRun); err != nil {
			return nil, err
		}
	}

	if opts.Diff {
		diffs, err := mergeDiffs(backends)
		if err != nil {
			return nil, err
		}
		result.Diffs = diffs
	}
	result.Advisories = advisories(cfg, opts.HostOS, names)

	result.Totals = timing.Totals{
		Wall:    time.Since(wallStart),
		CPU:     timing.ProcessCPUTime() - cpuStart,
		Tracked: timing.Sum(result.Summaries...),
	}
	logger.Info().
		Int("objects", result.Objects).
		Dur("wall", result.Totals.Wall).
		Msg("Generation complete")
	return result, nil
}

// uniqueNames drops repeated backend names, keeping first occurrences.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}
