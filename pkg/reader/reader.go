// Package reader turns a tree of HCL build description files into a lazy
// stream of Contexts, one per file.
//
// Reading starts at <topsrcdir>/<build file> and follows each file's dirs
// breadth-first in declaration order. A file is parsed only when the next
// Context is pulled from the stream.
package reader

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/filesystem"
	"github.com/arthur-debert/treegen/pkg/logging"
	"github.com/arthur-debert/treegen/pkg/stream"
	"github.com/arthur-debert/treegen/pkg/timing"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DefaultBuildFile is the description file name looked up in every directory.
const DefaultBuildFile = "build.hcl"

// Reader reads HCL build descriptions.
type Reader struct {
	fs        afero.Fs
	config    *types.Config
	buildFile string
	parser    *hclparse.Parser
	watch     *timing.Stopwatch
	files     int
	logger    zerolog.Logger
}

// New creates a Reader over fsys. An empty buildFile means DefaultBuildFile.
func New(fsys afero.Fs, cfg *types.Config, buildFile string) *Reader {
	if buildFile == "" {
		buildFile = DefaultBuildFile
	}
	return &Reader{
		fs:        fsys,
		config:    cfg,
		buildFile: buildFile,
		parser:    hclparse.NewParser(),
		watch:     timing.NewStopwatch(),
		logger:    logging.GetLogger("reader"),
	}
}

// Read returns the Context stream. Nothing is parsed until the first Next.
func (r *Reader) Read() *stream.Stream[*types.Context] {
	queue := []string{""}
	seen := map[string]bool{"": true}

	return stream.New(func() (*types.Context, bool, error) {
		if len(queue) == 0 {
			return nil, false, nil
		}
		r.watch.Start()
		defer r.watch.Stop()

		rel := queue[0]
		queue = queue[1:]

		ctx, err := r.readDir(rel)
		if err != nil {
			return nil, false, err
		}

		for _, dir := range ctx.Strings(types.VarDirs) {
			child, err := childDir(rel, dir)
			if err != nil {
				return nil, false, err.WithDetail("file", ctx.MainPath())
			}
			if seen[child] {
				return nil, false, errors.Newf(errors.ErrConfigValid, "directory %s is listed more than once", child).
					WithDetail("file", ctx.MainPath())
			}
			seen[child] = true
			queue = append(queue, child)
		}
		return ctx, true, nil
	})
}

// Files is the number of description files read so far.
func (r *Reader) Files() int { return r.files }

// Summary reports the time spent reading.
func (r *Reader) Summary() timing.ExecutionSummary {
	return timing.ExecutionSummary{
		Name:    "reader",
		Elapsed: r.watch.Elapsed(),
		Text:    fmt.Sprintf("Finished reading %d build files in %%.2fs", r.files),
	}
}

func childDir(parent, dir string) (string, *errors.TreegenError) {
	if dir == "" || path.IsAbs(dir) {
		return "", errors.Newf(errors.ErrConfigValid, "invalid directory %q in dirs", dir)
	}
	child := path.Clean(path.Join(parent, dir))
	if child == "." || child == ".." || strings.HasPrefix(child, "../") {
		return "", errors.Newf(errors.ErrConfigValid, "directory %q escapes the source tree", dir)
	}
	return child, nil
}

func (r *Reader) readDir(rel string) (*types.Context, error) {
	srcDir := filepath.Join(r.config.TopSrcDir, filepath.FromSlash(rel))
	file := filepath.Join(srcDir, r.buildFile)

	content, exists, err := filesystem.ReadFileIfExists(r.fs, file)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errors.Newf(errors.ErrConfigValid, "build description %s does not exist", file).
			WithDetail("dir", rel)
	}

	hclFile, diags := r.parser.ParseHCL(content, file)
	if diags.HasErrors() {
		return nil, diagError(file, diags)
	}

	var root fileRoot
	evalCtx := evalContext(r.config, srcDir, rel)
	if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
		return nil, diagError(file, diags)
	}

	vars, err := toVars(&root, evalCtx)
	if err != nil {
		if te, ok := err.(*errors.TreegenError); ok {
			return nil, te.WithDetail("file", file)
		}
		return nil, err
	}

	r.files++
	r.logger.Debug().Str("file", file).Int("vars", len(vars)).Msg("Read build description")
	return types.NewContext(r.config, rel, vars, file, []string{file}), nil
}

func diagError(file string, diags hcl.Diagnostics) error {
	return errors.Wrapf(diags, errors.ErrConfigParse, "failed to parse %s", file).
		WithDetail("file", file)
}
