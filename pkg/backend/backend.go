// Package backend holds what every code generation backend shares: the
// consume loop with its timing, avoid-write output with dry-run and diff
// capture, removal of outputs a previous run produced but this one did
// not, and the registry backends are selected from.
package backend

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/treegen/pkg/filesystem"
	"github.com/arthur-debert/treegen/pkg/logging"
	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/stream"
	"github.com/arthur-debert/treegen/pkg/timing"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Backend turns build objects into files for some build system.
type Backend interface {
	Name() string
	// Consume drains objs, generating output as it goes.
	Consume(objs *stream.Stream[objects.Object]) error
	Summary() timing.ExecutionSummary
	SetDryRun(dryRun bool)
	SetCaptureDiffs(capture bool)
	// FileDiffs maps output paths to unified diffs of what changed.
	FileDiffs() map[string]string
}

// Handler is what a concrete backend implements on top of Base.
type Handler interface {
	ConsumeObject(obj objects.Object) error
	// Finish runs after the last object. Linkage is final by then.
	Finish() error
}

// Base implements Backend around a Handler.
type Base struct {
	name    string
	config  *types.Config
	writer  *filesystem.AvoidWriter
	watch   *timing.Stopwatch
	handler Handler
	logger  zerolog.Logger
}

func NewBase(name string, cfg *types.Config, fsys afero.Fs, h Handler) *Base {
	return &Base{
		name:    name,
		config:  cfg,
		writer:  filesystem.NewAvoidWriter(fsys),
		watch:   timing.NewStopwatch(),
		handler: h,
		logger:  logging.GetLogger("backend." + strings.ToLower(name)),
	}
}

func (b *Base) Name() string                    { return b.name }
func (b *Base) Config() *types.Config           { return b.config }
func (b *Base) Logger() *zerolog.Logger         { return &b.logger }
func (b *Base) SetDryRun(dryRun bool)           { b.writer.SetDryRun(dryRun) }
func (b *Base) SetCaptureDiffs(capture bool)    { b.writer.SetCaptureDiffs(capture) }
func (b *Base) FileDiffs() map[string]string    { return b.writer.Diffs() }
func (b *Base) Counts() filesystem.Counts       { return b.writer.Counts() }
func (b *Base) Writer() *filesystem.AvoidWriter { return b.writer }

// WriteFile writes an output through the avoid-write layer.
func (b *Base) WriteFile(path, content string) error {
	_, err := b.writer.WriteString(path, content)
	return err
}

// Consume times only the backend's own work, not the production of objs.
func (b *Base) Consume(objs *stream.Stream[objects.Object]) error {
	for {
		obj, ok := objs.Next()
		if !ok {
			break
		}
		if err := b.watch.Time(func() error { return b.handler.ConsumeObject(obj) }); err != nil {
			return err
		}
	}
	if err := objs.Err(); err != nil {
		return err
	}

	return b.watch.Time(func() error {
		if err := b.handler.Finish(); err != nil {
			return err
		}
		return b.purgeStale()
	})
}

// ListFile records the outputs of the last run, relative to topobjdir.
func (b *Base) ListFile() string {
	return filepath.Join(b.config.TopObjDir, "backend."+b.name)
}

func (b *Base) purgeStale() error {
	listFile := b.ListFile()
	current := make(map[string]bool)
	var lines []string
	for _, p := range b.writer.Outputs() {
		rel, err := filepath.Rel(b.config.TopObjDir, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)
		current[rel] = true
		lines = append(lines, rel)
	}
	sort.Strings(lines)

	previous, _, err := filesystem.ReadFileIfExists(b.writer.Fs(), listFile)
	if err != nil {
		return err
	}
	for _, rel := range strings.Split(string(previous), "\n") {
		rel = strings.TrimSpace(rel)
		if rel == "" || current[rel] {
			continue
		}
		stale := filepath.Join(b.config.TopObjDir, filepath.FromSlash(rel))
		if err := b.writer.Remove(stale); err != nil {
			return err
		}
	}

	content := strings.Join(lines, "\n")
	if content != "" {
		content += "\n"
	}
	return b.WriteFile(listFile, content)
}

func (b *Base) Summary() timing.ExecutionSummary {
	c := b.writer.Counts()
	text := fmt.Sprintf("%s backend executed in %%.2fs\n  %d total backend files; %d created; %d updated; %d unchanged; %d deleted",
		b.name, c.Total(), c.Created, c.Updated, c.Unchanged, c.Deleted)
	return timing.ExecutionSummary{
		Name:    b.name,
		Elapsed: b.watch.Elapsed(),
		Text:    text,
	}
}
