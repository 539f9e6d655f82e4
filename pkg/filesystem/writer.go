package filesystem

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/logging"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/go-diff/diff"
	"github.com/spf13/afero"
)

// WriteStatus is the outcome of writing one file.
type WriteStatus int

const (
	StatusUnchanged WriteStatus = iota
	StatusCreated
	StatusUpdated
	StatusDeleted
)

func (s WriteStatus) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusUpdated:
		return "updated"
	case StatusDeleted:
		return "deleted"
	default:
		return "unchanged"
	}
}

// Counts tallies what a writer did.
type Counts struct {
	Created   int
	Updated   int
	Unchanged int
	Deleted   int
}

// Total is the number of files written or kept, excluding deletions.
func (c Counts) Total() int {
	return c.Created + c.Updated + c.Unchanged
}

// AvoidWriter writes generated files without touching the ones whose
// content did not change, so their timestamps do not trigger rebuilds.
type AvoidWriter struct {
	fs           afero.Fs
	dryRun       bool
	captureDiffs bool
	counts       Counts
	diffs        map[string]string
	outputs      map[string]struct{}
	logger       zerolog.Logger
}

func NewAvoidWriter(fsys afero.Fs) *AvoidWriter {
	return &AvoidWriter{
		fs:      fsys,
		diffs:   make(map[string]string),
		outputs: make(map[string]struct{}),
		logger:  logging.GetLogger("filesystem.writer"),
	}
}

// SetDryRun makes the writer compute outcomes without writing anything.
func (w *AvoidWriter) SetDryRun(dryRun bool) { w.dryRun = dryRun }

// SetCaptureDiffs records a unified diff for every changed file.
func (w *AvoidWriter) SetCaptureDiffs(capture bool) { w.captureDiffs = capture }

func (w *AvoidWriter) Fs() afero.Fs { return w.fs }

// Write stores content at path unless the file already holds exactly that.
func (w *AvoidWriter) Write(path string, content []byte) (WriteStatus, error) {
	w.outputs[path] = struct{}{}

	existing, exists, err := ReadFileIfExists(w.fs, path)
	if err != nil {
		return StatusUnchanged, err
	}

	status := StatusCreated
	if exists {
		if string(existing) == string(content) {
			w.counts.Unchanged++
			w.logger.Trace().Str("path", path).Msg("Unchanged")
			return StatusUnchanged, nil
		}
		status = StatusUpdated
	}

	if w.captureDiffs {
		w.recordDiff(path, string(existing), string(content))
	}

	if !w.dryRun {
		if err := w.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return status, errors.Wrapf(err, errors.ErrBackendWrite, "cannot create directory for %s", path)
		}
		if err := afero.WriteFile(w.fs, path, content, 0644); err != nil {
			return status, errors.Wrapf(err, errors.ErrBackendWrite, "cannot write %s", path)
		}
	}

	if status == StatusCreated {
		w.counts.Created++
	} else {
		w.counts.Updated++
	}
	w.logger.Debug().Str("path", path).Str("status", status.String()).Bool("dryRun", w.dryRun).Msg("Wrote file")
	return status, nil
}

// WriteString is Write for text.
func (w *AvoidWriter) WriteString(path, content string) (WriteStatus, error) {
	return w.Write(path, []byte(content))
}

// Remove deletes a previously generated file. Missing files are ignored.
func (w *AvoidWriter) Remove(path string) error {
	existing, exists, err := ReadFileIfExists(w.fs, path)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if w.captureDiffs {
		w.recordDiff(path, string(existing), "")
	}
	if !w.dryRun {
		if err := w.fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, errors.ErrBackendWrite, "cannot remove %s", path)
		}
	}
	w.counts.Deleted++
	w.logger.Debug().Str("path", path).Bool("dryRun", w.dryRun).Msg("Removed stale file")
	return nil
}

func (w *AvoidWriter) recordDiff(path, before, after string) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	})
	if err != nil {
		w.logger.Warn().Err(err).Str("path", path).Msg("Cannot compute diff")
		return
	}
	if text != "" {
		w.diffs[path] = text
	}
}

// splitLines keeps line endings and terminates a trailing partial line so
// hunks stay well formed.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if last := lines[len(lines)-1]; last == "" {
		lines = lines[:len(lines)-1]
	} else {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}

func (w *AvoidWriter) Counts() Counts { return w.counts }

// Diffs returns a copy of the recorded diffs keyed by path.
func (w *AvoidWriter) Diffs() map[string]string {
	out := make(map[string]string, len(w.diffs))
	for k, v := range w.diffs {
		out[k] = v
	}
	return out
}

// Outputs lists every path passed to Write, sorted.
func (w *AvoidWriter) Outputs() []string {
	paths := make([]string, 0, len(w.outputs))
	for p := range w.outputs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// DiffStat counts added and deleted lines of a unified diff.
func DiffStat(text string) (added, deleted int, err error) {
	fileDiff, err := diff.ParseFileDiff([]byte(text))
	if err != nil {
		return 0, 0, errors.Wrap(err, errors.ErrInvalidInput, "cannot parse diff")
	}
	for _, hunk := range fileDiff.Hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				added++
			case strings.HasPrefix(line, "-"):
				deleted++
			}
		}
	}
	return added, deleted, nil
}
