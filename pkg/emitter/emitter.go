// Package emitter converts the Context stream into build objects.
//
// Objects are produced lazily, a Context at a time. Linkage cannot be
// resolved until every library in the tree is known, so USE_LIBS and
// OS_LIBS are recorded as they are seen and applied once the Context stream
// is exhausted, before the object stream reports its end.
package emitter

import (
	"fmt"

	"github.com/arthur-debert/treegen/pkg/logging"
	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/stream"
	"github.com/arthur-debert/treegen/pkg/timing"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DefaultFilesPerUnifiedFile applies when neither the description nor the
// options say otherwise.
const DefaultFilesPerUnifiedFile = 16

// Options tune the emitter. A nil FilesPerUnifiedFile selects
// DefaultFilesPerUnifiedFile; zero or one disables unification.
type Options struct {
	FilesPerUnifiedFile *int
}

// Emitter builds objects into an arena it owns.
type Emitter struct {
	fs      afero.Fs
	opts    Options
	arena   *objects.Arena
	linker  *linker
	watch   *timing.Stopwatch
	emitted int
	logger  zerolog.Logger
}

func New(fsys afero.Fs, opts Options) *Emitter {
	if opts.FilesPerUnifiedFile == nil {
		n := DefaultFilesPerUnifiedFile
		opts.FilesPerUnifiedFile = &n
	}
	arena := objects.NewArena()
	return &Emitter{
		fs:     fsys,
		opts:   opts,
		arena:  arena,
		linker: newLinker(),
		watch:  timing.NewStopwatch(),
		logger: logging.GetLogger("emitter"),
	}
}

// Emit returns the object stream for contexts. Time spent pulling from
// contexts is not counted as emitter time.
func (e *Emitter) Emit(contexts *stream.Stream[*types.Context]) *stream.Stream[objects.Object] {
	var pending []objects.Object
	finished := false

	return stream.New(func() (objects.Object, bool, error) {
		for len(pending) == 0 {
			if finished {
				return nil, false, nil
			}
			ctx, ok := contexts.Next()
			if !ok {
				if err := contexts.Err(); err != nil {
					return nil, false, err
				}
				finished = true
				if err := e.watch.Time(e.linker.link); err != nil {
					return nil, false, err
				}
				e.logger.Debug().Int("objects", e.arena.Len()).Msg("Linked build objects")
				return nil, false, nil
			}

			e.watch.Start()
			objs, err := e.emitContext(ctx)
			e.watch.Stop()
			if err != nil {
				return nil, false, err
			}
			pending = objs
		}

		obj := pending[0]
		pending = pending[1:]
		e.emitted++
		return obj, true, nil
	})
}

// Arena holds every object emitted so far.
func (e *Emitter) Arena() *objects.Arena { return e.arena }

// Emitted counts the objects handed out.
func (e *Emitter) Emitted() int { return e.emitted }

func (e *Emitter) Summary() timing.ExecutionSummary {
	return timing.ExecutionSummary{
		Name:    "emitter",
		Elapsed: e.watch.Elapsed(),
		Text:    fmt.Sprintf("Processed into %d build config descriptors in %%.2fs", e.emitted),
	}
}
