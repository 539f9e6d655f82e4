// pkg/backend/backend_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Memory filesystem
// PURPOSE: Test the shared consume loop, avoid-write counts, dry-run, diffs and stale purge

package backend_test

import (
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/treegen/pkg/backend"
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/stream"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder writes a fixed set of files when it finishes.
type recorder struct {
	*backend.Base
	files    map[string]string
	seen     []objects.Type
	finished bool
	fail     error
}

func newRecorder(cfg *types.Config, fsys afero.Fs, files map[string]string) *recorder {
	r := &recorder{files: files}
	r.Base = backend.NewBase("Recorder", cfg, fsys, r)
	return r
}

func (r *recorder) ConsumeObject(obj objects.Object) error {
	if r.fail != nil {
		return r.fail
	}
	r.seen = append(r.seen, obj.Type())
	return nil
}

func (r *recorder) Finish() error {
	r.finished = true
	for rel, content := range r.files {
		if err := r.WriteFile(filepath.Join(r.Config().TopObjDir, rel), content); err != nil {
			return err
		}
	}
	r.Logger().Debug().Int("files", len(r.files)).Msg("Wrote recorder files")
	return nil
}

func testConfig() *types.Config {
	return types.NewConfig("/src", "/obj", nil, nil, nil)
}

func someObjects(cfg *types.Config) []objects.Object {
	ctx := types.NewContext(cfg, "", nil, "/src/build.hcl", nil)
	return []objects.Object{
		objects.NewDirectoryTraversal(ctx, nil),
		objects.NewInstallationTarget(ctx),
	}
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	content, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(content)
}

func TestConsumeWritesAndCounts(t *testing.T) {
	cfg := testConfig()
	fsys := afero.NewMemMapFs()
	files := map[string]string{"a/backend.mk": "A\n", "b/backend.mk": "B\n"}

	first := newRecorder(cfg, fsys, files)
	require.NoError(t, first.Consume(stream.FromSlice(someObjects(cfg))))

	assert.True(t, first.finished)
	assert.Equal(t, []objects.Type{objects.TypeDirectoryTraversal, objects.TypeInstallationTarget}, first.seen)
	assert.Equal(t, 3, first.Counts().Created)
	assert.Equal(t, "a/backend.mk\nb/backend.mk\n", readFile(t, fsys, "/obj/backend.Recorder"))
	assert.Equal(t, "A\n", readFile(t, fsys, "/obj/a/backend.mk"))

	second := newRecorder(cfg, fsys, files)
	require.NoError(t, second.Consume(stream.FromSlice(someObjects(cfg))))
	counts := second.Counts()
	assert.Equal(t, 0, counts.Created)
	assert.Equal(t, 0, counts.Updated)
	assert.Equal(t, 3, counts.Unchanged)
	assert.Equal(t, 3, counts.Total())
}

func TestConsumePurgesStaleOutputs(t *testing.T) {
	cfg := testConfig()
	fsys := afero.NewMemMapFs()

	first := newRecorder(cfg, fsys, map[string]string{"keep.mk": "k\n", "gone.mk": "g\n"})
	require.NoError(t, first.Consume(stream.FromSlice(someObjects(cfg))))

	second := newRecorder(cfg, fsys, map[string]string{"keep.mk": "k2\n"})
	require.NoError(t, second.Consume(stream.FromSlice(someObjects(cfg))))

	counts := second.Counts()
	assert.Equal(t, 1, counts.Deleted)
	assert.Equal(t, 2, counts.Updated)
	exists, err := afero.Exists(fsys, "/obj/gone.mk")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, "keep.mk\n", readFile(t, fsys, "/obj/backend.Recorder"))
}

func TestConsumeDryRun(t *testing.T) {
	cfg := testConfig()
	fsys := afero.NewMemMapFs()

	r := newRecorder(cfg, fsys, map[string]string{"out.mk": "x\n"})
	r.SetDryRun(true)
	r.SetCaptureDiffs(true)
	require.NoError(t, r.Consume(stream.FromSlice(someObjects(cfg))))

	assert.Equal(t, 2, r.Counts().Created)
	exists, err := afero.Exists(fsys, "/obj/out.mk")
	require.NoError(t, err)
	assert.False(t, exists)

	diffs := r.FileDiffs()
	require.Contains(t, diffs, "/obj/out.mk")
	assert.Contains(t, diffs["/obj/out.mk"], "+x")
}

func TestConsumeErrors(t *testing.T) {
	cfg := testConfig()

	t.Run("stream_error", func(t *testing.T) {
		boom := stderrors.New("boom")
		r := newRecorder(cfg, afero.NewMemMapFs(), nil)
		err := r.Consume(stream.New(func() (objects.Object, bool, error) {
			return nil, false, boom
		}))
		assert.ErrorIs(t, err, boom)
		assert.False(t, r.finished)
	})

	t.Run("handler_error", func(t *testing.T) {
		r := newRecorder(cfg, afero.NewMemMapFs(), nil)
		r.fail = errors.New(errors.ErrInternal, "cannot handle")
		err := r.Consume(stream.FromSlice(someObjects(cfg)))
		assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
		assert.False(t, r.finished)
	})
}

func TestSummary(t *testing.T) {
	cfg := testConfig()
	r := newRecorder(cfg, afero.NewMemMapFs(), map[string]string{"one.mk": "1\n"})
	require.NoError(t, r.Consume(stream.FromSlice(someObjects(cfg))))

	summary := r.Summary()
	assert.Equal(t, "Recorder", summary.Name)
	assert.Regexp(t, `^Recorder backend executed in \d+\.\d{2}s\n  2 total backend files; 2 created; 0 updated; 0 unchanged; 0 deleted$`, summary.String())
}

func TestRegistry(t *testing.T) {
	_, err := backend.New("NoSuchBackend", testConfig(), afero.NewMemMapFs())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))

	err = backend.Validate([]string{"NoSuchBackend"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	assert.NoError(t, backend.Validate(nil))

	assert.Equal(t, []string{backend.DefaultBackend}, backend.DefaultNames(testConfig()))
	cfg := types.NewConfig("/src", "/obj", map[string]interface{}{
		"BUILD_BACKENDS": []interface{}{"RecursiveMake", "BuildGraph"},
	}, nil, nil)
	assert.Equal(t, []string{"RecursiveMake", "BuildGraph"}, backend.DefaultNames(cfg))
}
