package filesystem

import (
	"io/fs"
	"os"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/spf13/afero"
)

// NewOS returns the real filesystem.
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// NewMemory returns an empty in-memory filesystem, for tests and dry runs.
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// ReadFileIfExists returns the file content, or exists=false when there is
// no such file.
func ReadFileIfExists(fsys afero.Fs, name string) (content []byte, exists bool, err error) {
	info, err := fsys.Stat(name)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", name)
	}
	if info.IsDir() {
		return nil, false, errors.Wrap(&fs.PathError{Op: "read", Path: name, Err: fs.ErrInvalid}, errors.ErrFileAccess, "is a directory")
	}
	content, err = afero.ReadFile(fsys, name)
	if err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", name)
	}
	return content, true, nil
}
