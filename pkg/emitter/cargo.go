package emitter

import (
	"path/filepath"
	"sort"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/filesystem"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// CargoFileName is the crate manifest looked up next to a build description.
const CargoFileName = "Cargo.toml"

type cargoManifest struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Lib struct {
		CrateType []string `toml:"crate-type"`
	} `toml:"lib"`
	Bin []struct {
		Name string `toml:"name"`
	} `toml:"bin"`
	Dependencies map[string]interface{} `toml:"dependencies"`
}

func readCargoManifest(fsys afero.Fs, srcDir string) (*cargoManifest, string, error) {
	file := filepath.Join(srcDir, CargoFileName)
	content, exists, err := filesystem.ReadFileIfExists(fsys, file)
	if err != nil {
		return nil, file, err
	}
	if !exists {
		return nil, file, errors.Newf(errors.ErrConfigValid, "no %s found in %s", CargoFileName, srcDir).
			WithDetail("file", file)
	}

	var manifest cargoManifest
	if err := toml.Unmarshal(content, &manifest); err != nil {
		return nil, file, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", file).
			WithDetail("file", file)
	}
	return &manifest, file, nil
}

// crateType validates the [lib] section of a Rust library crate.
func (m *cargoManifest) crateType(libName, file string) (string, error) {
	if m.Package.Name != libName {
		return "", errors.Newf(errors.ErrConfigValid, "library %s does not match %s package name %q", libName, CargoFileName, m.Package.Name).
			WithDetail("file", file)
	}
	switch len(m.Lib.CrateType) {
	case 0:
		return "", errors.Newf(errors.ErrConfigValid, "crate-type is not declared in [lib] of %s", file).
			WithDetail("file", file)
	case 1:
		if m.Lib.CrateType[0] == "staticlib" {
			return m.Lib.CrateType[0], nil
		}
	}
	return "", errors.Newf(errors.ErrConfigValid, "crate-type %v is not permitted for %s, only [\"staticlib\"] is", m.Lib.CrateType, libName).
		WithDetail("file", file)
}

func (m *cargoManifest) dependencies() []string {
	deps := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

func (m *cargoManifest) hasBinary(name string) bool {
	for _, bin := range m.Bin {
		if bin.Name == name {
			return true
		}
	}
	// A crate without [[bin]] sections builds one binary named after the
	// package.
	return len(m.Bin) == 0 && m.Package.Name == name
}
