// pkg/config/loader_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero MemMapFs
// PURPOSE: Test configuration layering (defaults, configure output, environment)

package config_test

import (
	"testing"

	"github.com/arthur-debert/treegen/pkg/config"
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statusTOML = `
topsrcdir = "/src"
topobjdir = "/obj"
non_global_defines = ["MOZ_JS"]

[defines]
NDEBUG = "1"

[substs]
OS_TARGET = "WINNT"
LIB_PREFIX = ""
LIB_SUFFIX = "lib"
DLL_PREFIX = ""
DLL_SUFFIX = ".dll"
IMPORT_LIB_SUFFIX = "lib"
BUILD_BACKENDS = ["RecursiveMake", "VisualStudio"]

[treegen]
files_per_unified_file = 8
`

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func TestLoadDefaults(t *testing.T) {
	loaded, err := config.Load(config.Options{Fs: afero.NewMemMapFs()})
	require.NoError(t, err)

	cfg := loaded.Config
	assert.Equal(t, "lib", cfg.LibPrefix)
	assert.Equal(t, ".a", cfg.LibSuffix)
	assert.Equal(t, ".so", cfg.ImportSuffix)
	assert.True(t, cfg.SubstBool("GNU_CC"))
	assert.Equal(t, []string{"RecursiveMake"}, cfg.SubstList("BUILD_BACKENDS"))
	assert.Equal(t, "", cfg.Source)

	assert.Equal(t, "build.hcl", loaded.Settings.BuildFile)
	assert.Equal(t, 16, loaded.Settings.FilesPerUnifiedFile)
	assert.Contains(t, config.DefaultsContent(), "[substs]")
}

func TestLoadConfigureOutput(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/obj/config.status.toml", statusTOML)

	loaded, err := config.Load(config.Options{Fs: fs, Path: "/obj/config.status.toml"})
	require.NoError(t, err)

	cfg := loaded.Config
	assert.Equal(t, "/src", cfg.TopSrcDir)
	assert.Equal(t, "/obj", cfg.TopObjDir)
	assert.Equal(t, "/obj/config.status.toml", cfg.Source)
	assert.Equal(t, "WINNT", cfg.Subst("OS_TARGET"))
	assert.Equal(t, ".lib", cfg.ImportSuffix)
	assert.Equal(t, ".dll", cfg.DLLSuffix)
	assert.Equal(t, []string{"RecursiveMake", "VisualStudio"}, cfg.SubstList("BUILD_BACKENDS"))
	assert.Equal(t, map[string]string{"NDEBUG": "1"}, cfg.Defines)
	assert.Equal(t, []string{"MOZ_JS"}, cfg.NonGlobalDefines)

	// untouched defaults survive the merge
	assert.Equal(t, "x86_64-unknown-linux-gnu", cfg.Subst("RUST_TARGET"))
	assert.Equal(t, 8, loaded.Settings.FilesPerUnifiedFile)
	assert.Equal(t, "build.hcl", loaded.Settings.BuildFile)
}

func TestLoadYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/obj/config.status.yaml", "topsrcdir: /src\nsubsts:\n  OS_TARGET: Android\n")

	loaded, err := config.Load(config.Options{Fs: fs, Path: "/obj/config.status.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "Android", loaded.Config.Subst("OS_TARGET"))
	assert.Equal(t, "/src", loaded.Config.TopSrcDir)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/obj/config.status.toml", statusTOML)

	t.Setenv("TREEGEN_SUBST_OS_TARGET", "Darwin")
	t.Setenv("TREEGEN_SUBST_MOZ_DEBUG_RUST", "1")
	t.Setenv("TREEGEN_BUILD_FILE", "moz.hcl")
	t.Setenv("TREEGEN_FILES_PER_UNIFIED_FILE", "4")
	t.Setenv("TREEGEN_STYLES", "/etc/treegen/styles.yaml")

	loaded, err := config.Load(config.Options{Fs: fs, Path: "/obj/config.status.toml"})
	require.NoError(t, err)
	assert.Equal(t, "Darwin", loaded.Config.Subst("OS_TARGET"))
	assert.True(t, loaded.Config.SubstBool("MOZ_DEBUG_RUST"))
	assert.Equal(t, "moz.hcl", loaded.Settings.BuildFile)
	assert.Equal(t, 4, loaded.Settings.FilesPerUnifiedFile)
	assert.Equal(t, "/etc/treegen/styles.yaml", loaded.Settings.Styles)
}

func TestLoadOverrides(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/obj/config.status.toml", statusTOML)

	loaded, err := config.Load(config.Options{
		Fs:        fs,
		Path:      "/obj/config.status.toml",
		TopSrcDir: "/elsewhere/src",
	})
	require.NoError(t, err)
	assert.Equal(t, "/elsewhere/src", loaded.Config.TopSrcDir)
	assert.Equal(t, "/obj", loaded.Config.TopObjDir)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/obj/broken.toml", "substs = [")
	writeFile(t, fs, "/obj/config.ini", "a=b")

	tests := []struct {
		name string
		opts config.Options
		code errors.ErrorCode
	}{
		{"missing file", config.Options{Fs: fs, Path: "/obj/none.toml"}, errors.ErrConfigLoad},
		{"parse error", config.Options{Fs: fs, Path: "/obj/broken.toml"}, errors.ErrConfigParse},
		{"unsupported format", config.Options{Fs: fs, Path: "/obj/config.ini"}, errors.ErrConfigLoad},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.opts)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	loaded, err := config.Load(config.Options{Fs: afero.NewMemMapFs(), Path: "/obj/config.status.toml", Optional: true})
	require.NoError(t, err)
	assert.Equal(t, "", loaded.Config.Source)
}

func TestLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.status.toml"
	writeFile(t, afero.NewOsFs(), path, statusTOML)

	loaded, err := config.Load(config.Options{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "WINNT", loaded.Config.Subst("OS_TARGET"))
	assert.Equal(t, path, loaded.Config.Source)
}
