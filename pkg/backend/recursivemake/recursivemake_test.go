// pkg/backend/recursivemake/recursivemake_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Memory filesystem, emitter
// PURPOSE: Test backend.mk generation, unified files and link lines

package recursivemake_test

import (
	"testing"

	"github.com/arthur-debert/treegen/pkg/backend/recursivemake"
	"github.com/arthur-debert/treegen/pkg/emitter"
	"github.com/arthur-debert/treegen/pkg/stream"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *types.Config {
	return types.NewConfig("/src", "/obj", map[string]interface{}{
		"OS_TARGET":  "Linux",
		"GNU_CC":     "1",
		"LIB_PREFIX": "lib",
		"LIB_SUFFIX": "a",
		"DLL_PREFIX": "lib",
		"DLL_SUFFIX": ".so",
	}, nil, nil)
}

func testTree(cfg *types.Config) []*types.Context {
	ctx := func(dir string, vars map[string]interface{}) *types.Context {
		return types.NewContext(cfg, dir, vars, "/src/"+dir+"/build.hcl", nil)
	}
	return []*types.Context{
		ctx("", map[string]interface{}{
			types.VarDirs: []string{"base", "app", "xpcom"},
		}),
		ctx("base", map[string]interface{}{
			types.VarLibraryName: "base",
			types.VarSources:     []string{"base.cpp"},
			types.VarOSLibs:      []string{"z"},
		}),
		ctx("app", map[string]interface{}{
			types.VarProgram:             "app",
			types.VarSources:             []string{"main.c"},
			types.VarUnifiedSources:      []string{"c.cpp", "a.cpp", "b.cpp"},
			types.VarFilesPerUnifiedFile: 2,
			types.VarUseLibs:             []string{"base"},
			types.VarDefines:             []types.Define{{Name: "MOZ_APP", Value: "1"}},
			types.VarLocalIncludes:       []string{"/include", "!gen", "private"},
		}),
		ctx("xpcom", map[string]interface{}{
			types.VarLibraryName:         "xpcom",
			types.VarForceSharedLib:      true,
			types.VarGenerateSymbolsFile: true,
			types.VarUseLibs:             []string{"base"},
			types.VarSimplePrograms:      []string{"TestXPCOM"},
			types.VarDistInstall:         false,
			types.VarGeneratedFiles: []types.GeneratedFileSpec{{
				Output: "xpcom.h", Script: "gen.py", Inputs: []string{"xpcom.idl"}, Flags: []string{"--fast"},
			}},
		}),
	}
}

func run(t *testing.T, fsys afero.Fs, cfg *types.Config, contexts []*types.Context) *recursivemake.Backend {
	t.Helper()
	e := emitter.New(fsys, emitter.Options{})
	b := recursivemake.New(cfg, fsys)
	require.NoError(t, b.Consume(e.Emit(stream.FromSlice(contexts))))
	return b
}

func readFile(t *testing.T, fsys afero.Fs, path string) string {
	t.Helper()
	content, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	return string(content)
}

func TestBackendFiles(t *testing.T) {
	cfg := testConfig()
	fsys := afero.NewMemMapFs()
	run(t, fsys, cfg, testTree(cfg))

	assert.Equal(t, `# THIS FILE WAS AUTOMATICALLY GENERATED. DO NOT EDIT.

DEPTH := .
DIRS := base app xpcom
`, readFile(t, fsys, "/obj/backend.mk"))

	assert.Equal(t, `# THIS FILE WAS AUTOMATICALLY GENERATED. DO NOT EDIT.

DEPTH := ..
CPPSRCS += base.cpp
LIBRARY_NAME := base
FORCE_STATIC_LIB := 1
REAL_LIBRARY := libbase.a
`, readFile(t, fsys, "/obj/base/backend.mk"))

	assert.Equal(t, `# THIS FILE WAS AUTOMATICALLY GENERATED. DO NOT EDIT.

DEPTH := ..
DEFINES += -DMOZ_APP=1
CSRCS += main.c
UNIFIED_CPPSRCS := Unified_cpp_app0.cpp Unified_cpp_app1.cpp
CPPSRCS += $(UNIFIED_CPPSRCS)
LOCAL_INCLUDES += -I$(topsrcdir)/include
LOCAL_INCLUDES += -I$(CURDIR)/gen
LOCAL_INCLUDES += -I$(srcdir)/private
PROGRAM := app
STATIC_LIBS += $(DEPTH)/base/libbase.a
OS_LIBS += -lz
CXX_LINK := 1
`, readFile(t, fsys, "/obj/app/backend.mk"))

	assert.Equal(t, `# THIS FILE WAS AUTOMATICALLY GENERATED. DO NOT EDIT.

DEPTH := ..
NO_DIST_INSTALL := 1
GENERATED_FILES += xpcom.h
xpcom.h_FLAGS := --fast
xpcom.h: $(srcdir)/gen.py $(srcdir)/xpcom.idl
	$(call py_action,file_generate,$(srcdir)/gen.py main xpcom.h $(MDDEPDIR)/xpcom.h.pp $(srcdir)/xpcom.idl $(xpcom.h_FLAGS))
LIBRARY_NAME := xpcom
FORCE_SHARED_LIB := 1
SHARED_LIBRARY := libxpcom.so
IMPORT_LIBRARY := libxpcom.so
DSO_SONAME := libxpcom.so
SYMBOLS_FILE := libxpcom.so.symbols
SIMPLE_PROGRAMS += TestXPCOM
STATIC_LIBS += $(DEPTH)/base/libbase.a
OS_LIBS += -lz
CXX_LINK := 1
TestXPCOM_STATIC_LIBS += $(DEPTH)/base/libbase.a
TestXPCOM_OS_LIBS += -lz
TestXPCOM_CXX_LINK := 1
`, readFile(t, fsys, "/obj/xpcom/backend.mk"))
}

func TestUnifiedFiles(t *testing.T) {
	cfg := testConfig()
	fsys := afero.NewMemMapFs()
	run(t, fsys, cfg, testTree(cfg))

	assert.Equal(t, "#define MOZ_UNIFIED_BUILD\n#include \"/src/app/a.cpp\"\n#include \"/src/app/b.cpp\"\n",
		readFile(t, fsys, "/obj/app/Unified_cpp_app0.cpp"))
	assert.Equal(t, "#define MOZ_UNIFIED_BUILD\n#include \"/src/app/c.cpp\"\n",
		readFile(t, fsys, "/obj/app/Unified_cpp_app1.cpp"))
}

func TestRerunIsStable(t *testing.T) {
	cfg := testConfig()
	fsys := afero.NewMemMapFs()
	first := run(t, fsys, cfg, testTree(cfg))
	// four backend.mk, two unified files and the output list
	assert.Equal(t, 7, first.Counts().Created)

	second := run(t, fsys, cfg, testTree(cfg))
	counts := second.Counts()
	assert.Equal(t, 7, counts.Unchanged)
	assert.Zero(t, counts.Created+counts.Updated+counts.Deleted)
}

func TestStaleUnifiedFilesAreRemoved(t *testing.T) {
	cfg := testConfig()
	fsys := afero.NewMemMapFs()
	run(t, fsys, cfg, testTree(cfg))

	tree := testTree(cfg)
	tree[2] = types.NewContext(cfg, "app", map[string]interface{}{
		types.VarProgram: "app",
		types.VarSources: []string{"main.c"},
	}, "/src/app/build.hcl", nil)
	second := run(t, fsys, cfg, tree)

	assert.Equal(t, 2, second.Counts().Deleted)
	exists, err := afero.Exists(fsys, "/obj/app/Unified_cpp_app0.cpp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDryRunWritesNothing(t *testing.T) {
	cfg := testConfig()
	fsys := afero.NewMemMapFs()
	e := emitter.New(fsys, emitter.Options{})
	b := recursivemake.New(cfg, fsys)
	b.SetDryRun(true)
	require.NoError(t, b.Consume(e.Emit(stream.FromSlice(testTree(cfg)))))

	assert.Equal(t, 7, b.Counts().Created)
	exists, err := afero.DirExists(fsys, "/obj")
	require.NoError(t, err)
	assert.False(t, exists)
}
