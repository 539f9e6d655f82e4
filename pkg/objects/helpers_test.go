package objects_test

import (
	"testing"

	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/stretchr/testify/require"
)

func linuxConfig(extra map[string]interface{}) *types.Config {
	substs := map[string]interface{}{
		"OS_TARGET":        "Linux",
		"GNU_CC":           "1",
		"LIB_PREFIX":       "lib",
		"LIB_SUFFIX":       "a",
		"DLL_PREFIX":       "lib",
		"DLL_SUFFIX":       ".so",
		"RUST_LIB_PREFIX":  "lib",
		"RUST_LIB_SUFFIX":  "a",
		"RUST_TARGET":      "x86_64-unknown-linux-gnu",
		"RUST_HOST_TARGET": "x86_64-unknown-linux-gnu",
	}
	for k, v := range extra {
		substs[k] = v
	}
	return types.NewConfig("/src", "/obj", substs, nil, nil)
}

func windowsConfig() *types.Config {
	return types.NewConfig("/src", "/obj", map[string]interface{}{
		"OS_TARGET":         "WINNT",
		"LIB_PREFIX":        "",
		"LIB_SUFFIX":        "lib",
		"DLL_PREFIX":        "",
		"DLL_SUFFIX":        ".dll",
		"IMPORT_LIB_SUFFIX": "lib",
		"BIN_SUFFIX":        ".exe",
		"HOST_BIN_SUFFIX":   ".exe",
	}, nil, nil)
}

func newContext(cfg *types.Config, dir string) *types.Context {
	return types.NewContext(cfg, dir, nil, "/src/"+dir+"/build.hcl", nil)
}

// fixture registers objects in a fresh arena.
type fixture struct {
	t     *testing.T
	arena *objects.Arena
	ctx   *types.Context
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, arena: objects.NewArena(), ctx: newContext(linuxConfig(nil), "lib")}
}

func (f *fixture) static(name string) *objects.StaticLibrary {
	lib := objects.NewStaticLibrary(f.ctx, name, objects.StaticLibraryOptions{})
	f.arena.Add(lib)
	return lib
}

func (f *fixture) host(name string) *objects.HostLibrary {
	lib := objects.NewHostLibrary(f.ctx, name)
	f.arena.Add(lib)
	return lib
}

func (f *fixture) shared(name string, variant objects.SharedVariant) *objects.SharedLibrary {
	lib, err := objects.NewSharedLibrary(f.ctx, name, objects.SharedLibraryOptions{Variant: variant})
	require.NoError(f.t, err)
	f.arena.Add(lib)
	return lib
}

func (f *fixture) rust(name string) *objects.RustLibrary {
	lib, err := objects.NewRustLibrary(f.ctx, name, objects.RustLibraryOptions{CrateType: "staticlib", TargetDir: "."})
	require.NoError(f.t, err)
	f.arena.Add(lib)
	return lib
}

func (f *fixture) program(name string) *objects.Program {
	p := objects.NewProgram(f.ctx, name)
	f.arena.Add(p)
	return p
}

func (f *fixture) hostProgram(name string) *objects.HostProgram {
	p := objects.NewHostProgram(f.ctx, name)
	f.arena.Add(p)
	return p
}
