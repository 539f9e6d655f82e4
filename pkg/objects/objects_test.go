// pkg/objects/objects_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test derived names and construction of build objects

package objects_test

import (
	"testing"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticLibraryNames(t *testing.T) {
	ctx := newContext(linuxConfig(nil), "js/src")

	lib := objects.NewStaticLibrary(ctx, "js", objects.StaticLibraryOptions{})
	assert.Equal(t, "js", lib.Basename())
	assert.Equal(t, "libjs.a", lib.LibName())
	assert.Equal(t, "libjs.a", lib.ImportName())
	assert.Equal(t, objects.KindTarget, lib.Kind())
	assert.Equal(t, "js/src", lib.RelativeDir())
	assert.Equal(t, "/obj/js/src", lib.ObjDir())
	assert.Equal(t, "dist/bin", lib.InstallTarget())

	renamed := objects.NewStaticLibrary(ctx, "js", objects.StaticLibraryOptions{RealName: "mozjs"})
	assert.Equal(t, "js", renamed.Basename())
	assert.Equal(t, "libmozjs.a", renamed.LibName())
}

func TestSharedLibraryNames(t *testing.T) {
	tests := []struct {
		name       string
		cfg        *types.Config
		opts       objects.SharedLibraryOptions
		libName    string
		importName string
		soname     string
		symbols    string
	}{
		{
			name:       "linux default",
			cfg:        linuxConfig(nil),
			libName:    "libxul.so",
			importName: "libxul.so",
			soname:     "libxul.so",
		},
		{
			name:       "windows import library",
			cfg:        windowsConfig(),
			libName:    "xul.dll",
			importName: "xul.lib",
			soname:     "xul.dll",
		},
		{
			name:       "real name and soname",
			cfg:        linuxConfig(nil),
			opts:       objects.SharedLibraryOptions{RealName: "mozjs-52", Soname: "mozjs"},
			libName:    "libmozjs-52.so",
			importName: "libmozjs-52.so",
			soname:     "libmozjs.so",
		},
		{
			name:       "framework keeps its name",
			cfg:        linuxConfig(nil),
			opts:       objects.SharedLibraryOptions{Variant: objects.VariantFramework},
			libName:    "xul",
			importName: "xul",
			soname:     "xul",
		},
		{
			name:       "default symbols file",
			cfg:        linuxConfig(nil),
			opts:       objects.SharedLibraryOptions{Symbols: objects.SymbolsDefault},
			libName:    "libxul.so",
			importName: "libxul.so",
			soname:     "libxul.so",
			symbols:    "libxul.so.symbols",
		},
		{
			name:       "default symbols file on windows",
			cfg:        windowsConfig(),
			opts:       objects.SharedLibraryOptions{Symbols: objects.SymbolsDefault},
			libName:    "xul.dll",
			importName: "xul.lib",
			soname:     "xul.dll",
			symbols:    "xul.dll.def",
		},
		{
			name:       "explicit symbols file",
			cfg:        windowsConfig(),
			opts:       objects.SharedLibraryOptions{Symbols: objects.SymbolsNamed, SymbolsFile: "symbols.def"},
			libName:    "xul.dll",
			importName: "xul.lib",
			soname:     "xul.dll",
			symbols:    "symbols.def",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib, err := objects.NewSharedLibrary(newContext(tt.cfg, "toolkit"), "xul", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "xul", lib.Basename())
			assert.Equal(t, tt.libName, lib.LibName())
			assert.Equal(t, tt.importName, lib.ImportName())
			assert.Equal(t, tt.soname, lib.Soname)
			assert.Equal(t, tt.symbols, lib.SymbolsFile)
		})
	}
}

func TestSharedLibraryVariantOutOfRange(t *testing.T) {
	ctx := newContext(linuxConfig(nil), "toolkit")

	for _, v := range []objects.SharedVariant{-1, 3, 42} {
		lib, err := objects.NewSharedLibrary(ctx, "xul", objects.SharedLibraryOptions{Variant: v})
		assert.Nil(t, lib)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
	}

	ext, err := objects.NewExternalSharedLibrary(ctx, "xul", objects.SharedLibraryOptions{Variant: 9})
	assert.Nil(t, ext)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}

func TestRustLibraryNames(t *testing.T) {
	t.Run("release", func(t *testing.T) {
		ctx := newContext(linuxConfig(nil), "toolkit/library/rust")
		lib, err := objects.NewRustLibrary(ctx, "gkrust-shared", objects.RustLibraryOptions{
			CrateType:    "staticlib",
			TargetDir:    "target",
			Dependencies: []string{"serde"},
		})
		require.NoError(t, err)

		assert.Equal(t, "gkrust-shared", lib.Basename())
		assert.Equal(t, "libgkrust_shared.a", lib.LibName())
		assert.Equal(t, "target/x86_64-unknown-linux-gnu/release/libgkrust_shared.a", lib.ImportName())
		assert.Equal(t, "target/x86_64-unknown-linux-gnu/release/deps", lib.DepsPath)
		assert.Equal(t, objects.KindTarget, lib.Kind())
	})

	t.Run("debug host", func(t *testing.T) {
		cfg := linuxConfig(map[string]interface{}{"MOZ_DEBUG_RUST": "1", "RUST_HOST_TARGET": "aarch64-apple-darwin"})
		lib, err := objects.NewHostRustLibrary(newContext(cfg, "build"), "helper", objects.RustLibraryOptions{
			CrateType: "staticlib",
			TargetDir: ".",
		})
		require.NoError(t, err)
		assert.Equal(t, "aarch64-apple-darwin/debug/libhelper.a", lib.ImportName())
		assert.Equal(t, objects.KindHost, lib.Kind())
		assert.Equal(t, objects.TypeHostRustLibrary, lib.Type())
	})

	t.Run("wrong crate type", func(t *testing.T) {
		_, err := objects.NewRustLibrary(newContext(linuxConfig(nil), "x"), "x", objects.RustLibraryOptions{CrateType: "rlib"})
		assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
	})
}

func TestRustProgramLocation(t *testing.T) {
	cfg := linuxConfig(map[string]interface{}{"BIN_SUFFIX": ".exe"})
	p := objects.NewRustProgram(newContext(cfg, "tools"), "dump_syms", "/src/tools/Cargo.toml")
	assert.Equal(t, "x86_64-unknown-linux-gnu/release/dump_syms.exe", p.Location)

	hp := objects.NewHostRustProgram(newContext(cfg, "tools"), "gen", "/src/tools/Cargo.toml")
	assert.Equal(t, "x86_64-unknown-linux-gnu/release/gen", hp.Location)
	assert.Equal(t, objects.TypeHostRustProgram, hp.Type())
}

func TestApplyBinSuffix(t *testing.T) {
	assert.Equal(t, "js.exe", objects.ApplyBinSuffix("js", ".exe"))
	assert.Equal(t, "js.exe", objects.ApplyBinSuffix("js.exe", ".exe"))
	assert.Equal(t, "js", objects.ApplyBinSuffix("js", ""))

	once := objects.ApplyBinSuffix("shell", ".exe")
	assert.Equal(t, once, objects.ApplyBinSuffix(once, ".exe"))
}

func TestProgramSuffixes(t *testing.T) {
	ctx := newContext(windowsConfig(), "js/shell")

	assert.Equal(t, "js.exe", objects.NewProgram(ctx, "js").Program())
	assert.Equal(t, "js.exe", objects.NewProgram(ctx, "js.exe").Program())
	assert.Equal(t, "nsinstall.exe", objects.NewHostProgram(ctx, "nsinstall").Program())

	unitTest := objects.NewSimpleProgram(ctx, "TestFoo", true)
	assert.True(t, unitTest.IsUnitTest())
	assert.Equal(t, objects.KindHost, objects.NewHostSimpleProgram(ctx, "gen").Kind())
}

func TestUnifiedSourcesObject(t *testing.T) {
	ctx := newContext(linuxConfig(nil), "js/src")
	files := []string{"c.cpp", "a.cpp", "b.cpp"}

	u := objects.NewUnifiedSources(ctx, files, ".cpp", 2)
	require.True(t, u.HaveUnifiedMapping)
	assert.Equal(t, []string{"Unified_cpp_js_src0.cpp", "Unified_cpp_js_src1.cpp"}, u.UnifiedMapping.Names())
	assert.Equal(t, files, u.Files)

	disabled := objects.NewUnifiedSources(ctx, files, ".cpp", 1)
	assert.False(t, disabled.HaveUnifiedMapping)
	assert.Nil(t, disabled.UnifiedMapping)
}

func TestDefinesAndInstallTargets(t *testing.T) {
	cfg := linuxConfig(nil)
	ctx := types.NewContext(cfg, "dom", map[string]interface{}{
		types.VarXPIName:     "ext",
		types.VarFinalTarget: "dist/custom",
		types.VarDistInstall: false,
	}, "", nil)

	d := objects.NewDefines(ctx, []types.Define{{Name: "A", Mode: types.DefineSet}, {Name: "B", Value: "2"}})
	assert.Equal(t, []string{"-DA", "-DB=2"}, d.Flags())

	it := objects.NewInstallationTarget(ctx)
	assert.Equal(t, "dist/custom", it.Target)
	assert.False(t, it.Enabled)
	assert.True(t, it.IsCustom())

	assert.Equal(t, "dist/include", objects.NewExports(ctx, []string{"a.h"}).InstallTarget())
	assert.Equal(t, "dist/custom", objects.NewFinalTargetFiles(ctx, nil).InstallTarget())
}

func TestGeneratedFileDefaults(t *testing.T) {
	ctx := newContext(linuxConfig(nil), "js/src")
	g := objects.NewGeneratedFile(ctx, types.GeneratedFileSpec{
		Output:  "selfhosted.out.h",
		Outputs: []string{"selfhosted.js"},
		Script:  "builtin/embedjs.py",
	})
	assert.Equal(t, []string{"selfhosted.out.h", "selfhosted.js"}, g.Outputs)
	assert.Equal(t, "main", g.Method)
}

func TestArena(t *testing.T) {
	f := newFixture(t)
	a := f.static("a")
	p := f.program("app")

	assert.Equal(t, objects.ID(1), a.ID())
	assert.Equal(t, objects.ID(2), p.ID())
	assert.Equal(t, a.ID(), f.arena.Add(a), "re-adding keeps the ID")
	assert.Equal(t, 2, f.arena.Len())

	got, ok := f.arena.Get(p.ID())
	require.True(t, ok)
	assert.Same(t, p, got)

	_, ok = f.arena.Get(0)
	assert.False(t, ok)
	_, ok = f.arena.Get(99)
	assert.False(t, ok)

	assert.Len(t, f.arena.Linkables(), 2)
	assert.Len(t, f.arena.Libraries(), 1)
	assert.Equal(t, []objects.Object{p}, f.arena.Resolve([]objects.ID{p.ID(), 42}))
}

func TestTypeNames(t *testing.T) {
	assert.Equal(t, "ExternalSharedLibrary", objects.TypeExternalSharedLibrary.String())
	assert.Equal(t, "Unknown", objects.Type(999).String())
	assert.Equal(t, "host", objects.KindHost.String())
	assert.Equal(t, "component", objects.VariantComponent.String())
}
