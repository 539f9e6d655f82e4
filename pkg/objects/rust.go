package objects

import (
	"path"
	"strings"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/types"
)

// CargoOutputDir is where cargo leaves artifacts for the triple named by
// targetVar: <triple>/release, or <triple>/debug when MOZ_DEBUG_RUST is set.
func CargoOutputDir(cfg *types.Config, targetVar string) string {
	kind := "release"
	if cfg.SubstBool("MOZ_DEBUG_RUST") {
		kind = "debug"
	}
	return path.Join(cfg.Subst(targetVar), kind)
}

type RustLibraryOptions struct {
	CargoFile    string
	CrateType    string
	Dependencies []string
	Features     []string
	TargetDir    string
}

// RustLibrary is a static library produced by cargo.
type RustLibrary struct {
	StaticLibrary
	CargoFile    string
	CrateType    string
	Dependencies []string
	Features     []string
	TargetDir    string
	DepsPath     string
}

func NewRustLibrary(ctx *types.Context, basename string, opts RustLibraryOptions) (*RustLibrary, error) {
	return newRustLibrary(ctx, basename, opts, "RUST_TARGET")
}

func newRustLibrary(ctx *types.Context, basename string, opts RustLibraryOptions, targetVar string) (*RustLibrary, error) {
	if opts.CrateType != "staticlib" {
		return nil, errors.Newf(errors.ErrConfigValid, "crate type of Rust library %q must be staticlib, got %q", basename, opts.CrateType)
	}
	cfg := ctx.Config()

	lib := &RustLibrary{
		StaticLibrary: *NewStaticLibrary(ctx, basename, StaticLibraryOptions{}),
		CargoFile:     opts.CargoFile,
		CrateType:     opts.CrateType,
		Dependencies:  append([]string(nil), opts.Dependencies...),
		Features:      append([]string(nil), opts.Features...),
		TargetDir:     opts.TargetDir,
	}
	// cargo turns '-' into '_' in file names; the basename stays as declared.
	lib.libName = cfg.RustLibPrefix + strings.ReplaceAll(basename, "-", "_") + cfg.RustLibSuffix

	buildDir := path.Join(opts.TargetDir, CargoOutputDir(cfg, targetVar))
	lib.importName = path.Join(buildDir, lib.libName)
	lib.DepsPath = path.Join(buildDir, "deps")
	return lib, nil
}

func (l *RustLibrary) Type() Type { return TypeRustLibrary }
func (l *RustLibrary) rust()      {}

type HostRustLibrary struct {
	RustLibrary
}

func NewHostRustLibrary(ctx *types.Context, basename string, opts RustLibraryOptions) (*HostRustLibrary, error) {
	lib, err := newRustLibrary(ctx, basename, opts, "RUST_HOST_TARGET")
	if err != nil {
		return nil, err
	}
	return &HostRustLibrary{RustLibrary: *lib}, nil
}

func (l *HostRustLibrary) Type() Type { return TypeHostRustLibrary }
func (l *HostRustLibrary) Kind() Kind { return KindHost }

// rustCrate is satisfied by both Rust library variants.
type rustCrate interface {
	Library
	rust()
}

// RustProgram is built and linked entirely by cargo, so it is not Linkable.
type RustProgram struct {
	baseObject
	Name      string
	CargoFile string
	// Location is the binary path relative to the cargo target directory.
	Location string
}

func NewRustProgram(ctx *types.Context, name, cargoFile string) *RustProgram {
	return &RustProgram{
		baseObject: newBase(ctx),
		Name:       name,
		CargoFile:  cargoFile,
		Location:   path.Join(CargoOutputDir(ctx.Config(), "RUST_TARGET"), name+ctx.Config().Subst("BIN_SUFFIX")),
	}
}

func (p *RustProgram) Type() Type { return TypeRustProgram }
func (p *RustProgram) Kind() Kind { return KindTarget }

type HostRustProgram struct {
	RustProgram
}

func NewHostRustProgram(ctx *types.Context, name, cargoFile string) *HostRustProgram {
	return &HostRustProgram{RustProgram: RustProgram{
		baseObject: newBase(ctx),
		Name:       name,
		CargoFile:  cargoFile,
		Location:   path.Join(CargoOutputDir(ctx.Config(), "RUST_HOST_TARGET"), name+ctx.Config().Subst("HOST_BIN_SUFFIX")),
	}}
}

func (p *HostRustProgram) Type() Type { return TypeHostRustProgram }
func (p *HostRustProgram) Kind() Kind { return KindHost }
