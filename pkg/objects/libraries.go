package objects

import (
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/types"
)

// StaticLibraryOptions are the optional parameters of a static library.
type StaticLibraryOptions struct {
	// RealName overrides the basename for the on-disk name.
	RealName string
	// LinkInto names the library this one is folded into.
	LinkInto    string
	NoExpandLib bool
}

type StaticLibrary struct {
	libraryBase
	LinkInto    string
	NoExpandLib bool
}

func NewStaticLibrary(ctx *types.Context, basename string, opts StaticLibraryOptions) *StaticLibrary {
	cfg := ctx.Config()
	name := basename
	if opts.RealName != "" {
		name = opts.RealName
	}
	libName := cfg.LibPrefix + name + cfg.LibSuffix
	return &StaticLibrary{
		libraryBase: newLibraryBase(newBase(ctx), basename, libName, libName),
		LinkInto:    opts.LinkInto,
		NoExpandLib: opts.NoExpandLib,
	}
}

func (l *StaticLibrary) Type() Type { return TypeStaticLibrary }
func (l *StaticLibrary) Kind() Kind { return KindTarget }

type ExternalStaticLibrary struct {
	StaticLibrary
}

func NewExternalStaticLibrary(ctx *types.Context, basename string, opts StaticLibraryOptions) *ExternalStaticLibrary {
	return &ExternalStaticLibrary{StaticLibrary: *NewStaticLibrary(ctx, basename, opts)}
}

func (l *ExternalStaticLibrary) Type() Type { return TypeExternalStaticLibrary }
func (l *ExternalStaticLibrary) external()  {}

// HostLibrary is a static library built for the build machine.
type HostLibrary struct {
	libraryBase
}

func NewHostLibrary(ctx *types.Context, basename string) *HostLibrary {
	cfg := ctx.Config()
	libName := cfg.LibPrefix + basename + cfg.LibSuffix
	return &HostLibrary{libraryBase: newLibraryBase(newBase(ctx), basename, libName, libName)}
}

func (l *HostLibrary) Type() Type { return TypeHostLibrary }
func (l *HostLibrary) Kind() Kind { return KindHost }

// SharedVariant qualifies a shared library.
type SharedVariant int

const (
	VariantNone SharedVariant = iota
	// VariantFramework libraries keep their name undecorated.
	VariantFramework
	// VariantComponent libraries are loaded at runtime and never linked.
	VariantComponent

	maxSharedVariant
)

func (v SharedVariant) String() string {
	switch v {
	case VariantNone:
		return "none"
	case VariantFramework:
		return "framework"
	case VariantComponent:
		return "component"
	default:
		return "invalid"
	}
}

// SymbolsMode selects how a shared library's symbols file is named.
type SymbolsMode int

const (
	SymbolsNone SymbolsMode = iota
	SymbolsDefault
	SymbolsNamed
)

type SharedLibraryOptions struct {
	RealName    string
	Soname      string
	Variant     SharedVariant
	Symbols     SymbolsMode
	SymbolsFile string
}

type SharedLibrary struct {
	libraryBase
	Variant     SharedVariant
	Soname      string
	SymbolsFile string
}

// NewSharedLibrary fails with an INTERNAL error when opts.Variant is out of
// range; that is a bug in the caller, not bad input.
func NewSharedLibrary(ctx *types.Context, basename string, opts SharedLibraryOptions) (*SharedLibrary, error) {
	if opts.Variant < VariantNone || opts.Variant >= maxSharedVariant {
		return nil, errors.Newf(errors.ErrInternal, "shared library variant %d out of range", int(opts.Variant)).
			WithDetail("library", basename)
	}

	cfg := ctx.Config()
	libName := basename
	if opts.RealName != "" {
		libName = opts.RealName
	}

	var importName string
	if opts.Variant == VariantFramework {
		importName = libName
	} else {
		importName = cfg.ImportPrefix + libName + cfg.ImportSuffix
		libName = cfg.DLLPrefix + libName + cfg.DLLSuffix
	}

	soname := libName
	if opts.Soname != "" {
		soname = cfg.DLLPrefix + opts.Soname + cfg.DLLSuffix
	}

	var symbols string
	switch opts.Symbols {
	case SymbolsDefault:
		if cfg.Subst("OS_TARGET") == "WINNT" {
			symbols = libName + ".def"
		} else {
			symbols = libName + ".symbols"
		}
	case SymbolsNamed:
		symbols = opts.SymbolsFile
	}

	return &SharedLibrary{
		libraryBase: newLibraryBase(newBase(ctx), basename, libName, importName),
		Variant:     opts.Variant,
		Soname:      soname,
		SymbolsFile: symbols,
	}, nil
}

func (l *SharedLibrary) Type() Type                   { return TypeSharedLibrary }
func (l *SharedLibrary) Kind() Kind                   { return KindTarget }
func (l *SharedLibrary) sharedVariant() SharedVariant { return l.Variant }

type ExternalSharedLibrary struct {
	SharedLibrary
}

func NewExternalSharedLibrary(ctx *types.Context, basename string, opts SharedLibraryOptions) (*ExternalSharedLibrary, error) {
	lib, err := NewSharedLibrary(ctx, basename, opts)
	if err != nil {
		return nil, err
	}
	return &ExternalSharedLibrary{SharedLibrary: *lib}, nil
}

func (l *ExternalSharedLibrary) Type() Type { return TypeExternalSharedLibrary }
func (l *ExternalSharedLibrary) external()  {}
