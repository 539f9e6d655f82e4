package objects

import (
	"github.com/arthur-debert/treegen/pkg/types"
)

// DirectoryTraversal lists the subdirectories the build recurses into.
type DirectoryTraversal struct {
	baseObject
	Dirs []string
}

func NewDirectoryTraversal(ctx *types.Context, dirs []string) *DirectoryTraversal {
	return &DirectoryTraversal{baseObject: newBase(ctx), Dirs: append([]string(nil), dirs...)}
}

func (d *DirectoryTraversal) Type() Type { return TypeDirectoryTraversal }

// InstallationTarget describes where the directory installs its files.
type InstallationTarget struct {
	baseObject
	XPIName string
	Subdir  string
	Target  string
	Enabled bool
}

func NewInstallationTarget(ctx *types.Context) *InstallationTarget {
	return &InstallationTarget{
		baseObject: newBase(ctx),
		XPIName:    ctx.String(types.VarXPIName),
		Subdir:     ctx.String(types.VarDistSubdir),
		Target:     ctx.FinalTarget(),
		Enabled:    ctx.DistInstall(),
	}
}

func (i *InstallationTarget) Type() Type { return TypeInstallationTarget }

// IsCustom reports whether FINAL_TARGET differs from the value XPI_NAME and
// DIST_SUBDIR would give.
func (i *InstallationTarget) IsCustom() bool {
	derived := "dist/bin"
	if i.XPIName != "" {
		derived = "dist/xpi-stage/" + i.XPIName
	}
	if i.Subdir != "" {
		derived += "/" + i.Subdir
	}
	return derived != i.Target
}

type definesBase struct {
	baseObject
	Defines []types.Define
}

// Flags renders the defines in declaration order.
func (d *definesBase) Flags() []string { return types.DefineFlags(d.Defines) }

type Defines struct{ definesBase }

func NewDefines(ctx *types.Context, defines []types.Define) *Defines {
	return &Defines{definesBase{baseObject: newBase(ctx), Defines: append([]types.Define(nil), defines...)}}
}

func (d *Defines) Type() Type { return TypeDefines }

type HostDefines struct{ definesBase }

func NewHostDefines(ctx *types.Context, defines []types.Define) *HostDefines {
	return &HostDefines{definesBase{baseObject: newBase(ctx), Defines: append([]types.Define(nil), defines...)}}
}

func (d *HostDefines) Type() Type { return TypeHostDefines }

// LocalInclude is one include directory, relative to the source directory
// or, with a leading '/', to the top source directory.
type LocalInclude struct {
	baseObject
	Path string
}

func NewLocalInclude(ctx *types.Context, path string) *LocalInclude {
	return &LocalInclude{baseObject: newBase(ctx), Path: path}
}

func (l *LocalInclude) Type() Type { return TypeLocalInclude }

// Exports are headers installed to dist/include.
type Exports struct {
	baseObject
	Files []string
}

func NewExports(ctx *types.Context, files []string) *Exports {
	return &Exports{baseObject: newBase(ctx), Files: append([]string(nil), files...)}
}

func (e *Exports) Type() Type            { return TypeExports }
func (e *Exports) InstallTarget() string { return "dist/include" }

type FinalTargetFiles struct {
	baseObject
	Files []string
}

func NewFinalTargetFiles(ctx *types.Context, files []string) *FinalTargetFiles {
	return &FinalTargetFiles{baseObject: newBase(ctx), Files: append([]string(nil), files...)}
}

func (f *FinalTargetFiles) Type() Type { return TypeFinalTargetFiles }

// GeneratedFile is produced at build time by running Method of Script.
type GeneratedFile struct {
	baseObject
	Script  string
	Method  string
	Outputs []string
	Inputs  []string
	Flags   []string
}

func NewGeneratedFile(ctx *types.Context, spec types.GeneratedFileSpec) *GeneratedFile {
	outputs := append([]string{spec.Output}, spec.Outputs...)
	method := spec.Method
	if method == "" && spec.Script != "" {
		method = "main"
	}
	return &GeneratedFile{
		baseObject: newBase(ctx),
		Script:     spec.Script,
		Method:     method,
		Outputs:    outputs,
		Inputs:     append([]string(nil), spec.Inputs...),
		Flags:      append([]string(nil), spec.Flags...),
	}
}

func (g *GeneratedFile) Type() Type { return TypeGeneratedFile }
