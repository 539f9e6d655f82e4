package objects

import (
	"github.com/arthur-debert/treegen/pkg/types"
)

// ID is an arena handle. The zero ID means "not registered".
type ID int

// Type is the closed enumeration of build object variants.
type Type int

const (
	TypeDirectoryTraversal Type = iota
	TypeInstallationTarget
	TypeDefines
	TypeHostDefines
	TypeSources
	TypeHostSources
	TypeGeneratedSources
	TypeUnifiedSources
	TypeLocalInclude
	TypeExports
	TypeFinalTargetFiles
	TypeGeneratedFile
	TypeStaticLibrary
	TypeSharedLibrary
	TypeRustLibrary
	TypeHostLibrary
	TypeHostRustLibrary
	TypeExternalStaticLibrary
	TypeExternalSharedLibrary
	TypeProgram
	TypeHostProgram
	TypeSimpleProgram
	TypeHostSimpleProgram
	TypeRustProgram
	TypeHostRustProgram
)

var typeNames = [...]string{
	TypeDirectoryTraversal:    "DirectoryTraversal",
	TypeInstallationTarget:    "InstallationTarget",
	TypeDefines:               "Defines",
	TypeHostDefines:           "HostDefines",
	TypeSources:               "Sources",
	TypeHostSources:           "HostSources",
	TypeGeneratedSources:      "GeneratedSources",
	TypeUnifiedSources:        "UnifiedSources",
	TypeLocalInclude:          "LocalInclude",
	TypeExports:               "Exports",
	TypeFinalTargetFiles:      "FinalTargetFiles",
	TypeGeneratedFile:         "GeneratedFile",
	TypeStaticLibrary:         "StaticLibrary",
	TypeSharedLibrary:         "SharedLibrary",
	TypeRustLibrary:           "RustLibrary",
	TypeHostLibrary:           "HostLibrary",
	TypeHostRustLibrary:       "HostRustLibrary",
	TypeExternalStaticLibrary: "ExternalStaticLibrary",
	TypeExternalSharedLibrary: "ExternalSharedLibrary",
	TypeProgram:               "Program",
	TypeHostProgram:           "HostProgram",
	TypeSimpleProgram:         "SimpleProgram",
	TypeHostSimpleProgram:     "HostSimpleProgram",
	TypeRustProgram:           "RustProgram",
	TypeHostRustProgram:       "HostRustProgram",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "Unknown"
	}
	return typeNames[t]
}

// Kind separates objects built for the target platform from those built
// for and run on the build machine.
type Kind int

const (
	KindTarget Kind = iota
	KindHost
)

func (k Kind) String() string {
	if k == KindHost {
		return "host"
	}
	return "target"
}

// Object is implemented by every build object. The set of implementations
// is closed to this package.
type Object interface {
	ID() ID
	Type() Type
	Context() *types.Context
	// RelativeDir is the directory relative to the top source directory.
	RelativeDir() string
	SrcDir() string
	ObjDir() string
	// RelObjDir is ObjDir relative to the top object directory.
	RelObjDir() string
	InstallTarget() string

	object() *baseObject
}

type baseObject struct {
	id  ID
	ctx *types.Context
}

func newBase(ctx *types.Context) baseObject {
	return baseObject{ctx: ctx}
}

func (b *baseObject) ID() ID                  { return b.id }
func (b *baseObject) Context() *types.Context { return b.ctx }
func (b *baseObject) RelativeDir() string     { return b.ctx.RelSrcDir() }
func (b *baseObject) SrcDir() string          { return b.ctx.SrcDir() }
func (b *baseObject) ObjDir() string          { return b.ctx.ObjDir() }
func (b *baseObject) RelObjDir() string       { return b.ctx.RelSrcDir() }
func (b *baseObject) InstallTarget() string   { return b.ctx.FinalTarget() }
func (b *baseObject) object() *baseObject     { return b }

// ContextDefines returns DEFINES (or HOST_DEFINES for host objects) of the
// object's context.
func ContextDefines(obj Object) []types.Define {
	if l, ok := obj.(Linkable); ok && l.Kind() == KindHost {
		return obj.Context().Defines(types.VarHostDefines)
	}
	return obj.Context().Defines(types.VarDefines)
}
