// Package recursivemake generates one backend.mk per object directory for a
// recursive make build, plus the unified source files.
package recursivemake

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/treegen/pkg/backend"
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/spf13/afero"
)

const (
	Name = "RecursiveMake"
	// FileName is written in every object directory.
	FileName = "backend.mk"
)

func init() {
	backend.Register(Name, func(cfg *types.Config, fsys afero.Fs) backend.Backend {
		return New(cfg, fsys)
	})
}

var sourceVars = map[string]string{
	".c":   "CSRCS",
	".cpp": "CPPSRCS",
	".m":   "CMSRCS",
	".mm":  "CMMSRCS",
	".S":   "SSRCS",
	".s":   "ASFILES",
	".asm": "ASFILES",
}

type Backend struct {
	*backend.Base
	files     map[string]*makeFile
	order     []string
	linkables []objects.Linkable
}

func New(cfg *types.Config, fsys afero.Fs) *Backend {
	b := &Backend{files: make(map[string]*makeFile)}
	b.Base = backend.NewBase(Name, cfg, fsys, b)
	return b
}

func depth(relObjDir string) string {
	if relObjDir == "" {
		return "."
	}
	return strings.Repeat("../", strings.Count(relObjDir, "/")) + ".."
}

func (b *Backend) fileFor(obj objects.Object) *makeFile {
	rel := obj.RelObjDir()
	mf, ok := b.files[rel]
	if !ok {
		mf = newMakeFile(filepath.Join(obj.ObjDir(), FileName), depth(rel))
		b.files[rel] = mf
		b.order = append(b.order, rel)
	}
	return mf
}

func (b *Backend) ConsumeObject(obj objects.Object) error {
	mf := b.fileFor(obj)

	switch o := obj.(type) {
	case *objects.DirectoryTraversal:
		if len(o.Dirs) > 0 {
			mf.assign("DIRS", strings.Join(o.Dirs, " "))
		}
	case *objects.InstallationTarget:
		installationTarget(mf, o)
	case *objects.Defines:
		mf.write("DEFINES += %s", strings.Join(o.Flags(), " "))
	case *objects.HostDefines:
		mf.write("HOST_DEFINES += %s", strings.Join(o.Flags(), " "))
	case *objects.Sources:
		mf.appendEach(sourceVars[o.CanonicalSuffix], o.Files)
	case *objects.HostSources:
		mf.appendEach("HOST_"+sourceVars[o.CanonicalSuffix], o.Files)
	case *objects.GeneratedSources:
		for _, f := range o.Files {
			mf.write("%s += $(CURDIR)/%s", sourceVars[o.CanonicalSuffix], f)
		}
	case *objects.UnifiedSources:
		if err := b.unifiedSources(mf, o); err != nil {
			return err
		}
	case *objects.LocalInclude:
		mf.write("LOCAL_INCLUDES += -I%s", includePath(o.Path))
	case *objects.Exports:
		mf.appendEach("EXPORTS", o.Files)
	case *objects.FinalTargetFiles:
		mf.appendEach("FINAL_TARGET_FILES", o.Files)
	case *objects.GeneratedFile:
		generatedFile(mf, o)
	case objects.ExternalLibrary:
		// Built elsewhere; consumers reference it in their link lines.
	case *objects.HostRustLibrary:
		rustLibrary(mf, "HOST_", &o.RustLibrary)
	case *objects.RustLibrary:
		rustLibrary(mf, "", o)
	case *objects.StaticLibrary:
		mf.writeOnce("LIBRARY_NAME := %s", o.Basename())
		mf.assign("FORCE_STATIC_LIB", "1")
		mf.assign("REAL_LIBRARY", o.LibName())
		if o.NoExpandLib {
			mf.assign("NO_EXPAND_LIBS", "1")
		}
	case *objects.SharedLibrary:
		sharedLibrary(mf, o)
		b.linkables = append(b.linkables, o)
	case *objects.HostLibrary:
		mf.assign("HOST_LIBRARY_NAME", o.Basename())
		mf.assign("HOST_LIBRARY", o.LibName())
	case *objects.Program:
		mf.assign("PROGRAM", o.Program())
		b.linkables = append(b.linkables, o)
	case *objects.HostProgram:
		mf.assign("HOST_PROGRAM", o.Program())
		b.linkables = append(b.linkables, o)
	case *objects.SimpleProgram:
		if o.IsUnitTest() {
			mf.write("CPP_UNIT_TESTS += %s", o.Program())
		} else {
			mf.write("SIMPLE_PROGRAMS += %s", o.Program())
		}
		b.linkables = append(b.linkables, o)
	case *objects.HostSimpleProgram:
		mf.write("HOST_SIMPLE_PROGRAMS += %s", o.Program())
		b.linkables = append(b.linkables, o)
	case *objects.HostRustProgram:
		mf.write("HOST_RUST_PROGRAMS += %s", o.Location)
		mf.write("HOST_RUST_CARGO_PROGRAMS += %s", o.Name)
		mf.writeOnce("CARGO_FILE := %s", o.CargoFile)
	case *objects.RustProgram:
		mf.write("RUST_PROGRAMS += %s", o.Location)
		mf.write("RUST_CARGO_PROGRAMS += %s", o.Name)
		mf.writeOnce("CARGO_FILE := %s", o.CargoFile)
	default:
		return errors.Newf(errors.ErrInternal, "%s backend cannot handle %s", Name, obj.Type())
	}
	return nil
}

func installationTarget(mf *makeFile, o *objects.InstallationTarget) {
	if o.XPIName != "" {
		mf.assign("XPI_NAME", o.XPIName)
	}
	if o.Subdir != "" {
		mf.assign("DIST_SUBDIR", o.Subdir)
	}
	if o.IsCustom() {
		mf.write("FINAL_TARGET = $(DEPTH)/%s", o.Target)
	}
	if !o.Enabled {
		mf.assign("NO_DIST_INSTALL", "1")
	}
}

// includePath maps "/dir" to the top source directory, "!dir" to the object
// directory and anything else to the current source directory.
func includePath(p string) string {
	switch {
	case strings.HasPrefix(p, "/"):
		return "$(topsrcdir)" + p
	case strings.HasPrefix(p, "!"):
		return "$(CURDIR)/" + strings.TrimPrefix(p, "!")
	default:
		return "$(srcdir)/" + p
	}
}

func generatedFile(mf *makeFile, o *objects.GeneratedFile) {
	mf.appendEach("GENERATED_FILES", o.Outputs)
	if o.Script == "" {
		return
	}
	output := o.Outputs[0]
	deps := []string{"$(srcdir)/" + o.Script}
	for _, in := range o.Inputs {
		deps = append(deps, "$(srcdir)/"+in)
	}
	if len(o.Flags) > 0 {
		mf.assign(output+"_FLAGS", strings.Join(o.Flags, " "))
	}
	mf.write("%s: %s", strings.Join(o.Outputs, " "), strings.Join(deps, " "))
	args := append([]string{"$(srcdir)/" + o.Script, o.Method, output, "$(MDDEPDIR)/" + output + ".pp"}, deps[1:]...)
	if len(o.Flags) > 0 {
		args = append(args, "$("+output+"_FLAGS)")
	}
	mf.write("\t$(call py_action,file_generate,%s)", strings.Join(args, " "))
}

func sharedLibrary(mf *makeFile, o *objects.SharedLibrary) {
	mf.writeOnce("LIBRARY_NAME := %s", o.Basename())
	mf.assign("FORCE_SHARED_LIB", "1")
	mf.assign("SHARED_LIBRARY", o.LibName())
	mf.assign("IMPORT_LIBRARY", o.ImportName())
	mf.assign("DSO_SONAME", o.Soname)
	switch o.Variant {
	case objects.VariantFramework:
		mf.assign("IS_FRAMEWORK", "1")
	case objects.VariantComponent:
		mf.assign("IS_COMPONENT", "1")
	}
	if o.SymbolsFile != "" {
		mf.assign("SYMBOLS_FILE", o.SymbolsFile)
	}
}

func rustLibrary(mf *makeFile, prefix string, o *objects.RustLibrary) {
	mf.assign(prefix+"RUST_LIBRARY_FILE", o.ImportName())
	mf.assign(prefix+"RUST_LIBRARY_NAME", o.Basename())
	mf.writeOnce("CARGO_FILE := %s", o.CargoFile)
	mf.assign(prefix+"CARGO_TARGET_DIR", o.TargetDir)
	if len(o.Features) > 0 {
		mf.assign(prefix+"RUST_LIBRARY_FEATURES", strings.Join(o.Features, " "))
	}
}

func (b *Backend) unifiedSources(mf *makeFile, o *objects.UnifiedSources) error {
	variable := sourceVars[o.CanonicalSuffix]
	if !o.HaveUnifiedMapping {
		mf.appendEach(variable, o.Files)
		return nil
	}

	srcDir := o.SrcDir()
	for _, unified := range o.UnifiedMapping {
		var content strings.Builder
		content.WriteString("#define MOZ_UNIFIED_BUILD\n")
		for _, member := range unified.Members {
			content.WriteString("#include \"" + filepath.ToSlash(filepath.Join(srcDir, member)) + "\"\n")
		}
		if err := b.WriteFile(filepath.Join(o.ObjDir(), unified.Name), content.String()); err != nil {
			return err
		}
	}
	mf.assign("UNIFIED_"+variable, strings.Join(o.UnifiedMapping.Names(), " "))
	mf.write("%s += $(UNIFIED_%s)", variable, variable)
	return nil
}

// Finish writes the link lines, now that linkage is final, and every
// backend.mk.
func (b *Backend) Finish() error {
	for _, l := range b.linkables {
		b.linkLines(b.files[l.RelObjDir()], l)
	}
	for _, rel := range b.order {
		mf := b.files[rel]
		if err := b.WriteFile(mf.path, mf.String()); err != nil {
			return err
		}
	}
	b.Logger().Debug().Int("files", len(b.order)).Msg("Wrote backend files")
	return nil
}

func varPrefix(l objects.Linkable) string {
	prefix := ""
	switch p := l.(type) {
	case *objects.SimpleProgram:
		prefix = p.Program() + "_"
	case *objects.HostSimpleProgram:
		prefix = p.Program() + "_"
	}
	if l.Kind() == objects.KindHost {
		prefix += "HOST_"
	}
	return prefix
}

func libPath(lib objects.Library) string {
	return "$(DEPTH)/" + path.Join(lib.RelObjDir(), lib.ImportName())
}

func (b *Backend) linkLines(mf *makeFile, l objects.Linkable) {
	prefix := varPrefix(l)
	libs, systemLibs := expandLibs(l)
	for _, lib := range libs {
		switch lib.(type) {
		case *objects.SharedLibrary, *objects.ExternalSharedLibrary:
			mf.write("%sSHARED_LIBS += %s", prefix, libPath(lib))
		default:
			mf.write("%sSTATIC_LIBS += %s", prefix, libPath(lib))
		}
	}
	mf.appendEach(prefix+"OS_LIBS", systemLibs)
	if l.RequiresNativeLink() {
		mf.assign(prefix+"CXX_LINK", "1")
	}
}

// expandLibs flattens static libraries into their consumer: a program
// linking a static library also needs everything that library links.
// Shared libraries are linked as they are.
func expandLibs(l objects.Linkable) ([]objects.Library, []string) {
	var libs []objects.Library
	var systemLibs []string
	seenLib := make(map[objects.ID]bool)
	seenSys := make(map[string]bool)

	addSystem := func(names []string) {
		for _, name := range names {
			if !seenSys[name] {
				seenSys[name] = true
				systemLibs = append(systemLibs, name)
			}
		}
	}

	var walk func(objects.Linkable)
	walk = func(consumer objects.Linkable) {
		for _, lib := range consumer.LinkedLibraries() {
			if seenLib[lib.ID()] {
				continue
			}
			seenLib[lib.ID()] = true
			libs = append(libs, lib)
			switch lib.(type) {
			case *objects.SharedLibrary, *objects.ExternalSharedLibrary:
			default:
				addSystem(lib.LinkedSystemLibraries())
				walk(lib)
			}
		}
	}

	addSystem(l.LinkedSystemLibraries())
	walk(l)
	return libs, systemLibs
}
