// Package visualstudio generates MSBuild projects, one per library or
// program built by the tree, and a solution tying them together.
package visualstudio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/treegen/pkg/backend"
	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	Name = "VisualStudio"
	// Dir holds every generated project, relative to the top object
	// directory.
	Dir          = "msvc"
	SolutionFile = "treegen.sln"

	msbuildNamespace = "http://schemas.microsoft.com/developer/msbuild/2003"
	cppProjectType   = "{8BC9CEB8-8B4A-11D0-8D11-00A0C91BC942}"
	configuration    = "Build"
)

// Project GUIDs are derived from project names so they survive re-runs.
var guidSpace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte("treegen"))

func init() {
	backend.Register(Name, func(cfg *types.Config, fsys afero.Fs) backend.Backend {
		return New(cfg, fsys)
	})
}

// dirState collects what the objects of one directory contribute to the
// projects defined in it.
type dirState struct {
	sources     []string
	hostSources []string
	defines     []types.Define
	hostDefines []types.Define
	includes    []string
}

type project struct {
	name       string
	guid       string
	configType string
	linkable   objects.Linkable
	dir        *dirState
}

func (p *project) fileName() string { return p.name + ".vcxproj" }

type Backend struct {
	*backend.Base
	dirs     map[string]*dirState
	projects []*project
	names    map[string]bool
	byID     map[objects.ID]*project
}

func New(cfg *types.Config, fsys afero.Fs) *Backend {
	b := &Backend{
		dirs:  make(map[string]*dirState),
		names: make(map[string]bool),
		byID:  make(map[objects.ID]*project),
	}
	b.Base = backend.NewBase(Name, cfg, fsys, b)
	return b
}

func (b *Backend) dirFor(obj objects.Object) *dirState {
	d, ok := b.dirs[obj.RelObjDir()]
	if !ok {
		d = &dirState{}
		b.dirs[obj.RelObjDir()] = d
	}
	return d
}

func joinAll(dir string, files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, filepath.Join(dir, f))
	}
	return out
}

func (b *Backend) ConsumeObject(obj objects.Object) error {
	d := b.dirFor(obj)

	switch o := obj.(type) {
	case *objects.Sources:
		d.sources = append(d.sources, joinAll(o.SrcDir(), o.Files)...)
	case *objects.UnifiedSources:
		// MSBuild compiles the members directly.
		d.sources = append(d.sources, joinAll(o.SrcDir(), o.SortedFiles())...)
	case *objects.GeneratedSources:
		d.sources = append(d.sources, joinAll(o.ObjDir(), o.Files)...)
	case *objects.HostSources:
		d.hostSources = append(d.hostSources, joinAll(o.SrcDir(), o.Files)...)
	case *objects.Defines:
		d.defines = append(d.defines, o.Defines...)
	case *objects.HostDefines:
		d.hostDefines = append(d.hostDefines, o.Defines...)
	case *objects.LocalInclude:
		d.includes = append(d.includes, b.includeDir(o))
	case objects.ExternalLibrary, *objects.RustLibrary, *objects.HostRustLibrary:
		// Linked by import name, no project.
	case *objects.StaticLibrary:
		b.addProject("library", o.Basename(), "StaticLibrary", o, d)
	case *objects.HostLibrary:
		b.addProject("library", o.Basename(), "StaticLibrary", o, d)
	case *objects.SharedLibrary:
		b.addProject("shared", o.Basename(), "DynamicLibrary", o, d)
	case *objects.Program:
		b.addProject("program", o.Program(), "Application", o, d)
	case *objects.SimpleProgram:
		b.addProject("program", o.Program(), "Application", o, d)
	case *objects.HostProgram:
		b.addProject("program", o.Program(), "Application", o, d)
	case *objects.HostSimpleProgram:
		b.addProject("program", o.Program(), "Application", o, d)
	default:
		// Traversal, installation and generated files have no MSBuild
		// counterpart; cargo builds Rust programs.
	}
	return nil
}

func (b *Backend) includeDir(o *objects.LocalInclude) string {
	switch {
	case strings.HasPrefix(o.Path, "/"):
		return filepath.Join(b.Config().TopSrcDir, o.Path)
	case strings.HasPrefix(o.Path, "!"):
		return filepath.Join(o.ObjDir(), strings.TrimPrefix(o.Path, "!"))
	default:
		return filepath.Join(o.SrcDir(), o.Path)
	}
}

func (b *Backend) addProject(prefix, name, configType string, l objects.Linkable, d *dirState) {
	if l.Kind() == objects.KindHost {
		prefix = "host_" + prefix
	}
	projectName := prefix + "_" + name
	if b.names[projectName] {
		projectName += "_" + strings.ReplaceAll(l.RelObjDir(), "/", "_")
	}
	b.names[projectName] = true

	p := &project{
		name:       projectName,
		guid:       guid(projectName),
		configType: configType,
		linkable:   l,
		dir:        d,
	}
	b.projects = append(b.projects, p)
	b.byID[l.ID()] = p
}

func guid(name string) string {
	return "{" + strings.ToUpper(uuid.NewSHA1(guidSpace, []byte(name)).String()) + "}"
}

func (b *Backend) platform() string {
	switch b.Config().Subst("CPU_ARCH") {
	case "x86_64":
		return "x64"
	case "aarch64":
		return "ARM64"
	default:
		return "Win32"
	}
}

// Finish writes the projects, whose references need the final linkage, and
// the solution.
func (b *Backend) Finish() error {
	outDir := filepath.Join(b.Config().TopObjDir, Dir)
	for _, p := range b.projects {
		content, err := b.projectXML(p)
		if err != nil {
			return err
		}
		if err := b.WriteFile(filepath.Join(outDir, p.fileName()), content); err != nil {
			return err
		}
	}
	if err := b.WriteFile(filepath.Join(outDir, SolutionFile), b.solution()); err != nil {
		return err
	}
	b.Logger().Debug().Int("projects", len(b.projects)).Msg("Wrote Visual Studio projects")
	return nil
}

func preprocessorDefinitions(defines []types.Define) (defined, undefined []string) {
	for _, d := range defines {
		switch d.Mode {
		case types.DefineSet:
			defined = append(defined, d.Name)
		case types.DefineUnset:
			undefined = append(undefined, d.Name)
		default:
			defined = append(defined, d.Name+"="+d.Value)
		}
	}
	return defined, undefined
}

// inherit appends the MSBuild idiom keeping values set by the toolchain.
func inherit(values []string, property string) string {
	out := append(append([]string(nil), values...), "%("+property+")")
	return strings.Join(out, ";")
}

func (b *Backend) projectXML(p *project) (string, error) {
	platform := b.platform()
	sources, defines := p.dir.sources, p.dir.defines
	if p.linkable.Kind() == objects.KindHost {
		sources, defines = p.dir.hostSources, p.dir.hostDefines
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement("Project")
	root.CreateAttr("DefaultTargets", "Build")
	root.CreateAttr("ToolsVersion", "15.0")
	root.CreateAttr("xmlns", msbuildNamespace)

	configs := root.CreateElement("ItemGroup")
	configs.CreateAttr("Label", "ProjectConfigurations")
	pc := configs.CreateElement("ProjectConfiguration")
	pc.CreateAttr("Include", configuration+"|"+platform)
	pc.CreateElement("Configuration").SetText(configuration)
	pc.CreateElement("Platform").SetText(platform)

	globals := root.CreateElement("PropertyGroup")
	globals.CreateAttr("Label", "Globals")
	globals.CreateElement("ProjectGuid").SetText(p.guid)
	globals.CreateElement("RootNamespace").SetText(p.name)
	globals.CreateElement("Keyword").SetText("Win32Proj")

	props := root.CreateElement("PropertyGroup")
	props.CreateAttr("Label", "Configuration")
	props.CreateElement("ConfigurationType").SetText(p.configType)
	props.CreateElement("IntDir").SetText(p.linkable.ObjDir() + `\`)

	defs := root.CreateElement("ItemDefinitionGroup")
	compile := defs.CreateElement("ClCompile")
	defined, undefined := preprocessorDefinitions(defines)
	compile.CreateElement("PreprocessorDefinitions").SetText(inherit(defined, "PreprocessorDefinitions"))
	if len(undefined) > 0 {
		compile.CreateElement("UndefinePreprocessorDefinitions").SetText(inherit(undefined, "UndefinePreprocessorDefinitions"))
	}
	compile.CreateElement("AdditionalIncludeDirectories").SetText(inherit(p.dir.includes, "AdditionalIncludeDirectories"))

	references, dependencies := b.linkage(p)
	if len(dependencies) > 0 {
		defs.CreateElement("Link").CreateElement("AdditionalDependencies").SetText(inherit(dependencies, "AdditionalDependencies"))
	}

	if len(sources) > 0 {
		items := root.CreateElement("ItemGroup")
		for _, src := range sources {
			items.CreateElement("ClCompile").CreateAttr("Include", src)
		}
	}

	if len(references) > 0 {
		items := root.CreateElement("ItemGroup")
		for _, ref := range references {
			pr := items.CreateElement("ProjectReference")
			pr.CreateAttr("Include", ref.fileName())
			pr.CreateElement("Project").SetText(ref.guid)
			pr.CreateElement("Name").SetText(ref.name)
		}
	}

	imp := root.CreateElement("Import")
	imp.CreateAttr("Project", `$(VCTargetsPath)\Microsoft.Cpp.targets`)

	doc.Indent(2)
	content, err := doc.WriteToString()
	if err != nil {
		return "", err
	}
	return content, nil
}

// linkage splits the linked libraries into projects of this solution and
// plain link inputs: external and Rust libraries, then system libraries.
func (b *Backend) linkage(p *project) ([]*project, []string) {
	var references []*project
	var dependencies []string
	seen := make(map[objects.ID]bool)
	for _, lib := range p.linkable.LinkedLibraries() {
		if seen[lib.ID()] {
			continue
		}
		seen[lib.ID()] = true
		if ref, ok := b.byID[lib.ID()]; ok {
			references = append(references, ref)
			continue
		}
		dependencies = append(dependencies, filepath.Join(lib.ObjDir(), lib.ImportName()))
	}
	return references, append(dependencies, p.linkable.LinkedSystemLibraries()...)
}

func (b *Backend) solution() string {
	platform := b.platform()
	cfg := configuration + "|" + platform

	var s strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&s, format+"\r\n", args...)
	}

	line("Microsoft Visual Studio Solution File, Format Version 12.00")
	line("# Visual Studio 15")
	for _, p := range b.projects {
		line(`Project("%s") = "%s", "%s", "%s"`, cppProjectType, p.name, p.fileName(), p.guid)
		line("EndProject")
	}
	line("Global")
	line("\tGlobalSection(SolutionConfigurationPlatforms) = preSolution")
	line("\t\t%s = %s", cfg, cfg)
	line("\tEndGlobalSection")
	line("\tGlobalSection(ProjectConfigurationPlatforms) = postSolution")
	for _, p := range b.projects {
		line("\t\t%s.%s.ActiveCfg = %s", p.guid, cfg, cfg)
		line("\t\t%s.%s.Build.0 = %s", p.guid, cfg, cfg)
	}
	line("\tEndGlobalSection")
	line("EndGlobal")
	return s.String()
}
