package reader

import (
	"github.com/hashicorp/hcl/v2"
)

// fileRoot is everything a build description file may contain.
type fileRoot struct {
	Dirs               []string `hcl:"dirs,optional"`
	Sources            []string `hcl:"sources,optional"`
	UnifiedSources     []string `hcl:"unified_sources,optional"`
	HostSources        []string `hcl:"host_sources,optional"`
	GeneratedSources   []string `hcl:"generated_sources,optional"`
	LocalIncludes      []string `hcl:"local_includes,optional"`
	Exports            []string `hcl:"exports,optional"`
	FinalTargetFiles   []string `hcl:"final_target_files,optional"`
	UseLibs            []string `hcl:"use_libs,optional"`
	HostUseLibs        []string `hcl:"host_use_libs,optional"`
	OSLibs             []string `hcl:"os_libs,optional"`
	HostOSLibs         []string `hcl:"host_os_libs,optional"`
	SimplePrograms     []string `hcl:"simple_programs,optional"`
	HostSimplePrograms []string `hcl:"host_simple_programs,optional"`
	RustPrograms       []string `hcl:"rust_programs,optional"`
	HostRustPrograms   []string `hcl:"host_rust_programs,optional"`
	FinalTarget        string   `hcl:"final_target,optional"`
	XPIName            string   `hcl:"xpi_name,optional"`
	DistSubdir         string   `hcl:"dist_subdir,optional"`

	Defines             hcl.Expression `hcl:"defines,optional"`
	HostDefines         hcl.Expression `hcl:"host_defines,optional"`
	DistInstall         hcl.Expression `hcl:"dist_install,optional"`
	FilesPerUnifiedFile hcl.Expression `hcl:"files_per_unified_file,optional"`

	Libraries      []*libraryBlock       `hcl:"library,block"`
	HostLibraries  []*hostLibraryBlock   `hcl:"host_library,block"`
	RustLibraries  []*rustLibraryBlock   `hcl:"rust_library,block"`
	Programs       []*programBlock       `hcl:"program,block"`
	GeneratedFiles []*generatedFileBlock `hcl:"generated_file,block"`
}

type libraryBlock struct {
	Name        string         `hcl:"name,label"`
	Shared      bool           `hcl:"shared,optional"`
	Static      bool           `hcl:"static,optional"`
	RealName    string         `hcl:"real_name,optional"`
	Soname      string         `hcl:"soname,optional"`
	Framework   bool           `hcl:"framework,optional"`
	Component   bool           `hcl:"component,optional"`
	SymbolsFile hcl.Expression `hcl:"symbols_file,optional"`
	External    bool           `hcl:"external,optional"`
	NoExpandLib bool           `hcl:"no_expand_lib,optional"`
	LinkInto    string         `hcl:"link_into,optional"`
}

type hostLibraryBlock struct {
	Name string `hcl:"name,label"`
}

type rustLibraryBlock struct {
	Name      string   `hcl:"name,label"`
	Features  []string `hcl:"features,optional"`
	TargetDir string   `hcl:"target_dir,optional"`
	Host      bool     `hcl:"host,optional"`
}

type programBlock struct {
	Name     string `hcl:"name,label"`
	Host     bool   `hcl:"host,optional"`
	UnitTest bool   `hcl:"unit_test,optional"`
}

type generatedFileBlock struct {
	Output  string   `hcl:"output,label"`
	Script  string   `hcl:"script,optional"`
	Method  string   `hcl:"method,optional"`
	Inputs  []string `hcl:"inputs,optional"`
	Outputs []string `hcl:"outputs,optional"`
	Flags   []string `hcl:"flags,optional"`
}
