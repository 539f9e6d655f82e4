package reader

import (
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/hashicorp/hcl/v2"
)

// toVars flattens a decoded file into description variables.
func toVars(root *fileRoot, evalCtx *hcl.EvalContext) (map[string]interface{}, error) {
	vars := make(map[string]interface{})
	setList := func(key string, list []string) {
		if len(list) > 0 {
			vars[key] = list
		}
	}
	setString := func(key, value string) {
		if value != "" {
			vars[key] = value
		}
	}

	setList(types.VarDirs, root.Dirs)
	setList(types.VarSources, root.Sources)
	setList(types.VarUnifiedSources, root.UnifiedSources)
	setList(types.VarHostSources, root.HostSources)
	setList(types.VarGeneratedSources, root.GeneratedSources)
	setList(types.VarLocalIncludes, root.LocalIncludes)
	setList(types.VarExports, root.Exports)
	setList(types.VarFinalTargetFiles, root.FinalTargetFiles)
	setList(types.VarUseLibs, root.UseLibs)
	setList(types.VarHostUseLibs, root.HostUseLibs)
	setList(types.VarOSLibs, root.OSLibs)
	setList(types.VarHostOSLibs, root.HostOSLibs)
	setList(types.VarSimplePrograms, root.SimplePrograms)
	setList(types.VarHostSimplePrograms, root.HostSimplePrograms)
	setList(types.VarRustPrograms, root.RustPrograms)
	setList(types.VarHostRustPrograms, root.HostRustPrograms)
	setString(types.VarFinalTarget, root.FinalTarget)
	setString(types.VarXPIName, root.XPIName)
	setString(types.VarDistSubdir, root.DistSubdir)

	var diags hcl.Diagnostics
	defines, d := decodeDefines(root.Defines, evalCtx)
	diags = append(diags, d...)
	if len(defines) > 0 {
		vars[types.VarDefines] = defines
	}
	hostDefines, d := decodeDefines(root.HostDefines, evalCtx)
	diags = append(diags, d...)
	if len(hostDefines) > 0 {
		vars[types.VarHostDefines] = hostDefines
	}
	if v, set, d := decodeBool(root.DistInstall, evalCtx); set {
		vars[types.VarDistInstall] = v
	} else {
		diags = append(diags, d...)
	}
	if n, set, d := decodeInt(root.FilesPerUnifiedFile, evalCtx); set {
		vars[types.VarFilesPerUnifiedFile] = n
	} else {
		diags = append(diags, d...)
	}

	if err := libraryVars(root, vars, evalCtx, &diags); err != nil {
		return nil, err
	}
	if err := programVars(root, vars); err != nil {
		return nil, err
	}

	if len(root.GeneratedFiles) > 0 {
		specs := make([]types.GeneratedFileSpec, 0, len(root.GeneratedFiles))
		for _, g := range root.GeneratedFiles {
			specs = append(specs, types.GeneratedFileSpec{
				Output:  g.Output,
				Outputs: g.Outputs,
				Script:  g.Script,
				Method:  g.Method,
				Inputs:  g.Inputs,
				Flags:   g.Flags,
			})
		}
		vars[types.VarGeneratedFiles] = specs
	}

	if diags.HasErrors() {
		return nil, errors.Wrap(diags, errors.ErrConfigParse, "invalid attribute value")
	}
	return vars, nil
}

func libraryVars(root *fileRoot, vars map[string]interface{}, evalCtx *hcl.EvalContext, diags *hcl.Diagnostics) error {
	if len(root.Libraries) > 1 {
		return errors.New(errors.ErrConfigValid, "at most one library block is allowed per directory")
	}
	if len(root.HostLibraries) > 1 {
		return errors.New(errors.ErrConfigValid, "at most one host_library block is allowed per directory")
	}

	if len(root.Libraries) == 1 {
		lib := root.Libraries[0]
		if lib.Framework && lib.Component {
			return errors.Newf(errors.ErrConfigValid, "library %s cannot be both a framework and a component", lib.Name)
		}
		vars[types.VarLibraryName] = lib.Name
		if lib.Shared {
			vars[types.VarForceSharedLib] = true
		}
		if lib.Static {
			vars[types.VarForceStaticLib] = true
		}
		if lib.RealName != "" {
			vars[types.VarSharedLibraryName] = lib.RealName
		}
		if lib.Soname != "" {
			vars[types.VarSoname] = lib.Soname
		}
		if lib.Framework {
			vars[types.VarIsFramework] = true
		}
		if lib.Component {
			vars[types.VarIsComponent] = true
		}
		if lib.External {
			vars[types.VarExternalLibrary] = true
		}
		if lib.NoExpandLib {
			vars[types.VarNoExpandLibs] = true
		}
		if lib.LinkInto != "" {
			vars[types.VarFinalLibrary] = lib.LinkInto
		}
		generate, name, d := decodeSymbolsFile(lib.SymbolsFile, evalCtx)
		*diags = append(*diags, d...)
		if generate {
			vars[types.VarGenerateSymbolsFile] = true
		}
		if name != "" {
			vars[types.VarSymbolsFile] = name
		}
	}

	if len(root.HostLibraries) == 1 {
		vars[types.VarHostLibraryName] = root.HostLibraries[0].Name
	}

	var target, host *rustLibraryBlock
	for _, rl := range root.RustLibraries {
		slot := &target
		if rl.Host {
			slot = &host
		}
		if *slot != nil {
			return errors.Newf(errors.ErrConfigValid, "at most one rust_library per kind is allowed per directory, got %s and %s", (*slot).Name, rl.Name)
		}
		*slot = rl
	}
	if target != nil {
		vars[types.VarRustLibraryName] = target.Name
		if len(target.Features) > 0 {
			vars[types.VarRustLibraryFeatures] = target.Features
		}
		if target.TargetDir != "" {
			vars[types.VarRustLibraryTargetDir] = target.TargetDir
		}
	}
	if host != nil {
		vars[types.VarHostRustLibraryName] = host.Name
		if len(host.Features) > 0 {
			vars[types.VarHostRustLibraryFeatures] = host.Features
		}
		if host.TargetDir != "" {
			vars[types.VarHostRustLibraryTargetDir] = host.TargetDir
		}
	}
	return nil
}

func programVars(root *fileRoot, vars map[string]interface{}) error {
	var unitTests []string
	for _, p := range root.Programs {
		switch {
		case p.UnitTest && p.Host:
			return errors.Newf(errors.ErrConfigValid, "program %s: unit tests are target programs", p.Name)
		case p.UnitTest:
			unitTests = append(unitTests, p.Name)
		case p.Host:
			if existing, ok := vars[types.VarHostProgram]; ok {
				return errors.Newf(errors.ErrConfigValid, "at most one host program is allowed per directory, got %s and %s", existing, p.Name)
			}
			vars[types.VarHostProgram] = p.Name
		default:
			if existing, ok := vars[types.VarProgram]; ok {
				return errors.Newf(errors.ErrConfigValid, "at most one program is allowed per directory, got %s and %s", existing, p.Name)
			}
			vars[types.VarProgram] = p.Name
		}
	}
	if len(unitTests) > 0 {
		vars[types.VarCppUnitTests] = unitTests
	}
	return nil
}
