package emitter

import (
	"path"
	"sort"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/types"
)

var canonicalSuffixes = map[string]string{
	".c":   ".c",
	".cpp": ".cpp",
	".cc":  ".cpp",
	".cxx": ".cpp",
	".m":   ".m",
	".mm":  ".mm",
	".S":   ".S",
	".s":   ".s",
	".asm": ".asm",
}

// suffixOrder is the emission order of source groups.
var suffixOrder = []string{".c", ".cpp", ".m", ".mm", ".S", ".s", ".asm"}

var unifiable = map[string]bool{".c": true, ".cpp": true, ".m": true, ".mm": true}

type sourceGroups map[string][]string

func groupSources(ctx *types.Context, variable string) (sourceGroups, error) {
	groups := make(sourceGroups)
	for _, file := range ctx.Strings(variable) {
		suffix, ok := canonicalSuffixes[path.Ext(file)]
		if !ok {
			return nil, errors.Newf(errors.ErrConfigValid, "%s contains %q with an unknown file type", variable, file).
				WithDetail("file", ctx.MainPath())
		}
		groups[suffix] = append(groups[suffix], file)
	}
	return groups, nil
}

func (g sourceGroups) needsNativeLink() bool {
	return len(g[".cpp"]) > 0 || len(g[".mm"]) > 0
}

// contextEmission collects the objects of one Context in order.
type contextEmission struct {
	e    *Emitter
	ctx  *types.Context
	objs []objects.Object
	// nativeTarget and nativeHost say whether target and host linkables of
	// this context need the C++ linker.
	nativeTarget bool
	nativeHost   bool
}

func (c *contextEmission) add(obj objects.Object) {
	c.e.arena.Add(obj)
	c.objs = append(c.objs, obj)
}

// addLinkable registers a linkable and queues its USE_LIBS and OS_LIBS.
func (c *contextEmission) addLinkable(l objects.Linkable) {
	c.add(l)
	useLibs, osLibs := types.VarUseLibs, types.VarOSLibs
	native := c.nativeTarget
	if l.Kind() == objects.KindHost {
		useLibs, osLibs = types.VarHostUseLibs, types.VarHostOSLibs
		native = c.nativeHost
	}
	if native {
		objects.RequireNativeLink(l)
	}
	c.e.linker.request(l, useLibs, c.ctx.Strings(useLibs), c.ctx.Strings(osLibs))
}

func (e *Emitter) emitContext(ctx *types.Context) ([]objects.Object, error) {
	c := &contextEmission{e: e, ctx: ctx}

	c.add(objects.NewDirectoryTraversal(ctx, ctx.Strings(types.VarDirs)))
	c.add(objects.NewInstallationTarget(ctx))

	if defs := ctx.Defines(types.VarDefines); len(defs) > 0 {
		c.add(objects.NewDefines(ctx, defs))
	}
	if defs := ctx.Defines(types.VarHostDefines); len(defs) > 0 {
		c.add(objects.NewHostDefines(ctx, defs))
	}

	if err := c.sources(); err != nil {
		return nil, err
	}

	for _, inc := range ctx.Strings(types.VarLocalIncludes) {
		c.add(objects.NewLocalInclude(ctx, inc))
	}
	if files := ctx.Strings(types.VarExports); len(files) > 0 {
		c.add(objects.NewExports(ctx, files))
	}
	if files := ctx.Strings(types.VarFinalTargetFiles); len(files) > 0 {
		c.add(objects.NewFinalTargetFiles(ctx, files))
	}
	for _, spec := range ctx.GeneratedFiles() {
		c.add(objects.NewGeneratedFile(ctx, spec))
	}

	if err := c.libraries(); err != nil {
		return nil, err
	}
	c.programs()
	if err := c.rustPrograms(); err != nil {
		return nil, err
	}

	e.logger.Trace().Str("dir", ctx.RelSrcDir()).Int("objects", len(c.objs)).Msg("Emitted context")
	return c.objs, nil
}

func (c *contextEmission) sources() error {
	ctx := c.ctx
	sources, err := groupSources(ctx, types.VarSources)
	if err != nil {
		return err
	}
	hostSources, err := groupSources(ctx, types.VarHostSources)
	if err != nil {
		return err
	}
	generated, err := groupSources(ctx, types.VarGeneratedSources)
	if err != nil {
		return err
	}
	unifiedSources, err := groupSources(ctx, types.VarUnifiedSources)
	if err != nil {
		return err
	}
	for suffix := range unifiedSources {
		if !unifiable[suffix] {
			return errors.Newf(errors.ErrConfigValid, "%s files cannot be unified", suffix).
				WithDetail("file", ctx.MainPath())
		}
	}

	for _, suffix := range suffixOrder {
		if files := sources[suffix]; len(files) > 0 {
			c.add(objects.NewSources(ctx, files, suffix))
		}
	}
	for _, suffix := range suffixOrder {
		if files := hostSources[suffix]; len(files) > 0 {
			c.add(objects.NewHostSources(ctx, files, suffix))
		}
	}
	for _, suffix := range suffixOrder {
		if files := generated[suffix]; len(files) > 0 {
			c.add(objects.NewGeneratedSources(ctx, files, suffix))
		}
	}

	perFile := ctx.Int(types.VarFilesPerUnifiedFile, *c.e.opts.FilesPerUnifiedFile)
	if perFile < 0 {
		return errors.Newf(errors.ErrConfigValid, "files_per_unified_file must not be negative, got %d", perFile).
			WithDetail("file", ctx.MainPath())
	}
	for _, suffix := range suffixOrder {
		if files := unifiedSources[suffix]; len(files) > 0 {
			c.add(objects.NewUnifiedSources(ctx, files, suffix, perFile))
		}
	}

	c.nativeTarget = sources.needsNativeLink() || generated.needsNativeLink() || unifiedSources.needsNativeLink()
	c.nativeHost = hostSources.needsNativeLink()
	return nil
}

func (c *contextEmission) libraries() error {
	ctx := c.ctx
	if name := ctx.String(types.VarLibraryName); name != "" {
		if err := c.library(name); err != nil {
			return err
		}
	}
	if name := ctx.String(types.VarHostLibraryName); name != "" {
		lib := objects.NewHostLibrary(ctx, name)
		c.addLinkable(lib)
		c.e.linker.register(lib)
	}
	if name := ctx.String(types.VarRustLibraryName); name != "" {
		lib, err := c.rustLibrary(name, false)
		if err != nil {
			return err
		}
		c.add(lib)
		c.e.linker.register(lib)
	}
	if name := ctx.String(types.VarHostRustLibraryName); name != "" {
		lib, err := c.rustLibrary(name, true)
		if err != nil {
			return err
		}
		c.add(lib)
		c.e.linker.register(lib)
	}
	return nil
}

func (c *contextEmission) library(name string) error {
	ctx := c.ctx
	shared := ctx.Bool(types.VarForceSharedLib)
	static := ctx.Bool(types.VarForceStaticLib) || !shared
	realName := ctx.String(types.VarSharedLibraryName)
	linkInto := ctx.String(types.VarFinalLibrary)
	external := ctx.Bool(types.VarExternalLibrary)

	if shared && static && realName == "" {
		return errors.Newf(errors.ErrConfigValid, "library %s is both static and shared; real_name is required to tell them apart", name).
			WithDetail("file", ctx.MainPath())
	}
	if linkInto != "" && !static {
		return errors.Newf(errors.ErrConfigValid, "library %s: only static libraries can be linked into another library", name).
			WithDetail("file", ctx.MainPath())
	}

	if static {
		opts := objects.StaticLibraryOptions{
			LinkInto:    linkInto,
			NoExpandLib: ctx.Bool(types.VarNoExpandLibs),
		}
		var lib objects.Library
		if external {
			lib = objects.NewExternalStaticLibrary(ctx, name, opts)
		} else {
			lib = objects.NewStaticLibrary(ctx, name, opts)
		}
		c.addLinkable(lib)
		c.e.linker.register(lib)
		if linkInto != "" {
			c.e.linker.linkInto(lib, linkInto)
		}
	}

	if shared {
		opts := objects.SharedLibraryOptions{
			RealName: realName,
			Soname:   ctx.String(types.VarSoname),
		}
		switch {
		case ctx.Bool(types.VarIsFramework):
			opts.Variant = objects.VariantFramework
		case ctx.Bool(types.VarIsComponent):
			opts.Variant = objects.VariantComponent
		}
		switch {
		case ctx.String(types.VarSymbolsFile) != "":
			opts.Symbols = objects.SymbolsNamed
			opts.SymbolsFile = ctx.String(types.VarSymbolsFile)
		case ctx.Bool(types.VarGenerateSymbolsFile):
			opts.Symbols = objects.SymbolsDefault
		}

		var lib objects.Library
		var err error
		if external {
			lib, err = objects.NewExternalSharedLibrary(ctx, name, opts)
		} else {
			lib, err = objects.NewSharedLibrary(ctx, name, opts)
		}
		if err != nil {
			return err
		}
		c.addLinkable(lib)
		c.e.linker.register(lib)
	}
	return nil
}

func (c *contextEmission) rustLibrary(name string, host bool) (objects.Library, error) {
	ctx := c.ctx
	featuresVar, targetDirVar := types.VarRustLibraryFeatures, types.VarRustLibraryTargetDir
	if host {
		featuresVar, targetDirVar = types.VarHostRustLibraryFeatures, types.VarHostRustLibraryTargetDir
	}
	manifest, file, err := readCargoManifest(c.e.fs, ctx.SrcDir())
	if err != nil {
		return nil, err
	}
	crateType, err := manifest.crateType(name, file)
	if err != nil {
		return nil, err
	}

	targetDir := ctx.String(targetDirVar)
	if targetDir == "" {
		targetDir = "."
	}
	features := ctx.Strings(featuresVar)
	sort.Strings(features)

	opts := objects.RustLibraryOptions{
		CargoFile:    file,
		CrateType:    crateType,
		Dependencies: manifest.dependencies(),
		Features:     features,
		TargetDir:    targetDir,
	}
	if host {
		return objects.NewHostRustLibrary(ctx, name, opts)
	}
	return objects.NewRustLibrary(ctx, name, opts)
}

func (c *contextEmission) programs() {
	ctx := c.ctx
	if name := ctx.String(types.VarProgram); name != "" {
		c.addLinkable(objects.NewProgram(ctx, name))
	}
	if name := ctx.String(types.VarHostProgram); name != "" {
		c.addLinkable(objects.NewHostProgram(ctx, name))
	}
	for _, name := range ctx.Strings(types.VarSimplePrograms) {
		c.addLinkable(objects.NewSimpleProgram(ctx, name, false))
	}
	for _, name := range ctx.Strings(types.VarCppUnitTests) {
		c.addLinkable(objects.NewSimpleProgram(ctx, name, true))
	}
	for _, name := range ctx.Strings(types.VarHostSimplePrograms) {
		c.addLinkable(objects.NewHostSimpleProgram(ctx, name))
	}
}

func (c *contextEmission) rustPrograms() error {
	ctx := c.ctx
	target := ctx.Strings(types.VarRustPrograms)
	host := ctx.Strings(types.VarHostRustPrograms)
	if len(target) == 0 && len(host) == 0 {
		return nil
	}

	manifest, file, err := readCargoManifest(c.e.fs, ctx.SrcDir())
	if err != nil {
		return err
	}
	check := func(variable, name string) error {
		if manifest.hasBinary(name) {
			return nil
		}
		return errors.Newf(errors.ErrConfigValid, "%s contains %q which is not a binary of %s", variable, name, file).
			WithDetail("file", ctx.MainPath())
	}

	for _, name := range target {
		if err := check(types.VarRustPrograms, name); err != nil {
			return err
		}
		c.add(objects.NewRustProgram(ctx, name, file))
	}
	for _, name := range host {
		if err := check(types.VarHostRustPrograms, name); err != nil {
			return err
		}
		c.add(objects.NewHostRustProgram(ctx, name, file))
	}
	return nil
}
