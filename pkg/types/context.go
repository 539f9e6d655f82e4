package types

import (
	"path"
	"path/filepath"
	"sort"
)

// Well-known description variables.
const (
	VarDirs                = "DIRS"
	VarSources             = "SOURCES"
	VarUnifiedSources      = "UNIFIED_SOURCES"
	VarHostSources         = "HOST_SOURCES"
	VarGeneratedSources    = "GENERATED_SOURCES"
	VarLocalIncludes       = "LOCAL_INCLUDES"
	VarExports             = "EXPORTS"
	VarFinalTargetFiles    = "FINAL_TARGET_FILES"
	VarUseLibs             = "USE_LIBS"
	VarHostUseLibs         = "HOST_USE_LIBS"
	VarOSLibs              = "OS_LIBS"
	VarHostOSLibs          = "HOST_OS_LIBS"
	VarDefines             = "DEFINES"
	VarHostDefines         = "HOST_DEFINES"
	VarFinalTarget         = "FINAL_TARGET"
	VarXPIName             = "XPI_NAME"
	VarDistSubdir          = "DIST_SUBDIR"
	VarDistInstall         = "DIST_INSTALL"
	VarFilesPerUnifiedFile = "FILES_PER_UNIFIED_FILE"
	VarGeneratedFiles      = "GENERATED_FILES"

	VarLibraryName         = "LIBRARY_NAME"
	VarForceSharedLib      = "FORCE_SHARED_LIB"
	VarForceStaticLib      = "FORCE_STATIC_LIB"
	VarSharedLibraryName   = "SHARED_LIBRARY_NAME"
	VarSoname              = "SONAME"
	VarIsFramework         = "IS_FRAMEWORK"
	VarIsComponent         = "IS_COMPONENT"
	VarSymbolsFile         = "SYMBOLS_FILE"
	VarGenerateSymbolsFile = "GENERATE_SYMBOLS_FILE"
	VarExternalLibrary     = "EXTERNAL_LIBRARY"
	VarNoExpandLibs        = "NO_EXPAND_LIBS"
	VarFinalLibrary        = "FINAL_LIBRARY"
	VarHostLibraryName     = "HOST_LIBRARY_NAME"

	VarRustLibraryName          = "RUST_LIBRARY_NAME"
	VarRustLibraryFeatures      = "RUST_LIBRARY_FEATURES"
	VarRustLibraryTargetDir     = "RUST_LIBRARY_TARGET_DIR"
	VarHostRustLibraryName      = "HOST_RUST_LIBRARY_NAME"
	VarHostRustLibraryFeatures  = "HOST_RUST_LIBRARY_FEATURES"
	VarHostRustLibraryTargetDir = "HOST_RUST_LIBRARY_TARGET_DIR"

	VarProgram            = "PROGRAM"
	VarHostProgram        = "HOST_PROGRAM"
	VarSimplePrograms     = "SIMPLE_PROGRAMS"
	VarHostSimplePrograms = "HOST_SIMPLE_PROGRAMS"
	VarCppUnitTests       = "CPP_UNIT_TESTS"
	VarRustPrograms       = "RUST_PROGRAMS"
	VarHostRustPrograms   = "HOST_RUST_PROGRAMS"
)

// GeneratedFileSpec describes one GENERATED_FILES entry.
type GeneratedFileSpec struct {
	Output  string
	Outputs []string
	Script  string
	Method  string
	Inputs  []string
	Flags   []string
}

// Context is the immutable result of evaluating one build description file.
// Values are strings, string lists, bools, ints, []Define or
// []GeneratedFileSpec; accessors hand out copies.
type Context struct {
	config    *Config
	relSrcDir string
	vars      map[string]interface{}
	mainPath  string
	allPaths  []string
}

// NewContext snapshots vars into a new Context.
func NewContext(cfg *Config, relsrcdir string, vars map[string]interface{}, mainPath string, allPaths []string) *Context {
	c := &Context{
		config:    cfg,
		relSrcDir: path.Clean(filepath.ToSlash(relsrcdir)),
		vars:      make(map[string]interface{}, len(vars)),
		mainPath:  mainPath,
		allPaths:  append([]string(nil), allPaths...),
	}
	if c.relSrcDir == "." {
		c.relSrcDir = ""
	}
	if len(c.allPaths) == 0 && mainPath != "" {
		c.allPaths = []string{mainPath}
	}
	for k, v := range vars {
		c.vars[k] = copyValue(v)
	}
	return c
}

func copyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []Define:
		return append([]Define(nil), val...)
	case []GeneratedFileSpec:
		return append([]GeneratedFileSpec(nil), val...)
	default:
		return v
	}
}

func (c *Context) Config() *Config   { return c.config }
func (c *Context) RelSrcDir() string { return c.relSrcDir }
func (c *Context) MainPath() string  { return c.mainPath }

// AllPaths lists every file that contributed to this context.
func (c *Context) AllPaths() []string { return append([]string(nil), c.allPaths...) }

// SrcDir is the absolute source directory.
func (c *Context) SrcDir() string {
	return filepath.Join(c.config.TopSrcDir, filepath.FromSlash(c.relSrcDir))
}

// ObjDir is the absolute object directory.
func (c *Context) ObjDir() string {
	return filepath.Join(c.config.TopObjDir, filepath.FromSlash(c.relSrcDir))
}

// Has reports whether the description set key.
func (c *Context) Has(key string) bool {
	_, ok := c.vars[key]
	return ok
}

// Keys returns the set variable names, sorted.
func (c *Context) Keys() []string {
	keys := make([]string, 0, len(c.vars))
	for k := range c.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Context) String(key string) string {
	s, _ := c.vars[key].(string)
	return s
}

func (c *Context) Strings(key string) []string {
	list, _ := c.vars[key].([]string)
	return append([]string(nil), list...)
}

func (c *Context) Bool(key string) bool {
	b, _ := c.vars[key].(bool)
	return b
}

// Int returns key as an integer, or def when unset.
func (c *Context) Int(key string, def int) int {
	if n, ok := c.vars[key].(int); ok {
		return n
	}
	return def
}

func (c *Context) Defines(key string) []Define {
	defs, _ := c.vars[key].([]Define)
	return append([]Define(nil), defs...)
}

func (c *Context) GeneratedFiles() []GeneratedFileSpec {
	specs, _ := c.vars[VarGeneratedFiles].([]GeneratedFileSpec)
	return append([]GeneratedFileSpec(nil), specs...)
}

// FinalTarget is FINAL_TARGET when set, otherwise derived from XPI_NAME and
// DIST_SUBDIR.
func (c *Context) FinalTarget() string {
	if t := c.String(VarFinalTarget); t != "" {
		return t
	}
	target := "dist/bin"
	if xpi := c.String(VarXPIName); xpi != "" {
		target = "dist/xpi-stage/" + xpi
	}
	if sub := c.String(VarDistSubdir); sub != "" {
		target += "/" + sub
	}
	return target
}

// DistInstall is false only when DIST_INSTALL was explicitly disabled.
func (c *Context) DistInstall() bool {
	v, ok := c.vars[VarDistInstall].(bool)
	return !ok || v
}
