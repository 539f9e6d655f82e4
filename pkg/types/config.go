package types

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Config is the configuration environment produced by configure. It is
// shared by every Context of a run and never mutated after NewConfig.
type Config struct {
	TopSrcDir        string
	TopObjDir        string
	Defines          map[string]string
	NonGlobalDefines []string
	// Source is the file the environment was loaded from, if any.
	Source string

	substs map[string]interface{}

	LibPrefix     string
	LibSuffix     string
	RustLibPrefix string
	RustLibSuffix string
	DLLPrefix     string
	DLLSuffix     string
	ImportPrefix  string
	ImportSuffix  string
}

// NewConfig builds a Config and computes the platform name decorations once.
// Subst values are either strings or string lists; any other scalar is
// stored in its string form.
func NewConfig(topsrcdir, topobjdir string, substs map[string]interface{}, defines map[string]string, nonGlobalDefines []string) *Config {
	c := &Config{
		TopSrcDir:        filepath.Clean(topsrcdir),
		TopObjDir:        filepath.Clean(topobjdir),
		Defines:          make(map[string]string, len(defines)),
		NonGlobalDefines: append([]string(nil), nonGlobalDefines...),
		substs:           make(map[string]interface{}, len(substs)),
	}
	for k, v := range defines {
		c.Defines[k] = v
	}
	for k, v := range substs {
		c.substs[k] = normalizeSubst(v)
	}

	c.LibPrefix = c.Subst("LIB_PREFIX")
	c.LibSuffix = "." + c.Subst("LIB_SUFFIX")
	c.RustLibPrefix = c.Subst("RUST_LIB_PREFIX")
	c.RustLibSuffix = "." + c.Subst("RUST_LIB_SUFFIX")
	c.DLLPrefix = c.Subst("DLL_PREFIX")
	c.DLLSuffix = c.Subst("DLL_SUFFIX")
	if suffix := c.Subst("IMPORT_LIB_SUFFIX"); suffix != "" {
		c.ImportPrefix = c.LibPrefix
		c.ImportSuffix = "." + suffix
	} else {
		c.ImportPrefix = c.DLLPrefix
		c.ImportSuffix = c.DLLSuffix
	}
	return c
}

func normalizeSubst(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []string:
		return append([]string(nil), val...)
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, scalarString(item))
		}
		return out
	default:
		return scalarString(val)
	}
}

func scalarString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// WithTopObjDir returns a copy rooted at another object directory. The
// substitutions are shared; neither copy mutates them.
func (c *Config) WithTopObjDir(dir string) *Config {
	cp := *c
	cp.TopObjDir = filepath.Clean(dir)
	return &cp
}

// HasSubst reports whether name was set by configure at all.
func (c *Config) HasSubst(name string) bool {
	_, ok := c.substs[name]
	return ok
}

// Subst returns a substitution as a string. Lists are joined with spaces.
func (c *Config) Subst(name string) string {
	switch val := c.substs[name].(type) {
	case string:
		return val
	case []string:
		return strings.Join(val, " ")
	default:
		return ""
	}
}

// SubstList returns a substitution as a list; scalar values are split on
// whitespace.
func (c *Config) SubstList(name string) []string {
	switch val := c.substs[name].(type) {
	case []string:
		return append([]string(nil), val...)
	case string:
		return strings.Fields(val)
	default:
		return nil
	}
}

// SubstBool treats a substitution as a flag: set, non-empty and not "0" or
// "false".
func (c *Config) SubstBool(name string) bool {
	return Truthy(c.Subst(name))
}

// Substs returns a copy of all substitutions in their string form, for
// expression evaluation and serialization.
func (c *Config) Substs() map[string]string {
	out := make(map[string]string, len(c.substs))
	for k := range c.substs {
		out[k] = c.Subst(k)
	}
	return out
}

// SubstNames returns all substitution names, sorted.
func (c *Config) SubstNames() []string {
	names := make([]string, 0, len(c.substs))
	for k := range c.substs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Truthy is the configure convention for boolean substitutions.
func Truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false":
		return false
	}
	return true
}
