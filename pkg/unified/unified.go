// Package unified groups source files into unified compilation units.
package unified

import (
	"fmt"
	"sort"
	"strings"
)

// maxPrefixLen bounds the directory tag so generated paths stay short on
// filesystems with path length limits.
const maxPrefixLen = 20

// File is one generated unified source and the files it includes.
type File struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// Mapping is the ordered list of unified files of a directory.
type Mapping []File

// Enabled reports whether a batch size turns unification on. A size of one
// or less means every source compiles on its own.
func Enabled(filesPerUnifiedFile int) bool {
	return filesPerUnifiedFile > 1
}

// Group sorts files and splits them into consecutive batches of
// filesPerUnifiedFile, naming batch i Unified_<suffix>_<prefix><i>.<suffix>.
// The result depends only on the set of files and the parameters. It
// returns nil when unification is disabled.
func Group(files []string, filesPerUnifiedFile int, relSrcDir, canonicalSuffix string) Mapping {
	if !Enabled(filesPerUnifiedFile) {
		return nil
	}

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	suffix := strings.TrimPrefix(canonicalSuffix, ".")
	prefix := fmt.Sprintf("Unified_%s_%s", suffix, Prefix(relSrcDir))

	mapping := make(Mapping, 0, (len(sorted)+filesPerUnifiedFile-1)/filesPerUnifiedFile)
	for i := 0; i*filesPerUnifiedFile < len(sorted); i++ {
		start := i * filesPerUnifiedFile
		end := start + filesPerUnifiedFile
		if end > len(sorted) {
			end = len(sorted)
		}
		mapping = append(mapping, File{
			Name:    fmt.Sprintf("%s%d.%s", prefix, i, suffix),
			Members: append([]string(nil), sorted[start:end]...),
		})
	}
	return mapping
}

// Prefix derives the directory tag: directories longer than 20 characters
// keep their last 20, minus any leading partial component, and '/' becomes
// '_'. Lengths count runes, so multi-byte names are never cut mid-character.
func Prefix(relSrcDir string) string {
	prefix := relSrcDir
	if runes := []rune(prefix); len(runes) > maxPrefixLen {
		prefix = string(runes[len(runes)-maxPrefixLen:])
		if i := strings.Index(prefix, "/"); i >= 0 {
			prefix = prefix[i+1:]
		}
	}
	return strings.ReplaceAll(prefix, "/", "_")
}

// Names returns the generated file names in order.
func (m Mapping) Names() []string {
	names := make([]string, len(m))
	for i, f := range m {
		names[i] = f.Name
	}
	return names
}
