package objects

import (
	"sort"

	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/arthur-debert/treegen/pkg/unified"
)

type sourcesBase struct {
	baseObject
	Files           []string
	CanonicalSuffix string
}

func newSourcesBase(ctx *types.Context, files []string, suffix string) sourcesBase {
	return sourcesBase{
		baseObject:      newBase(ctx),
		Files:           append([]string(nil), files...),
		CanonicalSuffix: suffix,
	}
}

// Sources are compiled one file at a time.
type Sources struct{ sourcesBase }

func NewSources(ctx *types.Context, files []string, canonicalSuffix string) *Sources {
	return &Sources{newSourcesBase(ctx, files, canonicalSuffix)}
}

func (s *Sources) Type() Type { return TypeSources }

type HostSources struct{ sourcesBase }

func NewHostSources(ctx *types.Context, files []string, canonicalSuffix string) *HostSources {
	return &HostSources{newSourcesBase(ctx, files, canonicalSuffix)}
}

func (s *HostSources) Type() Type { return TypeHostSources }

// GeneratedSources live in the object directory.
type GeneratedSources struct{ sourcesBase }

func NewGeneratedSources(ctx *types.Context, files []string, canonicalSuffix string) *GeneratedSources {
	return &GeneratedSources{newSourcesBase(ctx, files, canonicalSuffix)}
}

func (s *GeneratedSources) Type() Type { return TypeGeneratedSources }

// UnifiedSources are compiled in batches of FilesPerUnifiedFile through
// generated unified files.
type UnifiedSources struct {
	sourcesBase
	FilesPerUnifiedFile int
	HaveUnifiedMapping  bool
	UnifiedMapping      unified.Mapping
}

func NewUnifiedSources(ctx *types.Context, files []string, canonicalSuffix string, filesPerUnifiedFile int) *UnifiedSources {
	s := &UnifiedSources{
		sourcesBase:         newSourcesBase(ctx, files, canonicalSuffix),
		FilesPerUnifiedFile: filesPerUnifiedFile,
		HaveUnifiedMapping:  unified.Enabled(filesPerUnifiedFile),
	}
	if s.HaveUnifiedMapping {
		s.UnifiedMapping = unified.Group(files, filesPerUnifiedFile, ctx.RelSrcDir(), canonicalSuffix)
	}
	return s
}

func (s *UnifiedSources) Type() Type { return TypeUnifiedSources }

// SortedFiles returns Files in lexical order.
func (s *sourcesBase) SortedFiles() []string {
	files := append([]string(nil), s.Files...)
	sort.Strings(files)
	return files
}
