// Package buildgraph dumps every build object of a run, with its final
// linkage, into one YAML document for tooling and debugging.
package buildgraph

import (
	"bytes"
	"path/filepath"

	"github.com/arthur-debert/treegen/pkg/backend"
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/objects"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/arthur-debert/treegen/pkg/unified"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	Name     = "BuildGraph"
	FileName = "build-graph.yaml"
)

func init() {
	backend.Register(Name, func(cfg *types.Config, fsys afero.Fs) backend.Backend {
		return New(cfg, fsys)
	})
}

// Graph is the document written to FileName.
type Graph struct {
	TopSrcDir string `yaml:"topsrcdir"`
	TopObjDir string `yaml:"topobjdir"`
	Objects   []Node `yaml:"objects"`
}

// Node is one build object. Links and Refs hold object IDs.
type Node struct {
	ID         int             `yaml:"id"`
	Type       string          `yaml:"type"`
	Kind       string          `yaml:"kind,omitempty"`
	Dir        string          `yaml:"dir"`
	Name       string          `yaml:"name,omitempty"`
	File       string          `yaml:"file,omitempty"`
	Files      []string        `yaml:"files,omitempty"`
	Defines    []string        `yaml:"defines,omitempty"`
	Unified    unified.Mapping `yaml:"unified,omitempty"`
	Links      []int           `yaml:"links,omitempty"`
	SystemLibs []string        `yaml:"system_libs,omitempty"`
	NativeLink bool            `yaml:"native_link,omitempty"`
	Refs       []int           `yaml:"refs,omitempty"`
}

type Backend struct {
	*backend.Base
	objs []objects.Object
}

func New(cfg *types.Config, fsys afero.Fs) *Backend {
	b := &Backend{}
	b.Base = backend.NewBase(Name, cfg, fsys, b)
	return b
}

// ConsumeObject only collects; linkage is read in Finish.
func (b *Backend) ConsumeObject(obj objects.Object) error {
	b.objs = append(b.objs, obj)
	return nil
}

func (b *Backend) Finish() error {
	graph := Graph{
		TopSrcDir: b.Config().TopSrcDir,
		TopObjDir: b.Config().TopObjDir,
		Objects:   make([]Node, 0, len(b.objs)),
	}
	for _, obj := range b.objs {
		graph.Objects = append(graph.Objects, node(obj))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(graph); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode build graph")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode build graph")
	}
	return b.WriteFile(filepath.Join(b.Config().TopObjDir, FileName), buf.String())
}

func ids(ids []objects.ID) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		out = append(out, int(id))
	}
	return out
}

func node(obj objects.Object) Node {
	n := Node{
		ID:   int(obj.ID()),
		Type: obj.Type().String(),
		Dir:  obj.RelObjDir(),
	}

	if l, ok := obj.(objects.Linkable); ok {
		n.Kind = l.Kind().String()
		for _, lib := range l.LinkedLibraries() {
			n.Links = append(n.Links, int(lib.ID()))
		}
		n.SystemLibs = l.LinkedSystemLibraries()
		n.NativeLink = l.RequiresNativeLink()
	}
	if lib, ok := obj.(objects.Library); ok {
		n.Name = lib.Basename()
		n.File = lib.LibName()
		if refs := lib.Refs(); len(refs) > 0 {
			n.Refs = ids(refs)
		}
	}
	if exe, ok := obj.(objects.Executable); ok {
		n.Name = exe.Program()
	}

	switch o := obj.(type) {
	case *objects.DirectoryTraversal:
		n.Files = o.Dirs
	case *objects.Defines:
		n.Defines = o.Flags()
	case *objects.HostDefines:
		n.Defines = o.Flags()
	case *objects.Sources:
		n.Files = o.Files
	case *objects.HostSources:
		n.Files = o.Files
	case *objects.GeneratedSources:
		n.Files = o.Files
	case *objects.UnifiedSources:
		n.Files = o.SortedFiles()
		n.Unified = o.UnifiedMapping
	case *objects.LocalInclude:
		n.Name = o.Path
	case *objects.Exports:
		n.Files = o.Files
	case *objects.FinalTargetFiles:
		n.Files = o.Files
	case *objects.GeneratedFile:
		n.Name = o.Script
		n.Files = o.Outputs
	case *objects.InstallationTarget:
		n.Name = o.Target
	case *objects.HostRustProgram:
		n.Kind = o.Kind().String()
		n.Name = o.Name
		n.File = o.Location
	case *objects.RustProgram:
		n.Kind = o.Kind().String()
		n.Name = o.Name
		n.File = o.Location
	}
	return n
}
