package emitter

import (
	"strings"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/objects"
)

// graph is the consumer -> library dependency graph. Nodes keep insertion
// order so that the link order is deterministic.
type graph struct {
	nodes []objects.Linkable
	known map[objects.ID]bool
	edges map[objects.ID][]objects.Library
}

func newGraph() *graph {
	return &graph{
		known: make(map[objects.ID]bool),
		edges: make(map[objects.ID][]objects.Library),
	}
}

func (g *graph) addNode(n objects.Linkable) {
	if g.known[n.ID()] {
		return
	}
	g.known[n.ID()] = true
	g.nodes = append(g.nodes, n)
}

// addEdge records that from links lib. Repeated edges are kept: a library
// listed twice is linked twice.
func (g *graph) addEdge(from objects.Linkable, lib objects.Library) {
	g.addNode(from)
	g.addNode(lib)
	g.edges[from.ID()] = append(g.edges[from.ID()], lib)
}

// sort returns the nodes with every library ahead of its consumers, or a
// CYCLE error naming the loop.
func (g *graph) sort() ([]objects.Linkable, error) {
	permanent := make(map[objects.ID]bool)
	temporary := make(map[objects.ID]bool)
	var path []objects.Linkable
	var order []objects.Linkable

	var visit func(n objects.Linkable) error
	visit = func(n objects.Linkable) error {
		if permanent[n.ID()] {
			return nil
		}
		if temporary[n.ID()] {
			return cycleError(path, n)
		}

		temporary[n.ID()] = true
		path = append(path, n)
		for _, lib := range g.edges[n.ID()] {
			if err := visit(lib); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		delete(temporary, n.ID())
		permanent[n.ID()] = true
		order = append(order, n)
		return nil
	}

	for _, n := range g.nodes {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func cycleError(path []objects.Linkable, repeated objects.Linkable) error {
	start := 0
	for i, n := range path {
		if n.ID() == repeated.ID() {
			start = i
			break
		}
	}
	names := make([]string, 0, len(path)-start+1)
	for _, n := range path[start:] {
		names = append(names, objects.Name(n))
	}
	names = append(names, objects.Name(repeated))
	return errors.Newf(errors.ErrCycle, "library dependency cycle: %s", strings.Join(names, " -> ")).
		WithDetail("cycle", names)
}
