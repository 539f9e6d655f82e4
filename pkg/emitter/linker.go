package emitter

import (
	"path"
	"strings"

	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/objects"
)

// StaticPrefix in a USE_LIBS entry selects the static variant of a library
// that is built both ways.
const StaticPrefix = "static:"

type linkRequest struct {
	consumer objects.Linkable
	variable string
	useLibs  []string
	osLibs   []string
}

type finalRequest struct {
	lib  objects.Library
	into string
}

// linker defers linkage until every library is known.
type linker struct {
	byName   map[string][]objects.Library
	requests []linkRequest
	finals   []finalRequest
}

func newLinker() *linker {
	return &linker{byName: make(map[string][]objects.Library)}
}

func (l *linker) register(lib objects.Library) {
	l.byName[lib.Basename()] = append(l.byName[lib.Basename()], lib)
}

func (l *linker) request(consumer objects.Linkable, variable string, useLibs, osLibs []string) {
	l.requests = append(l.requests, linkRequest{consumer: consumer, variable: variable, useLibs: useLibs, osLibs: osLibs})
}

func (l *linker) linkInto(lib objects.Library, into string) {
	l.finals = append(l.finals, finalRequest{lib: lib, into: into})
}

// link resolves every request, rejects cycles and links libraries before
// their consumers so that native-link requirements propagate transitively.
func (l *linker) link() error {
	g := newGraph()
	for _, req := range l.requests {
		g.addNode(req.consumer)
		for _, name := range req.useLibs {
			lib, err := l.resolve(req.consumer, req.variable, name)
			if err != nil {
				return err
			}
			if lib != nil {
				g.addEdge(req.consumer, lib)
			}
		}
	}
	for _, f := range l.finals {
		into, err := l.resolveFinal(f)
		if err != nil {
			return err
		}
		g.addEdge(into, f.lib)
	}

	order, err := g.sort()
	if err != nil {
		return err
	}
	for _, consumer := range order {
		for _, lib := range g.edges[consumer.ID()] {
			if err := objects.LinkLibrary(consumer, lib); err != nil {
				return err
			}
		}
	}

	for _, req := range l.requests {
		for _, name := range req.osLibs {
			objects.LinkSystemLibrary(req.consumer, name)
		}
	}
	return nil
}

func isShared(lib objects.Library) bool {
	switch lib.(type) {
	case *objects.SharedLibrary, *objects.ExternalSharedLibrary:
		return true
	}
	return false
}

// resolve maps a USE_LIBS entry to a library. Entries are "name",
// "dir/name" or either with the static: prefix. A library does not link its
// own variants, so those resolve to nil.
func (l *linker) resolve(consumer objects.Linkable, variable, entry string) (objects.Library, error) {
	name := entry
	staticOnly := strings.HasPrefix(name, StaticPrefix)
	name = strings.TrimPrefix(name, StaticPrefix)
	dir, base := path.Split(name)
	dir = strings.TrimSuffix(dir, "/")

	_, consumerIsLib := consumer.(objects.Library)
	var candidates []objects.Library
	for _, lib := range l.byName[base] {
		if dir != "" && lib.RelativeDir() != dir {
			continue
		}
		if staticOnly && isShared(lib) {
			continue
		}
		if consumerIsLib && lib.Context() == consumer.Context() {
			continue
		}
		candidates = append(candidates, lib)
	}

	if len(candidates) == 0 {
		if consumerIsLib && l.ownVariant(consumer, base) {
			return nil, nil
		}
		return nil, errors.Newf(errors.ErrConfigValid, "%s contains %q, which does not match any library in the tree", variable, entry).
			WithDetail("consumer", objects.Name(consumer)).
			WithDetail("file", consumer.Context().MainPath())
	}

	// A kind mismatch is left to LinkLibrary, which reports it.
	sameKind := candidates[:0:0]
	for _, lib := range candidates {
		if lib.Kind() == consumer.Kind() {
			sameKind = append(sameKind, lib)
		}
	}
	if len(sameKind) > 0 {
		candidates = sameKind
	}

	if len(candidates) > 1 && !staticOnly {
		candidates = preferShared(candidates)
	}
	if len(candidates) > 1 {
		paths := make([]string, 0, len(candidates))
		for _, lib := range candidates {
			paths = append(paths, objects.Name(lib))
		}
		return nil, errors.Newf(errors.ErrConfigValid, "%s contains %q, which matches libraries defined in multiple places: %s; use dir/name to pick one", variable, entry, strings.Join(paths, ", ")).
			WithDetail("consumer", objects.Name(consumer)).
			WithDetail("file", consumer.Context().MainPath())
	}
	return candidates[0], nil
}

func (l *linker) ownVariant(consumer objects.Linkable, name string) bool {
	for _, lib := range l.byName[name] {
		if lib.Context() == consumer.Context() {
			return true
		}
	}
	return false
}

// preferShared picks the shared variant when all candidates come from a
// single directory that builds a library both ways.
func preferShared(candidates []objects.Library) []objects.Library {
	dir := candidates[0].RelativeDir()
	var shared []objects.Library
	for _, lib := range candidates {
		if lib.RelativeDir() != dir {
			return candidates
		}
		if isShared(lib) {
			shared = append(shared, lib)
		}
	}
	if len(shared) == 1 {
		return shared
	}
	return candidates
}

func (l *linker) resolveFinal(f finalRequest) (objects.Linkable, error) {
	var found []objects.Library
	for _, lib := range l.byName[f.into] {
		if lib.Context() != f.lib.Context() {
			found = append(found, lib)
		}
	}
	if len(found) > 1 {
		found = preferShared(found)
	}
	switch len(found) {
	case 0:
		return nil, errors.Newf(errors.ErrConfigValid, "link_into of %s names %q, which does not match any library in the tree", f.lib.Basename(), f.into).
			WithDetail("file", f.lib.Context().MainPath())
	case 1:
		return found[0], nil
	default:
		return nil, errors.Newf(errors.ErrConfigValid, "link_into of %s names %q, which matches libraries defined in multiple places", f.lib.Basename(), f.into).
			WithDetail("file", f.lib.Context().MainPath())
	}
}
