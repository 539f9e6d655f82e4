package backend

import (
	"github.com/arthur-debert/treegen/pkg/errors"
	"github.com/arthur-debert/treegen/pkg/registry"
	"github.com/arthur-debert/treegen/pkg/types"
	"github.com/spf13/afero"
)

// DefaultBackend is used when the configuration names none.
const DefaultBackend = "RecursiveMake"

// Factory builds a backend writing under cfg.TopObjDir on fsys.
type Factory func(cfg *types.Config, fsys afero.Fs) Backend

var factories = registry.New[Factory]("backend")

// Register makes a backend selectable by name. It is called from init().
func Register(name string, factory Factory) {
	registry.MustRegister(factories, name, factory)
}

// Names lists the registered backends.
func Names() []string { return factories.Names() }

// New instantiates the named backend. Unknown names are CONFIG_INVALID.
func New(name string, cfg *types.Config, fsys afero.Fs) (Backend, error) {
	factory, err := factories.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigValid, "invalid backend %q", name).
			WithDetail("choices", factories.Names())
	}
	return factory(cfg, fsys), nil
}

// Validate checks every name before anything is instantiated.
func Validate(names []string) error {
	for _, name := range names {
		if !factories.Has(name) {
			return errors.Newf(errors.ErrConfigValid, "invalid backend %q", name).
				WithDetail("choices", factories.Names())
		}
	}
	return nil
}

// DefaultNames is the BUILD_BACKENDS subst, or DefaultBackend.
func DefaultNames(cfg *types.Config) []string {
	if names := cfg.SubstList("BUILD_BACKENDS"); len(names) > 0 {
		return names
	}
	return []string{DefaultBackend}
}
