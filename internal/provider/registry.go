package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/oceanvoyage/voyager/internal/voyageerr"
)

// Factory builds a Provider backend. Credentials are passed through
// opaquely (environment variables the core never interprets) so a
// registry entry never needs to know the shape of its own backend's
// auth.
type Factory func(credentials map[string]string) (Provider, error)

var (
	registryMu sync.RWMutex           //nolint:gochecknoglobals // registry guard
	registry   = map[string]Factory{} //nolint:gochecknoglobals // backend registry, mirrors a package-level provider table
)

// Register adds a named backend factory to the registry. Called from
// backend packages' init() so selecting PROVIDER=name at runtime works
// without the core importing every backend unconditionally.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Names returns the sorted list of currently registered backend names,
// for `voyager doctor`'s preflight report.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get resolves name to a Provider instance via its registered factory.
func Get(name string, credentials map[string]string) (Provider, error) {
	registryMu.RLock()
	factory, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q (available: %v)", voyageerr.ErrProviderUnavailable, name, Names())
	}
	return factory(credentials)
}
