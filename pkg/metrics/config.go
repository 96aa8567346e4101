package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config selects where and under which names a component's metrics are
// registered. The zero value means the default registerer and namespace.
type Config struct {
	Enabled bool

	// Registry receives the collectors. Nil means prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Namespace replaces DefaultNamespace when set.
	Namespace string

	// Labels are attached as constant labels to every series.
	Labels prometheus.Labels
}

// DefaultConfig returns an enabled config on the default registerer.
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Registry:  prometheus.DefaultRegisterer,
		Namespace: DefaultNamespace,
	}
}

type registryKey struct {
	reg       prometheus.Registerer
	namespace string
	labels    string
}

func (c Config) key() registryKey {
	k := registryKey{reg: c.Registry, namespace: c.Namespace}
	if k.reg == nil {
		k.reg = prometheus.DefaultRegisterer
	}
	if k.namespace == "" {
		k.namespace = DefaultNamespace
	}
	if len(c.Labels) > 0 {
		names := make([]string, 0, len(c.Labels))
		for name := range c.Labels {
			names = append(names, name)
		}
		sort.Strings(names)
		var b strings.Builder
		for _, name := range names {
			fmt.Fprintf(&b, "%s=%q,", name, c.Labels[name])
		}
		k.labels = b.String()
	}
	return k
}

var (
	registriesMu sync.Mutex
	registries   = map[registryKey]*Registry{}
)

// For returns the Registry registered for config, creating it on first use.
// Every series carries a component name label, so components sharing a
// registerer share one Registry instead of colliding on registration.
func For(config Config) *Registry {
	k := config.key()
	registriesMu.Lock()
	defer registriesMu.Unlock()
	if r, ok := registries[k]; ok {
		return r
	}
	r := NewRegistryWithConfig(config)
	registries[k] = r
	return r
}

// Instrumentable is implemented by components whose metrics can be
// switched on and off at runtime.
type Instrumentable interface {
	EnableMetrics(config Config) error
	DisableMetrics()
	MetricsEnabled() bool
}
