// SPDX-License-Identifier: MPL-2.0

package moddep

import (
	"errors"
	"fmt"

	"github.com/Brownshome/game-modding/internal/dag"
)

const (
	// ConfigMod holds the declared mods. It is never resolved itself.
	ConfigMod ConfigurationName = "mod"
	// ConfigTopLevelMods resolves the declared mods without their dependencies.
	ConfigTopLevelMods ConfigurationName = "topLevelMods"
	// ConfigSharedModClasspath resolves the closure of all mods in the shared view.
	ConfigSharedModClasspath ConfigurationName = "sharedModClasspath"
	// ConfigPrivateModClasspath resolves the closure of one mod in the runtime view.
	ConfigPrivateModClasspath ConfigurationName = "privateModClasspath"
	// ConfigRuntimeClasspath is the host application's own runtime classpath.
	ConfigRuntimeClasspath ConfigurationName = "runtimeClasspath"

	// UsageAPI is the shared-visible view: only dependencies exported through a
	// module's API are followed.
	UsageAPI Usage = "api"
	// UsageRuntime is the implementation-private view: every runtime dependency
	// is followed.
	UsageRuntime Usage = "runtime"
)

var (
	// ErrUnknownConfiguration is returned when a configuration name is not part
	// of the configuration graph.
	ErrUnknownConfiguration = errors.New("unknown configuration")

	// ErrNotResolvable is returned when a request is built for a configuration
	// that only exists to be extended.
	ErrNotResolvable = errors.New("configuration is not resolvable")
)

type (
	// ConfigurationName names a configuration.
	ConfigurationName string

	// Usage selects which dependency edges a transitive resolution follows.
	Usage string

	// Attributes steer the resolver beyond the usage view.
	Attributes struct {
		// ModuleAware requires every resolved artifact to declare a module name.
		ModuleAware bool
	}

	// Configuration is a named set of dependencies.
	Configuration struct {
		Name        ConfigurationName
		ExtendsFrom []ConfigurationName
		Transitive  bool
		Usage       Usage
		Resolvable  bool
		Visible     bool
		Attributes  Attributes

		declared []Dependency
	}

	// Configurations is the small, statically known configuration graph used by
	// mod collection.
	Configurations struct {
		byName map[ConfigurationName]*Configuration
		order  []ConfigurationName
	}
)

// String returns the string representation of the ConfigurationName.
func (n ConfigurationName) String() string { return string(n) }

// String returns the string representation of the Usage.
func (u Usage) String() string { return string(u) }

// Declared returns the dependencies declared directly on the configuration.
func (c *Configuration) Declared() []Dependency {
	return append([]Dependency(nil), c.declared...)
}

// NewModConfigurations builds the five configurations used by mod collection.
func NewModConfigurations() *Configurations {
	c := &Configurations{byName: make(map[ConfigurationName]*Configuration)}
	c.add(&Configuration{Name: ConfigMod})
	c.add(&Configuration{
		Name:        ConfigTopLevelMods,
		ExtendsFrom: []ConfigurationName{ConfigMod},
		Usage:       UsageAPI,
		Resolvable:  true,
	})
	c.add(&Configuration{
		Name:        ConfigPrivateModClasspath,
		ExtendsFrom: []ConfigurationName{ConfigMod},
		Transitive:  true,
		Usage:       UsageRuntime,
		Resolvable:  true,
	})
	c.add(&Configuration{
		Name:        ConfigSharedModClasspath,
		ExtendsFrom: []ConfigurationName{ConfigMod},
		Transitive:  true,
		Usage:       UsageAPI,
		Resolvable:  true,
		Visible:     true,
	})
	c.add(&Configuration{
		Name:       ConfigRuntimeClasspath,
		Transitive: true,
		Usage:      UsageRuntime,
		Resolvable: true,
		Visible:    true,
	})
	return c
}

func (c *Configurations) add(cfg *Configuration) {
	c.byName[cfg.Name] = cfg
	c.order = append(c.order, cfg.Name)
}

// Get returns the named configuration.
func (c *Configurations) Get(name ConfigurationName) (*Configuration, error) {
	cfg, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConfiguration, name)
	}
	return cfg, nil
}

// Names returns the configuration names in definition order.
func (c *Configurations) Names() []ConfigurationName {
	return append([]ConfigurationName(nil), c.order...)
}

// Declare adds dependencies to a configuration. Duplicate identities are ignored.
func (c *Configurations) Declare(name ConfigurationName, deps ...Dependency) error {
	cfg, err := c.Get(name)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		dep = dep.Normalize()
		if err := dep.Validate(); err != nil {
			return fmt.Errorf("configuration %s: %w", name, err)
		}
		if containsDependency(cfg.declared, dep) {
			continue
		}
		cfg.declared = append(cfg.declared, dep)
	}
	return nil
}

// SetModuleAware marks every mod configuration as requiring module-aware
// resolution.
func (c *Configurations) SetModuleAware() {
	for _, name := range []ConfigurationName{ConfigTopLevelMods, ConfigSharedModClasspath, ConfigPrivateModClasspath} {
		c.byName[name].Attributes.ModuleAware = true
	}
}

// Validate checks that every extendsFrom reference exists and that the
// extension graph is acyclic.
func (c *Configurations) Validate() error {
	_, err := c.graph()
	return err
}

// graph builds the extension graph with edges parent -> child.
func (c *Configurations) graph() (*dag.Graph, error) {
	g := dag.New()
	for _, name := range c.order {
		g.AddNode(string(name))
		for _, parent := range c.byName[name].ExtendsFrom {
			if _, ok := c.byName[parent]; !ok {
				return nil, fmt.Errorf("configuration %s extends %w: %s", name, ErrUnknownConfiguration, parent)
			}
			g.AddEdge(string(parent), string(name))
		}
	}
	if _, err := g.TopologicalSort(); err != nil {
		return nil, fmt.Errorf("configuration graph: %w", err)
	}
	return g, nil
}

// Dependencies returns the union of the dependencies declared on name and on
// every configuration it extends, directly or not. Inherited dependencies come
// first; each identity appears once.
func (c *Configurations) Dependencies(name ConfigurationName) ([]Dependency, error) {
	if _, err := c.Get(name); err != nil {
		return nil, err
	}
	g, err := c.graph()
	if err != nil {
		return nil, err
	}
	order, err := g.TopologicalSort()
	if err != nil {
		return nil, err
	}

	closure := map[ConfigurationName]bool{}
	var visit func(n ConfigurationName)
	visit = func(n ConfigurationName) {
		if closure[n] {
			return
		}
		closure[n] = true
		for _, parent := range c.byName[n].ExtendsFrom {
			visit(parent)
		}
	}
	visit(name)

	var deps []Dependency
	for _, n := range order {
		if !closure[ConfigurationName(n)] {
			continue
		}
		for _, dep := range c.byName[ConfigurationName(n)].declared {
			if !containsDependency(deps, dep) {
				deps = append(deps, dep)
			}
		}
	}
	return deps, nil
}

// Request builds a resolver request for the named configuration. When roots is
// empty, the configuration's full dependency set is used.
func (c *Configurations) Request(name ConfigurationName, roots ...Dependency) (Request, error) {
	cfg, err := c.Get(name)
	if err != nil {
		return Request{}, err
	}
	if !cfg.Resolvable {
		return Request{}, fmt.Errorf("%w: %s", ErrNotResolvable, name)
	}
	if len(roots) == 0 {
		roots, err = c.Dependencies(name)
		if err != nil {
			return Request{}, err
		}
	}
	return Request{
		Configuration: name,
		Roots:         roots,
		Transitive:    cfg.Transitive,
		Usage:         cfg.Usage,
		Attributes:    cfg.Attributes,
	}, nil
}

func containsDependency(deps []Dependency, dep Dependency) bool {
	for _, d := range deps {
		if d.Key() == dep.Key() {
			return true
		}
	}
	return false
}
