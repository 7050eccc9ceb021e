// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/Brownshome/game-modding/internal/dirsync"
	"github.com/Brownshome/game-modding/pkg/moddep"
)

var (
	// ErrDeclarationsFrozen is returned by declaration methods once a pass has started.
	ErrDeclarationsFrozen = errors.New("declarations are frozen once resolution has started")

	// ErrNoResolver is returned by New when no resolver is given.
	ErrNoResolver = errors.New("a resolver is required")
)

type (
	// Application describes how to launch the host application after collection.
	Application struct {
		// Command is a shell command line.
		Command string
		// Args are appended to the command as literal words.
		Args []string
		// Env holds extra environment variables.
		Env map[string]string
		// Dir is the working directory; empty means the current directory.
		Dir string
	}

	// Project holds the declarations of one build and runs collection passes.
	// Its methods are safe for concurrent use; passes are serialized.
	Project struct {
		resolver moddep.Resolver
		output   string

		fs       afero.Fs
		syncer   *dirsync.Syncer
		lockFile string
		observer Observer
		logger   *log.Logger

		mu          sync.Mutex
		phase       Phase
		configs     *moddep.Configurations
		hostOutputs []string
		app         *Application

		// passMu serializes passes; the output root is owned by one pass at a time.
		passMu sync.Mutex
	}

	// Option configures a Project.
	Option func(*Project)
)

// WithFs sets the filesystem the output directory lives on. It is ignored
// when WithSyncer is given. Default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(p *Project) { p.fs = fs }
}

// WithSyncer sets the synchronizer used to materialize the layout.
func WithSyncer(s *dirsync.Syncer) Option {
	return func(p *Project) { p.syncer = s }
}

// WithLockFile records every successful collection in the lock file at path.
func WithLockFile(path string) Option {
	return func(p *Project) { p.lockFile = path }
}

// WithObserver sets the observer receiving pass events.
func WithObserver(o Observer) Option {
	return func(p *Project) { p.observer = o }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Project) { p.logger = logger }
}

// New creates a Project collecting into the output directory.
func New(resolver moddep.Resolver, output string, opts ...Option) (*Project, error) {
	if resolver == nil {
		return nil, ErrNoResolver
	}
	if output == "" {
		return nil, errors.New("an output directory is required")
	}
	abs, err := filepath.Abs(output)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}

	p := &Project{
		resolver: resolver,
		output:   abs,
		configs:  moddep.NewModConfigurations(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	if p.observer == nil {
		p.observer = NopObserver{}
	}
	if p.syncer == nil {
		if p.fs == nil {
			p.fs = afero.NewOsFs()
		}
		p.syncer, err = dirsync.New(p.fs, dirsync.WithLogger(p.logger))
		if err != nil {
			return nil, err
		}
	}
	if err := p.configs.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Output returns the absolute output directory.
func (p *Project) Output() string { return p.output }

// LockFile returns the lock file path, empty when none is written.
func (p *Project) LockFile() string { return p.lockFile }

// Syncer returns the synchronizer materializing the layout.
func (p *Project) Syncer() *dirsync.Syncer { return p.syncer }

// Phase returns the current lifecycle phase.
func (p *Project) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// Declare adds mods to collect.
func (p *Project) Declare(deps ...moddep.Dependency) error {
	return p.declare(moddep.ConfigMod, deps)
}

// DeclareHost adds dependencies of the host application. Their runtime
// closure is never copied into the output directory.
func (p *Project) DeclareHost(deps ...moddep.Dependency) error {
	return p.declare(moddep.ConfigRuntimeClasspath, deps)
}

func (p *Project) declare(name moddep.ConfigurationName, deps []moddep.Dependency) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase.Frozen() {
		return ErrDeclarationsFrozen
	}
	return p.configs.Declare(name, deps...)
}

// DeclareHostOutput adds files produced by the host's own build.
func (p *Project) DeclareHostOutput(files ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase.Frozen() {
		return ErrDeclarationsFrozen
	}
	for _, f := range files {
		if f == "" {
			return errors.New("host output path must not be empty")
		}
		p.hostOutputs = append(p.hostOutputs, f)
	}
	return nil
}

// SetApplication declares the host application. Its presence adds the "run"
// task to the task graph.
func (p *Project) SetApplication(app Application) error {
	if app.Command == "" {
		return errors.New("application command must not be empty")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase.Frozen() {
		return ErrDeclarationsFrozen
	}
	app.Args = append([]string(nil), app.Args...)
	app.Env = maps.Clone(app.Env)
	p.app = &app
	return nil
}

// Application returns the declared application, if any.
func (p *Project) Application() (Application, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.app == nil {
		return Application{}, false
	}
	return *p.app, true
}

// EnableModuleAware requires module-aware resolution for every mod configuration.
func (p *Project) EnableModuleAware() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase.Frozen() {
		return ErrDeclarationsFrozen
	}
	p.configs.SetModuleAware()
	return nil
}

// Mods returns the declared mods in declaration order.
func (p *Project) Mods() []moddep.Dependency {
	p.mu.Lock()
	defer p.mu.Unlock()
	cfg, _ := p.configs.Get(moddep.ConfigMod)
	return cfg.Declared()
}

// end records the outcome of a pass.
func (p *Project) end(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.phase = PhaseFailed
		return
	}
	p.phase = PhaseResolved
}
