// SPDX-License-Identifier: MPL-2.0

package modrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/Brownshome/game-modding/pkg/moddep"
)

// DefaultCacheSize is the default number of parsed descriptors kept in memory.
const DefaultCacheSize = 512

type (
	// Resolver resolves dependencies against an ordered list of local
	// repositories and registered local projects. It implements moddep.Resolver
	// and is safe for concurrent use.
	Resolver struct {
		fs           afero.Fs
		repositories []string
		local        map[moddep.ModuleName]string
		cache        *lru.Cache[string, *Descriptor]
		logger       *log.Logger
	}

	// Option configures a Resolver.
	Option func(*resolverOptions)

	resolverOptions struct {
		fs        afero.Fs
		local     map[moddep.ModuleName]string
		cacheSize int
		logger    *log.Logger
	}

	// node is one module reached during a walk of the dependency graph.
	node struct {
		dep  moddep.Dependency
		desc *Descriptor
	}
)

// WithFs sets the filesystem descriptors and artifacts are read from.
// Default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(o *resolverOptions) { o.fs = fs }
}

// WithLocalProject registers the project directory of a local module. The
// module resolves with the unspecified version.
func WithLocalProject(name moddep.ModuleName, dir string) Option {
	return func(o *resolverOptions) { o.local[name] = dir }
}

// WithCacheSize sets the number of parsed descriptors kept in memory.
func WithCacheSize(size int) Option {
	return func(o *resolverOptions) { o.cacheSize = size }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(o *resolverOptions) { o.logger = logger }
}

// New creates a Resolver searching repositories in order.
func New(repositories []string, opts ...Option) (*Resolver, error) {
	o := resolverOptions{
		fs:        afero.NewOsFs(),
		local:     make(map[moddep.ModuleName]string),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	cache, err := lru.New[string, *Descriptor](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create descriptor cache: %w", err)
	}

	repos := make([]string, 0, len(repositories))
	for _, r := range repositories {
		if r != "" {
			repos = append(repos, filepath.Clean(r))
		}
	}

	return &Resolver{
		fs:           o.fs,
		repositories: repos,
		local:        o.local,
		cache:        cache,
		logger:       o.logger,
	}, nil
}

// Repositories returns the repository roots in search order.
func (r *Resolver) Repositories() []string {
	return append([]string(nil), r.repositories...)
}

// Resolve implements moddep.Resolver.
//
// Non-transitive requests return only the artifacts of the roots. Transitive
// requests walk the graph in the request's usage view, selecting the highest
// version of every module reached, and return the artifacts of every selected
// module in breadth-first order from the roots.
func (r *Resolver) Resolve(ctx context.Context, req moddep.Request) ([]moddep.ResolvedArtifact, error) {
	roots := make([]moddep.Dependency, 0, len(req.Roots))
	for _, root := range req.Roots {
		roots = append(roots, root.Normalize())
	}

	var (
		nodes []node
		err   error
	)
	if req.Transitive {
		nodes, err = r.walk(ctx, req, roots)
	} else {
		nodes, err = r.rootsOnly(ctx, req, roots)
	}
	if err != nil {
		return nil, err
	}

	var artifacts []moddep.ResolvedArtifact
	for _, n := range nodes {
		resolved, err := r.artifactsOf(req, n)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, resolved...)
	}

	r.logger.Debug("resolved configuration",
		"configuration", req.Configuration,
		"roots", len(roots),
		"modules", len(nodes),
		"artifacts", len(artifacts))
	return artifacts, nil
}

func (r *Resolver) rootsOnly(ctx context.Context, req moddep.Request, roots []moddep.Dependency) ([]node, error) {
	var nodes []node
	seen := make(map[string]bool, len(roots))
	for _, dep := range roots {
		if seen[dep.Key()] {
			continue
		}
		seen[dep.Key()] = true

		desc, err := r.Descriptor(ctx, dep)
		if err != nil {
			return nil, r.resolutionError(req, dep, err)
		}
		nodes = append(nodes, node{dep: dep, desc: desc})
	}
	return nodes, nil
}

// walk selects one version per module name and returns the selected modules
// reachable from the roots. Selection only ever moves to a higher version, so
// the loop terminates.
func (r *Resolver) walk(ctx context.Context, req moddep.Request, roots []moddep.Dependency) ([]node, error) {
	selected := make(map[moddep.ModuleName]moddep.Version)
	for _, root := range roots {
		if current, ok := selected[root.Name]; !ok || CompareVersions(root.Version, current) > 0 {
			selected[root.Name] = root.Version
		}
	}

	for pass := 1; ; pass++ {
		nodes, changed, err := r.walkOnce(ctx, req, roots, selected)
		if err != nil {
			return nil, err
		}
		if !changed {
			return nodes, nil
		}
		r.logger.Debug("version selection changed, walking again", "configuration", req.Configuration, "pass", pass)
	}
}

func (r *Resolver) walkOnce(
	ctx context.Context,
	req moddep.Request,
	roots []moddep.Dependency,
	selected map[moddep.ModuleName]moddep.Version,
) ([]node, bool, error) {
	var (
		nodes   []node
		changed bool
		queue   []moddep.ModuleName
		queued  = make(map[moddep.ModuleName]bool)
	)
	for _, root := range roots {
		if !queued[root.Name] {
			queued[root.Name] = true
			queue = append(queue, root.Name)
		}
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		name := queue[0]
		queue = queue[1:]
		dep := moddep.Dependency{Name: name, Version: selected[name]}

		desc, err := r.Descriptor(ctx, dep)
		if err != nil {
			return nil, false, r.resolutionError(req, dep, err)
		}
		nodes = append(nodes, node{dep: dep, desc: desc})

		for _, edge := range desc.Dependencies {
			if !edge.Scope.Follows(req.Usage) {
				continue
			}
			target := edge.Dependency()
			if current, ok := selected[target.Name]; !ok || CompareVersions(target.Version, current) > 0 {
				if ok {
					r.logger.Debug("version conflict",
						"module", target.Name, "selected", target.Version, "replaced", current, "by", dep)
				}
				selected[target.Name] = target.Version
				changed = changed || ok
			}
			if !queued[target.Name] {
				queued[target.Name] = true
				queue = append(queue, target.Name)
			}
		}
	}
	return nodes, changed, nil
}

func (r *Resolver) artifactsOf(req moddep.Request, n node) ([]moddep.ResolvedArtifact, error) {
	artifacts := make([]moddep.ResolvedArtifact, 0, len(n.desc.Artifacts))
	for _, spec := range n.desc.Artifacts {
		path := n.desc.ArtifactPath(spec)
		info, err := r.fs.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, r.resolutionError(req, n.dep, fmt.Errorf("%w: %s", moddep.ErrArtifactMissing, path))
			}
			return nil, r.resolutionError(req, n.dep, err)
		}
		if info.IsDir() {
			return nil, r.resolutionError(req, n.dep, fmt.Errorf("%w: %s is a directory", moddep.ErrArtifactMissing, path))
		}
		if req.Attributes.ModuleAware && spec.ModuleName == "" {
			return nil, r.resolutionError(req, n.dep,
				fmt.Errorf("%w: %s declares no module name", moddep.ErrAttributeMismatch, spec.File))
		}

		artifacts = append(artifacts, moddep.ResolvedArtifact{
			File:       moddep.CanonicalPath(path),
			Dependency: n.dep,
			ModuleName: spec.ModuleName,
		})
	}
	return artifacts, nil
}

// Descriptor returns the parsed descriptor of dep. Local projects are looked
// up by name; published modules are searched in each repository in order.
func (r *Resolver) Descriptor(ctx context.Context, dep moddep.Dependency) (*Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dep = dep.Normalize()

	for _, dir := range r.candidateDirs(dep) {
		path := filepath.Join(dir, DescriptorFileName)
		if desc, ok := r.cache.Get(path); ok {
			return desc, nil
		}

		data, err := afero.ReadFile(r.fs, path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read descriptor: %w", err)
		}

		desc, err := ParseDescriptor(data, path, dir)
		if err != nil {
			return nil, err
		}
		if desc.Name != dep.Name {
			return nil, fmt.Errorf("%w: %s declares module %s", moddep.ErrInvalidDescriptor, path, desc.Name)
		}
		if !dep.Version.IsUnspecified() && desc.Version != "" && desc.Version != dep.Version {
			return nil, fmt.Errorf("%w: %s declares version %s", moddep.ErrInvalidDescriptor, path, desc.Version)
		}

		r.cache.Add(path, desc)
		return desc, nil
	}
	return nil, moddep.ErrModuleNotFound
}

func (r *Resolver) candidateDirs(dep moddep.Dependency) []string {
	if dep.Version.IsUnspecified() {
		if dir, ok := r.local[dep.Name]; ok {
			return []string{dir}
		}
		return nil
	}
	dirs := make([]string, 0, len(r.repositories))
	for _, repo := range r.repositories {
		dirs = append(dirs, filepath.Join(repo, string(dep.Name), string(dep.Version)))
	}
	return dirs
}

func (r *Resolver) resolutionError(req moddep.Request, dep moddep.Dependency, err error) error {
	var resErr *moddep.ResolutionError
	if errors.As(err, &resErr) {
		return err
	}
	return &moddep.ResolutionError{Configuration: req.Configuration, Dependency: dep, Err: err}
}
