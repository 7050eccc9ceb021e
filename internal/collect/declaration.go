// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/Brownshome/game-modding/internal/dirsync"
	"github.com/Brownshome/game-modding/pkg/moddecl"
	"github.com/Brownshome/game-modding/pkg/modrepo"
)

// ErrUnsafeOutput is returned when the output directory would contain the
// declaration or one of its inputs. The synchronizer deletes everything under
// the output root it did not place there.
var ErrUnsafeOutput = errors.New("output directory must not contain the declaration or its inputs")

// Settings are the inputs of FromDeclaration that do not come from the
// declaration file.
type Settings struct {
	// Output overrides the declared output directory.
	Output string
	// Repositories are searched after the declared repositories.
	Repositories []string
	// Parallelism bounds concurrent file copies; zero uses the default.
	Parallelism int
	// LinkMode selects copying or hard-linking; empty means copy.
	LinkMode dirsync.LinkMode
	// Fs is the filesystem for modules and the output; nil means the OS filesystem.
	Fs       afero.Fs
	Logger   *log.Logger
	Observer Observer
}

// FromDeclaration builds a Project from a parsed declaration: a repository
// resolver over the declared and configured repositories, a synchronizer, the
// lock file next to the declaration, and every declaration applied.
func FromDeclaration(decl *moddecl.Declaration, s Settings) (*Project, error) {
	if s.Logger == nil {
		s.Logger = log.New(io.Discard)
	}
	if s.Fs == nil {
		s.Fs = afero.NewOsFs()
	}

	output := decl.OutputDir()
	if s.Output != "" {
		abs, err := filepath.Abs(s.Output)
		if err != nil {
			return nil, fmt.Errorf("resolve output directory: %w", err)
		}
		output = abs
	}
	repos := append(decl.RepositoryDirs(), s.Repositories...)
	if err := checkOutput(output, decl, repos); err != nil {
		return nil, err
	}

	resolverOpts := []modrepo.Option{modrepo.WithFs(s.Fs), modrepo.WithLogger(s.Logger)}
	for name, dir := range decl.LocalProjects() {
		resolverOpts = append(resolverOpts, modrepo.WithLocalProject(name, dir))
	}
	resolver, err := modrepo.New(repos, resolverOpts...)
	if err != nil {
		return nil, err
	}

	syncOpts := []dirsync.Option{dirsync.WithLogger(s.Logger)}
	if s.Parallelism > 0 {
		syncOpts = append(syncOpts, dirsync.WithParallelism(s.Parallelism))
	}
	if s.LinkMode != "" {
		syncOpts = append(syncOpts, dirsync.WithLinkMode(s.LinkMode))
	}
	syncer, err := dirsync.New(s.Fs, syncOpts...)
	if err != nil {
		return nil, err
	}

	observer := s.Observer
	if observer == nil {
		observer = NewLogObserver(s.Logger)
	}
	p, err := New(resolver, output,
		WithSyncer(syncer),
		WithLockFile(decl.LockFilePath()),
		WithObserver(observer),
		WithLogger(s.Logger),
	)
	if err != nil {
		return nil, err
	}

	if err := p.Declare(decl.Dependencies()...); err != nil {
		return nil, err
	}
	if err := p.DeclareHost(decl.HostDependencies()...); err != nil {
		return nil, err
	}
	if err := p.DeclareHostOutput(decl.HostOutputs()...); err != nil {
		return nil, err
	}
	if decl.ModuleAware {
		if err := p.EnableModuleAware(); err != nil {
			return nil, err
		}
	}
	if app := decl.Application; app != nil {
		err := p.SetApplication(Application{
			Command: app.Command,
			Args:    app.Args,
			Env:     app.Env,
			Dir:     decl.Dir,
		})
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// checkOutput refuses an output directory that holds the declaration, a
// repository, a local project or a host build output.
func checkOutput(output string, decl *moddecl.Declaration, repos []string) error {
	inputs := []string{decl.Dir}
	for _, repo := range repos {
		abs, err := filepath.Abs(repo)
		if err != nil {
			return fmt.Errorf("resolve repository %s: %w", repo, err)
		}
		inputs = append(inputs, abs)
	}
	projects := decl.LocalProjects()
	for _, name := range slices.Sorted(maps.Keys(projects)) {
		inputs = append(inputs, projects[name])
	}
	inputs = append(inputs, decl.HostOutputs()...)

	for _, in := range inputs {
		if contains(output, in) {
			return fmt.Errorf("%w: %s contains %s", ErrUnsafeOutput, output, in)
		}
	}
	return nil
}

// contains reports whether dir is path or one of its ancestors.
func contains(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
