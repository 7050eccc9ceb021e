// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/Brownshome/game-modding/internal/collect"
	"github.com/Brownshome/game-modding/internal/config"
	"github.com/Brownshome/game-modding/internal/dirsync"
	"github.com/Brownshome/game-modding/internal/launch"
	"github.com/Brownshome/game-modding/pkg/moddecl"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives an App and delegates through it.
	App struct {
		Config   config.Provider
		Launcher *launch.Launcher
		stdin    io.Reader
		stdout   io.Writer
		stderr   io.Writer

		flags globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config   config.Provider
		Launcher *launch.Launcher
		Stdin    io.Reader
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// globalFlags are the persistent flags of the root command.
	globalFlags struct {
		verbose     bool
		configPath  string
		declaration string
		output      string
	}

	// session is everything a declaration-driven command needs.
	session struct {
		cfg     *config.Config
		verbose bool
		logger  *log.Logger
		decl    *moddecl.Declaration
		project *collect.Project
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Launcher == nil {
		deps.Launcher = launch.New()
	}
	return &App{
		Config:   deps.Config,
		Launcher: deps.Launcher,
		stdin:    deps.Stdin,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

// loadConfig loads the configuration honoring --config.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
}

// openSession loads configuration and the declaration and builds the project.
func (a *App) openSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, verbose: a.flags.verbose || cfg.UI.Verbose}
	s.logger = newLogger(a.stderr, cfg.Log, s.verbose)

	path := a.flags.declaration
	if path == "" {
		path = string(cfg.DeclarationFile)
	}
	s.decl, err = moddecl.Load(path)
	if err != nil {
		return s, declarationError(path, err)
	}
	s.logger.Debug("loaded declaration", "path", s.decl.Path, "mods", len(s.decl.Mods))

	s.project, err = collect.FromDeclaration(s.decl, collect.Settings{
		Output:       a.flags.output,
		Repositories: cfg.RepositoryDirs(),
		Parallelism:  cfg.Sync.Parallelism,
		LinkMode:     dirsync.LinkMode(cfg.Sync.LinkMode),
		Logger:       s.logger,
	})
	if err != nil {
		return s, describe("prepare collection", s.decl.Path, err)
	}
	return s, nil
}

// withSession opens a session and runs fn, rendering failures.
func (a *App) withSession(ctx context.Context, fn func(ctx context.Context, s *session) error) error {
	s, err := a.openSession(ctx)
	if err == nil {
		err = fn(ctx, s)
	}
	if err != nil {
		verbose := a.flags.verbose
		if s != nil {
			verbose = s.verbose
		}
		renderIssue(a.stderr, err, verbose)
	}
	return err
}
