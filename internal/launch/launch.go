// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ModsDirEnv names the variable holding the collected mods directory.
const ModsDirEnv = "MODS_DIR"

var (
	// ErrEmptyCommand is returned when no command is given.
	ErrEmptyCommand = errors.New("application command is empty")
	// ErrNotSimpleCommand is returned for command lines that are not one
	// simple command: lists, pipelines, compound commands or bare assignments.
	ErrNotSimpleCommand = errors.New("application command must be a single simple command")
)

type (
	// Invocation describes one launch.
	Invocation struct {
		// Command is a shell command line.
		Command string
		// Args are passed to the command as literal words.
		Args []string
		// Dir is the working directory; empty means the current directory.
		Dir string
		// Env overrides variables of the inherited environment.
		Env map[string]string
		// ModsDir is exported as MODS_DIR.
		ModsDir string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Launcher runs application commands.
	Launcher struct {
		environ func() []string
		logger  *log.Logger
	}

	// Option configures a Launcher.
	Option func(*Launcher)
)

// WithEnviron replaces the inherited process environment.
func WithEnviron(environ func() []string) Option {
	return func(l *Launcher) { l.environ = environ }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(l *Launcher) { l.logger = logger }
}

// New creates a Launcher inheriting the process environment.
func New(opts ...Option) *Launcher {
	l := &Launcher{environ: os.Environ}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.New(io.Discard)
	}
	return l
}

// Validate checks that command is a single simple command that arguments
// can be appended to.
func Validate(command string) error {
	_, err := parse(command)
	return err
}

// Run executes the command and waits for it. A non-zero exit status is
// returned as the code with a nil error; errors are reserved for commands
// that could not be started.
func (l *Launcher) Run(ctx context.Context, inv Invocation) (int, error) {
	prog, err := parse(inv.Command)
	if err != nil {
		return 1, err
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(l.environment(inv)...)),
		interp.StdIO(inv.Stdin, inv.Stdout, inv.Stderr),
	}
	if inv.Dir != "" {
		opts = append(opts, interp.Dir(inv.Dir))
	}
	// "--" ends option parsing so arguments like "-v" stay positional.
	opts = append(opts, interp.Params(append([]string{"--"}, inv.Args...)...))

	runner, err := interp.New(opts...)
	if err != nil {
		return 1, fmt.Errorf("failed to create interpreter: %w", err)
	}

	l.logger.Info("launching application", "command", inv.Command, "args", inv.Args, "dir", inv.Dir)
	err = runner.Run(ctx, prog)
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			l.logger.Debug("application exited", "status", int(exitStatus))
			return int(exitStatus), nil
		}
		return 1, fmt.Errorf("application failed: %w", err)
	}
	return 0, nil
}

// environment returns the inherited variables, then MODS_DIR, then the
// declared variables in name order. Later entries win.
func (l *Launcher) environment(inv Invocation) []string {
	env := slices.Clone(l.environ())
	if inv.ModsDir != "" {
		env = append(env, ModsDirEnv+"="+inv.ModsDir)
	}
	for _, name := range slices.Sorted(maps.Keys(inv.Env)) {
		env = append(env, name+"="+inv.Env[name])
	}
	return env
}

// parse parses command and appends "$@" to its words, so positional
// parameters reach the command unchanged.
func parse(command string) (*syntax.File, error) {
	if strings.TrimSpace(command) == "" {
		return nil, ErrEmptyCommand
	}
	prog, err := syntax.NewParser().Parse(strings.NewReader(command), "command")
	if err != nil {
		return nil, fmt.Errorf("command syntax error: %w", err)
	}
	if len(prog.Stmts) != 1 {
		return nil, fmt.Errorf("%w: found %d statements", ErrNotSimpleCommand, len(prog.Stmts))
	}
	stmt := prog.Stmts[0]
	call, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok || len(call.Args) == 0 || stmt.Background || stmt.Coprocess || stmt.Negated {
		return nil, fmt.Errorf("%w: %q", ErrNotSimpleCommand, strings.TrimSpace(command))
	}
	call.Args = append(call.Args, positionalParams())
	return prog, nil
}

// positionalParams is the word "$@".
func positionalParams() *syntax.Word {
	return &syntax.Word{Parts: []syntax.WordPart{
		&syntax.DblQuoted{Parts: []syntax.WordPart{
			&syntax.ParamExp{Short: true, Param: &syntax.Lit{Value: "@"}},
		}},
	}}
}
