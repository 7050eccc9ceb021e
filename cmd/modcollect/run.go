// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Brownshome/game-modding/internal/collect"
	"github.com/Brownshome/game-modding/internal/issue"
	"github.com/Brownshome/game-modding/internal/launch"
)

// errNoApplication is returned by run when the declaration has no application block.
var errNoApplication = errors.New("the declaration does not describe an application")

func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run [-- args...]",
		Short: "Collect the mods, then launch the application",
		Long: `Collect the mods, then launch the application declared in mods.cue.

The application command runs in the directory of the declaration with
MODS_DIR set to the mods directory. Arguments after "--" are appended to
the declared arguments. The exit status of the application becomes the
exit status of modcollect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				application, ok := s.project.Application()
				if !ok {
					return issue.NewErrorContext().
						WithOperation("launch application").
						WithResource(s.decl.Path).
						WithIssue(issue.LaunchFailedId).
						WithSuggestion("Add an 'application' block with a 'command' to the declaration").
						Wrap(errNoApplication).
						BuildError()
				}
				if err := launch.Validate(application.Command); err != nil {
					return issue.NewErrorContext().
						WithOperation("launch application").
						WithResource(s.decl.Path).
						WithIssue(issue.LaunchFailedId).
						WithSuggestion("Use one command such as 'java -jar game.jar'; move lists and pipelines into a script").
						Wrap(err).
						BuildError()
				}

				tasks, err := collect.Tasks(s.project, app.launchFunc(args), func(r *collect.Report) {
					printReport(app.stderr, r)
				})
				if err != nil {
					return err
				}

				err = tasks.Execute(ctx, collect.TaskRun)
				var exitStatus *collect.ExitStatusError
				if errors.As(err, &exitStatus) {
					return &ExitError{Code: exitStatus.Code}
				}
				var taskErr *collect.TaskError
				if errors.As(err, &taskErr) && taskErr.Task == collect.TaskRun {
					return issue.NewErrorContext().
						WithOperation("launch application").
						WithResource(s.decl.Path).
						WithIssue(issue.LaunchFailedId).
						Wrap(taskErr.Err).
						BuildError()
				}
				if err != nil {
					return describe("collect mods", s.project.Output(), err)
				}
				return nil
			})
		},
	}
}

// launchFunc adapts the launcher to the run task, appending extra arguments.
func (a *App) launchFunc(extra []string) collect.LaunchFunc {
	return func(ctx context.Context, application collect.Application, modsDir string) (int, error) {
		return a.Launcher.Run(ctx, launch.Invocation{
			Command: application.Command,
			Args:    slices.Concat(application.Args, extra),
			Dir:     application.Dir,
			Env:     application.Env,
			ModsDir: modsDir,
			Stdin:   a.stdin,
			Stdout:  a.stdout,
			Stderr:  a.stderr,
		})
	}
}
