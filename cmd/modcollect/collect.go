// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Brownshome/game-modding/internal/collect"
	"github.com/Brownshome/game-modding/internal/watch"
)

func newCollectCommand(app *App) *cobra.Command {
	var (
		dryRun   bool
		watchFor bool
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Synchronize the mods directory with the declaration",
		Long: `Resolve every declared mod and make the mods directory match the result.

Files are only written when their content changed, and files the
declaration no longer produces are removed. The outcome is recorded in
mods.lock.cue next to the declaration.

With --watch the collection is repeated whenever a file in the
declaration's directory changes, until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				if dryRun {
					report, err := s.project.Status(ctx)
					if err != nil {
						return describe("plan collection", s.decl.Path, err)
					}
					printReport(app.stdout, report)
					return nil
				}

				if err := app.collectOnce(ctx, s); err != nil {
					return err
				}
				if watchFor {
					return app.watchAndCollect(ctx, s, debounce)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would change without writing")
	cmd.Flags().BoolVarP(&watchFor, "watch", "w", false, "collect again whenever the declaration's directory changes")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before collecting after a change")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "watch")
	return cmd
}

// collectOnce runs the collect task of s and prints its report.
func (a *App) collectOnce(ctx context.Context, s *session) error {
	var report *collect.Report
	tasks, err := collect.Tasks(s.project, nil, func(r *collect.Report) { report = r })
	if err != nil {
		return err
	}
	if err := tasks.Execute(ctx, collect.TaskCollect); err != nil {
		return describe("collect mods", s.project.Output(), err)
	}
	printReport(a.stdout, report)
	return nil
}

// printReport prints the changes of a pass.
func printReport(w io.Writer, r *collect.Report) {
	verb := "Collected"
	if r.DryRun {
		verb = "Would collect"
	}
	fmt.Fprintf(w, "%s %s %d mods into %s\n",
		SuccessStyle.Render("✓"), verb, len(r.Layout.Mods()), CmdStyle.Render(r.Output))

	printPaths(w, SuccessStyle.Render("+"), r.Sync.Added)
	printPaths(w, WarningStyle.Render("~"), r.Sync.Updated)
	printPaths(w, ErrorStyle.Render("-"), r.Sync.Removed)

	if !r.Sync.Changed() {
		fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("  up to date (%d files)", len(r.Sync.Unchanged))))
		return
	}
	fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("  %d added, %d updated, %d removed, %d unchanged",
		len(r.Sync.Added), len(r.Sync.Updated), len(r.Sync.Removed), len(r.Sync.Unchanged))))
}

func printPaths(w io.Writer, mark string, paths []string) {
	for _, p := range paths {
		fmt.Fprintf(w, "  %s %s\n", mark, p)
	}
}
