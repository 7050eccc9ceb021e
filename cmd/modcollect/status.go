// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newStatusCommand(app *App) *cobra.Command {
	var exitCode bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the changes a collection would make",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				report, err := s.project.Status(ctx)
				if err != nil {
					return describe("plan collection", s.decl.Path, err)
				}
				printReport(app.stdout, report)
				if exitCode && report.Sync.Changed() {
					return &ExitError{Code: 1}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 1 when the mods directory is out of date")
	return cmd
}
