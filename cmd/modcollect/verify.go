// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Brownshome/game-modding/internal/collect"
	"github.com/Brownshome/game-modding/internal/dirsync"
	"github.com/Brownshome/game-modding/internal/issue"
	"github.com/Brownshome/game-modding/pkg/moddecl"
)

// errOutOfDate is returned by verify when the mods directory differs from the lock file.
var errOutOfDate = errors.New("mods directory does not match the lock file")

func newVerifyCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the mods directory against the lock file",
		Long: `Check the mods directory against the lock file written by the last
collection. Nothing is resolved and nothing is written; the command fails
when a file is missing, was modified, or was not placed by modcollect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				lockPath := s.decl.LockFilePath()
				lock, err := moddecl.LoadLockFile(lockPath)
				if err != nil {
					return issue.NewErrorContext().
						WithOperation("read lock file").
						WithResource(lockPath).
						WithIssue(issue.LockMismatchId).
						WithSuggestion("Run 'modcollect collect' to create it").
						Wrap(err).
						BuildError()
				}

				v, err := collect.Verify(ctx, s.project.Syncer(), lock)
				if err != nil {
					return describe("verify mods directory", lock.Output, err)
				}
				printVerification(app.stdout, lock.Output, v)
				if !v.OK() {
					return issue.NewErrorContext().
						WithOperation("verify mods directory").
						WithResource(lock.Output).
						WithIssue(issue.LockMismatchId).
						WithSuggestion("Run 'modcollect collect' to restore it").
						Wrap(errOutOfDate).
						BuildError()
				}
				return nil
			})
		},
	}
}

func printVerification(w io.Writer, root string, v *dirsync.Verification) {
	if v.OK() {
		fmt.Fprintf(w, "%s %s matches the lock file (%d files)\n", SuccessStyle.Render("✓"), CmdStyle.Render(root), v.Verified)
		return
	}
	fmt.Fprintf(w, "%s %s differs from the lock file\n", ErrorStyle.Render("✗"), CmdStyle.Render(root))
	printPaths(w, ErrorStyle.Render("missing "), v.Missing)
	printPaths(w, WarningStyle.Render("modified"), v.Modified)
	printPaths(w, WarningStyle.Render("extra   "), v.Extra)
}
