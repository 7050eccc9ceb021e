// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Brownshome/game-modding/internal/issue"
	"github.com/Brownshome/game-modding/pkg/moddecl"
)

func newInitCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Create a mods.cue declaration in the current directory",
		Long: `Create a starter mods.cue declaration with commented examples of every
field: mods from repositories, local mod projects, host dependencies and
the application to launch.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := moddecl.DeclarationFileName
			if app.flags.declaration != "" {
				path = app.flags.declaration
			}
			if len(args) == 1 {
				path = args[0]
			}

			if err := moddecl.WriteTemplate(path, force); err != nil {
				ctx := issue.NewErrorContext().
					WithOperation("create declaration").
					WithResource(path).
					Wrap(err)
				if errors.Is(err, moddecl.ErrDeclarationExists) {
					ctx = ctx.WithSuggestion("Use --force to overwrite it")
				}
				return ctx.BuildError()
			}

			absPath, _ := filepath.Abs(path)
			fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), absPath)
			fmt.Fprintln(app.stdout)
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("Next steps:"))
			fmt.Fprintln(app.stdout, "  1. Declare your mods and repositories")
			fmt.Fprintln(app.stdout, "  2. Run 'modcollect plan' to preview the layout")
			fmt.Fprintln(app.stdout, "  3. Run 'modcollect collect' to fill the mods directory")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing declaration")
	return cmd
}
