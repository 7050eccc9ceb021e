// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modcollect",
		Short: "Collect game mods and their libraries into a mods directory",
		Long: TitleStyle.Render("modcollect") + SubtitleStyle.Render(" - collect mods and their libraries") + `

modcollect reads a mods.cue declaration, resolves every declared mod against
local module repositories and lays the result out for a module-aware loader:
libraries shared between mods at the root of the mods directory, and each
mod with its private dependencies in its own folder.

` + SubtitleStyle.Render("Examples:") + `
  modcollect init           Create a mods.cue in the current directory
  modcollect collect        Synchronize the mods directory
  modcollect plan           Show the layout without writing anything
  modcollect run            Collect, then launch the application`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/modcollect/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&app.flags.declaration, "file", "f", "", "declaration file (default is mods.cue)")
	rootCmd.PersistentFlags().StringVarP(&app.flags.output, "output", "o", "", "override the declared output directory")

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(
		newCollectCommand(app),
		newStatusCommand(app),
		newPlanCommand(app),
		newDepsCommand(app),
		newVerifyCommand(app),
		newRunCommand(app),
		newInitCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
