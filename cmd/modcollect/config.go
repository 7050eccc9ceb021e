// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Brownshome/game-modding/internal/config"
)

// newConfigCommand creates the `modcollect config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage modcollect configuration",
		Long: `Manage modcollect configuration.

Configuration is stored in $XDG_CONFIG_HOME/modcollect/config.cue
(~/.config/modcollect/config.cue on Linux). Every value can be overridden
with a MODCOLLECT_* environment variable, for example
MODCOLLECT_SYNC_LINK_MODE=hardlink.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, source, err := app.Config.LoadWithSource(cmd.Context(), config.LoadOptions{ConfigFilePath: app.flags.configPath})
			if err != nil {
				renderIssue(app.stderr, err, app.flags.verbose)
				return err
			}
			showConfig(app.stdout, cfg, source)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(*cobra.Command, []string) error {
			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the default configuration file",
		RunE: func(*cobra.Command, []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(app.stdout, "Configuration already exists at %s\n", CmdStyle.Render(path))
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			content, err := config.GenerateCUE(cfg)
			if err != nil {
				return err
			}
			_, err = app.stdout.Write(content)
			return err
		},
	})

	return cfgCmd
}

func showConfig(w io.Writer, cfg *config.Config, source string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if source != "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), source)
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("declaration_file"), valueStyle.Render(string(cfg.DeclarationFile)))
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("repositories"))
	if len(cfg.Repositories) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, repo := range cfg.Repositories {
		fmt.Fprintf(w, "  - %s\n", valueStyle.Render(string(repo)))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("sync"))
	fmt.Fprintf(w, "  parallelism: %s\n", valueStyle.Render(fmt.Sprint(cfg.Sync.Parallelism)))
	fmt.Fprintf(w, "  link_mode: %s\n", valueStyle.Render(string(cfg.Sync.LinkMode)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("log"))
	fmt.Fprintf(w, "  level: %s\n", valueStyle.Render(string(cfg.Log.Level)))
	fmt.Fprintf(w, "  format: %s\n", valueStyle.Render(string(cfg.Log.Format)))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
}
