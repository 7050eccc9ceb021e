// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/Brownshome/game-modding/internal/collect"
	"github.com/Brownshome/game-modding/pkg/moddep"
)

// listedConfigurations are the configurations printed by deps, in order.
var listedConfigurations = []moddep.ConfigurationName{
	moddep.ConfigTopLevelMods,
	moddep.ConfigSharedModClasspath,
	moddep.ConfigPrivateModClasspath,
	moddep.ConfigRuntimeClasspath,
}

func newDepsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "deps [configuration]",
		Short: "Show the artifacts resolved for each configuration",
		Long: `Show the artifacts resolved for each configuration.

Configurations:
  topLevelMods          the declared mods, without dependencies
  sharedModClasspath    every mod with its API dependencies
  privateModClasspath   each mod with its full runtime closure
  runtimeClasspath      what the host application already provides`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: configurationNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := listedConfigurations
			if len(args) == 1 {
				name := moddep.ConfigurationName(args[0])
				if !slices.Contains(listedConfigurations, name) {
					return fmt.Errorf("%w: %s", moddep.ErrUnknownConfiguration, name)
				}
				names = []moddep.ConfigurationName{name}
			}
			return app.withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				c, err := s.project.Plan(ctx)
				if err != nil {
					return describe("resolve dependencies", s.decl.Path, err)
				}
				for _, name := range names {
					fmt.Fprintln(app.stdout, configurationTree(c.Resolution, name))
				}
				return nil
			})
		},
	}
}

func configurationTree(res *collect.Resolution, name moddep.ConfigurationName) *tree.Tree {
	t := tree.Root(TitleStyle.Render(string(name))).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(SubtitleStyle)

	if name == moddep.ConfigPrivateModClasspath {
		for _, mod := range res.Mods {
			sub := tree.Root(CmdStyle.Render(mod.String()))
			for _, a := range res.Private[mod].Artifacts() {
				sub.Child(artifactLabel(a))
			}
			t.Child(sub)
		}
		return t
	}
	for _, a := range res.Configuration(name).Artifacts() {
		t.Child(artifactLabel(a))
	}
	return t
}

func artifactLabel(a moddep.ResolvedArtifact) string {
	if a.Dependency.Name == "" {
		return a.BaseName() + " " + SubtitleStyle.Render("(host build output)")
	}
	return a.BaseName() + " " + SubtitleStyle.Render(a.Dependency.String())
}

func configurationNames() []string {
	names := make([]string, 0, len(listedConfigurations))
	for _, n := range listedConfigurations {
		names = append(names, string(n))
	}
	return names
}
