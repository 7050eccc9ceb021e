// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/Brownshome/game-modding/internal/collect"
	"github.com/Brownshome/game-modding/pkg/cueutil"
	"github.com/Brownshome/game-modding/pkg/modlayout"
)

const (
	formatText = "text"
	formatCUE  = "cue"
	formatTOML = "toml"
)

type (
	// planView is the machine-readable rendering of a layout.
	planView struct {
		Output string         `json:"output" toml:"output"`
		Mods   []planModView  `json:"mods" toml:"mods"`
		Shared []planFileView `json:"shared" toml:"shared"`
	}

	planModView struct {
		Name    string         `json:"name" toml:"name"`
		Version string         `json:"version" toml:"version"`
		Folder  string         `json:"folder" toml:"folder"`
		Files   []planFileView `json:"files" toml:"files"`
	}

	planFileView struct {
		Target string `json:"target" toml:"target"`
		Source string `json:"source" toml:"source"`
	}
)

func newPlanCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the mods directory layout without writing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case formatText, formatCUE, formatTOML:
			default:
				return fmt.Errorf("unknown format %q (want %s, %s or %s)", format, formatText, formatCUE, formatTOML)
			}
			return app.withSession(cmd.Context(), func(ctx context.Context, s *session) error {
				c, err := s.project.Plan(ctx)
				if err != nil {
					return describe("plan collection", s.decl.Path, err)
				}
				return writePlan(app.stdout, format, newPlanView(s.project.Output(), c))
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", formatText, "output format (text, cue, toml)")
	return cmd
}

func newPlanView(output string, c *collect.Collection) planView {
	view := planView{Output: output, Shared: fileViews(c.Layout.Shared())}
	for _, mod := range c.Layout.Mods() {
		view.Mods = append(view.Mods, planModView{
			Name:    string(mod.Name),
			Version: string(mod.Normalize().Version),
			Folder:  mod.FolderName(),
			Files:   fileViews(c.Layout.Private(mod)),
		})
	}
	return view
}

func fileViews(entries []modlayout.Entry) []planFileView {
	views := make([]planFileView, 0, len(entries))
	for _, e := range entries {
		views = append(views, planFileView{Target: e.Target, Source: e.Source})
	}
	return views
}

func writePlan(w io.Writer, format string, view planView) error {
	switch format {
	case formatCUE:
		data, err := cueutil.Encode(view)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case formatTOML:
		data, err := toml.Marshal(view)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Layout of "+view.Output))
	fmt.Fprintln(w)
	fmt.Fprintln(w, SubtitleStyle.Render("shared"))
	if len(view.Shared) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("  (none)"))
	}
	for _, f := range view.Shared {
		fmt.Fprintf(w, "  %s  %s\n", CmdStyle.Render(f.Target), SubtitleStyle.Render(f.Source))
	}
	for _, m := range view.Mods {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", SubtitleStyle.Render(m.Name+" "+m.Version), SubtitleStyle.Render("("+m.Folder+"/)"))
		for _, f := range m.Files {
			fmt.Fprintf(w, "  %s  %s\n", CmdStyle.Render(f.Target), SubtitleStyle.Render(f.Source))
		}
	}
	return nil
}
