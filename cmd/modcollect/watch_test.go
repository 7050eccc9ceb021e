// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestWatchIgnores(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(string(filepath.Separator), "game")
	tests := []struct {
		name   string
		output string
		want   []string
	}{
		{name: "output inside", output: filepath.Join(dir, "build", "mods"), want: []string{"build/mods/**", "mods.lock.cue"}},
		{name: "output outside", output: filepath.Join(string(filepath.Separator), "srv", "mods"), want: []string{"mods.lock.cue"}},
		{name: "sibling with common prefix", output: dir + "-mods", want: []string{"mods.lock.cue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := watchIgnores(dir, tt.output, filepath.Join(dir, "mods.lock.cue"))
			if !slices.Equal(got, tt.want) {
				t.Errorf("watchIgnores() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollectCommand_WatchExcludesDryRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "")
	if _, _, err := execute(t, "collect", "--file", f.decl, "--watch", "--dry-run"); err == nil {
		t.Error("collect accepted --watch with --dry-run")
	}
}
