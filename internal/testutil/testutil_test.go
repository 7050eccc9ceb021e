// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

func TestSetXDGDirs(t *testing.T) {
	tmpDir := t.TempDir()
	originalConfig := os.Getenv("XDG_CONFIG_HOME")

	cleanup := SetXDGDirs(t, tmpDir)

	if want := filepath.Join(tmpDir, "config"); xdg.ConfigHome != want {
		t.Errorf("xdg.ConfigHome = %q, want %q", xdg.ConfigHome, want)
	}
	if want := filepath.Join(tmpDir, "data"); xdg.DataHome != want {
		t.Errorf("xdg.DataHome = %q, want %q", xdg.DataHome, want)
	}

	cleanup()

	if got := os.Getenv("XDG_CONFIG_HOME"); got != originalConfig {
		t.Errorf("after cleanup XDG_CONFIG_HOME = %q, want %q", got, originalConfig)
	}
}

func TestCountingFs(t *testing.T) {
	t.Parallel()

	fs := NewCountingFs(afero.NewMemMapFs())

	if err := fs.MkdirAll("/out/core", 0o755); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/out/core/a.jar", []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fs.Rename("/out/core/a.jar", "/out/core/b.jar"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Remove("/out/core/b.jar"); err != nil {
		t.Fatal(err)
	}

	want := []string{"mkdirall /out/core", "openwrite /out/core/a.jar", "rename /out/core/b.jar", "remove /out/core/b.jar"}
	if got := fs.Writes(); !slices.Equal(got, want) {
		t.Errorf("Writes() = %v, want %v", got, want)
	}

	fs.Reset()
	if _, err := fs.Stat("/out/core"); err != nil {
		t.Fatal(err)
	}
	if _, err := afero.ReadDir(fs, "/out"); err != nil {
		t.Fatal(err)
	}
	if got := fs.Writes(); len(got) != 0 {
		t.Errorf("reads were counted as writes: %v", got)
	}
}

func TestWriteModule(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := WriteModule(t, root, Module{
		Name:         "core",
		Version:      "1.0.0",
		Artifacts:    map[string]string{"core.jar": "com.example.core", "extra.jar": ""},
		Dependencies: []Edge{{Name: "lib", Version: "2.0", Scope: "api"}},
	})

	if want := filepath.Join(root, "core", "1.0.0"); dir != want {
		t.Errorf("WriteModule() = %q, want %q", dir, want)
	}
	if got := MustReadFile(t, filepath.Join(dir, "core.jar")); got != "core.jar" {
		t.Errorf("artifact content = %q", got)
	}

	descriptor := MustReadFile(t, filepath.Join(dir, "module.cue"))
	for _, fragment := range []string{
		`name: "core"`,
		`{file: "core.jar", module_name: "com.example.core"}`,
		`{file: "extra.jar"}`,
		`{name: "lib", version: "2.0", scope: "api"}`,
	} {
		if !strings.Contains(descriptor, fragment) {
			t.Errorf("descriptor missing %q:\n%s", fragment, descriptor)
		}
	}
}
