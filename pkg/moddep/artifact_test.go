// SPDX-License-Identifier: MPL-2.0

package moddep

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func artifact(file, name, version string) ResolvedArtifact {
	return ResolvedArtifact{File: file, Dependency: Dependency{Name: ModuleName(name), Version: Version(version)}}
}

func TestArtifactSet_AddKeepsFirstOccurrence(t *testing.T) {
	t.Parallel()

	s := NewArtifactSet(
		artifact("/repo/libX.jar", "libX", "1.0"),
		artifact("/repo/libX.jar", "alias", "9.9"),
		artifact("/repo/libY.jar", "libY", "1.0"),
	)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	got := s.Artifacts()
	if got[0].Dependency.Name != "libX" {
		t.Errorf("first occurrence not kept: %+v", got[0])
	}
	if !s.Contains("/repo/libY.jar") {
		t.Error("expected libY to be present")
	}
}

func TestArtifactSet_Subtract(t *testing.T) {
	t.Parallel()

	all := NewArtifactSet(
		artifact("/r/a.jar", "a", "1"),
		artifact("/r/b.jar", "b", "1"),
		artifact("/r/c.jar", "c", "1"),
	)
	// Same file, different dependency identity: still excluded.
	host := NewArtifactSet(artifact("/r/b.jar", "host-b", "7"))
	shared := NewArtifactSet(artifact("/r/c.jar", "c", "1"))

	rest := all.Subtract(host, shared)

	var files []string
	for _, a := range rest.Artifacts() {
		files = append(files, a.File)
	}
	if !slices.Equal(files, []string{"/r/a.jar"}) {
		t.Errorf("Subtract() = %v, want [/r/a.jar]", files)
	}
	if all.Len() != 3 {
		t.Errorf("Subtract modified the receiver: Len() = %d", all.Len())
	}
}

func TestArtifactSet_NilSafe(t *testing.T) {
	t.Parallel()

	var s *ArtifactSet
	if s.Len() != 0 || s.Contains("x") || s.Artifacts() != nil {
		t.Error("nil set should behave as empty")
	}
}

func TestCanonicalPath_EvaluatesSymlinks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "real.jar")
	if err := os.WriteFile(target, []byte("jar"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.jar")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	if CanonicalPath(link) != CanonicalPath(target) {
		t.Errorf("CanonicalPath(link) = %q, want %q", CanonicalPath(link), CanonicalPath(target))
	}

	missing := filepath.Join(dir, "missing", "..", "gone.jar")
	if got := CanonicalPath(missing); got != filepath.Join(dir, "gone.jar") {
		t.Errorf("CanonicalPath(missing) = %q", got)
	}
}
