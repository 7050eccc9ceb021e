// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type (
	// Module describes a module descriptor fixture.
	Module struct {
		Name    string
		Version string
		// Artifacts maps artifact file names to their module names ("" for none).
		// Each artifact file is created with its own name as content.
		Artifacts map[string]string
		// Order fixes the artifact order; when empty, Artifacts is written in
		// sorted order.
		Order        []string
		Dependencies []Edge
	}

	// Edge is a dependency of a Module fixture.
	Edge struct {
		Name    string
		Version string
		// Scope is "api", "implementation" or "runtime_only"; empty leaves the
		// schema default.
		Scope string
	}
)

// WriteModule writes m into a repository rooted at root using the
// <root>/<name>/<version>/module.cue layout and returns the module directory.
func WriteModule(t testing.TB, root string, m Module) string {
	t.Helper()
	dir := filepath.Join(root, m.Name, m.Version)
	writeDescriptor(t, dir, m)
	return dir
}

// WriteLocalProject writes m as a local project at dir (dir/module.cue).
func WriteLocalProject(t testing.TB, dir string, m Module) string {
	t.Helper()
	writeDescriptor(t, dir, m)
	return dir
}

func writeDescriptor(t testing.TB, dir string, m Module) {
	t.Helper()

	var b strings.Builder
	fmt.Fprintf(&b, "name: %q\n", m.Name)
	if m.Version != "" {
		fmt.Fprintf(&b, "version: %q\n", m.Version)
	}

	files := m.Order
	if len(files) == 0 {
		files = slices.Sorted(maps.Keys(m.Artifacts))
	}
	b.WriteString("artifacts: [\n")
	for _, file := range files {
		if moduleName := m.Artifacts[file]; moduleName != "" {
			fmt.Fprintf(&b, "\t{file: %q, module_name: %q},\n", file, moduleName)
		} else {
			fmt.Fprintf(&b, "\t{file: %q},\n", file)
		}
		MustWriteFile(t, filepath.Join(dir, file), file)
	}
	b.WriteString("]\n")

	b.WriteString("dependencies: [\n")
	for _, dep := range m.Dependencies {
		b.WriteString("\t{")
		fmt.Fprintf(&b, "name: %q", dep.Name)
		if dep.Version != "" {
			fmt.Fprintf(&b, ", version: %q", dep.Version)
		}
		if dep.Scope != "" {
			fmt.Fprintf(&b, ", scope: %q", dep.Scope)
		}
		b.WriteString("},\n")
	}
	b.WriteString("]\n")

	MustWriteFile(t, filepath.Join(dir, "module.cue"), b.String())
}
