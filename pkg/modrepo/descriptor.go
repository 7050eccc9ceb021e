// SPDX-License-Identifier: MPL-2.0

package modrepo

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Brownshome/game-modding/pkg/cueutil"
	"github.com/Brownshome/game-modding/pkg/moddep"
)

// DescriptorFileName is the name of the module descriptor in a module directory.
const DescriptorFileName = "module.cue"

const (
	// ScopeImplementation dependencies are private to the module.
	ScopeImplementation Scope = "implementation"
	// ScopeAPI dependencies are part of the module's API and visible to consumers.
	ScopeAPI Scope = "api"
	// ScopeRuntimeOnly dependencies are only needed when the module runs.
	ScopeRuntimeOnly Scope = "runtime_only"
)

//go:embed module_schema.cue
var moduleSchema []byte

type (
	// Scope is the visibility of a dependency edge.
	Scope string

	// Descriptor is a parsed module.cue.
	Descriptor struct {
		Name         moddep.ModuleName `json:"name"`
		Version      moddep.Version    `json:"version,omitempty"`
		Artifacts    []ArtifactSpec    `json:"artifacts"`
		Dependencies []DependencySpec  `json:"dependencies"`

		// Dir is the directory the descriptor was loaded from. Artifact paths
		// are relative to it.
		Dir string `json:"-"`
	}

	// ArtifactSpec is one file contributed by a module.
	ArtifactSpec struct {
		File       string `json:"file"`
		ModuleName string `json:"module_name,omitempty"`
	}

	// DependencySpec is one dependency edge of a module.
	DependencySpec struct {
		Name    moddep.ModuleName `json:"name"`
		Version moddep.Version    `json:"version,omitempty"`
		Scope   Scope             `json:"scope"`
	}
)

// Follows reports whether an edge of scope s is part of the given usage view.
func (s Scope) Follows(usage moddep.Usage) bool {
	if usage == moddep.UsageAPI {
		return s == ScopeAPI
	}
	return true
}

// Dependency returns the identity of the module the edge points at.
func (d DependencySpec) Dependency() moddep.Dependency {
	return moddep.Dependency{Name: d.Name, Version: d.Version}.Normalize()
}

// ParseDescriptor parses and validates module descriptor content. dir is the
// directory artifact paths are relative to.
func ParseDescriptor(data []byte, filename, dir string) (*Descriptor, error) {
	result, err := cueutil.ParseAndDecode[Descriptor](moduleSchema, data, "#Module", cueutil.WithFilename(filename))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", moddep.ErrInvalidDescriptor, err)
	}

	desc := result.Value
	desc.Dir = dir
	if err := desc.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", moddep.ErrInvalidDescriptor, filename, err)
	}
	return desc, nil
}

func (d *Descriptor) validate() error {
	seen := make(map[string]bool, len(d.Artifacts))
	for i, a := range d.Artifacts {
		clean := filepath.Clean(filepath.FromSlash(a.File))
		if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return fmt.Errorf("artifacts[%d].file %q must stay inside the module directory", i, a.File)
		}
		if seen[clean] {
			return fmt.Errorf("artifacts[%d].file %q is listed twice", i, a.File)
		}
		seen[clean] = true
	}
	for i, dep := range d.Dependencies {
		if dep.Name == d.Name {
			return fmt.Errorf("dependencies[%d]: module %s depends on itself", i, d.Name)
		}
	}
	return nil
}

// ArtifactPath returns the absolute path of a in the descriptor's directory.
func (d *Descriptor) ArtifactPath(a ArtifactSpec) string {
	return filepath.Join(d.Dir, filepath.FromSlash(a.File))
}
