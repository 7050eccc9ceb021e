// SPDX-License-Identifier: MPL-2.0

package modlayout

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/Brownshome/game-modding/pkg/moddep"
)

const (
	// ScopeShared places an artifact at the output root.
	ScopeShared Scope = "shared"
	// ScopePrivate places an artifact in its owning mod's folder.
	ScopePrivate Scope = "private"
)

// ErrLayoutCollision is the sentinel wrapped by every CollisionError.
var ErrLayoutCollision = errors.New("layout collision")

type (
	// Scope says which area of the output an entry belongs to.
	Scope string

	// Entry maps one source file to its target path.
	Entry struct {
		// Target is the slash-separated path relative to the output root.
		Target string
		// Source is the canonical path of the artifact file.
		Source string
		Scope  Scope
		// Owner is the mod owning a private entry; nil for shared entries.
		Owner *moddep.Dependency
		// Artifact is the resolved artifact the entry was built from.
		Artifact moddep.ResolvedArtifact
	}

	// Plan is the complete desired content of the output directory.
	Plan struct {
		// Entries are sorted by target path.
		Entries []Entry

		folders map[string]moddep.Dependency
		mods    []moddep.Dependency
	}

	// CollisionError reports two different things claiming one target path.
	CollisionError struct {
		Target string
		Scope  Scope
		// First and Second describe the conflicting claimants (usually source
		// file paths, or mod identities for folder clashes).
		First  string
		Second string
	}
)

func (e *CollisionError) Error() string {
	return fmt.Sprintf("ambiguous %s target %q: both %s and %s map to it", e.Scope, e.Target, e.First, e.Second)
}

// Unwrap returns ErrLayoutCollision so callers can use errors.Is.
func (e *CollisionError) Unwrap() error { return ErrLayoutCollision }

// BuildPlan maps a partition to target paths. Shared artifacts go to the
// output root under their base name; private artifacts go to
// FolderName(mod)/<base name>.
//
// It fails with a *CollisionError when two distinct files claim the same
// target in one scope, when two mods share a folder name, or when a shared
// file is named like a mod folder.
func BuildPlan(p *Partition) (*Plan, error) {
	plan := &Plan{
		folders: make(map[string]moddep.Dependency, len(p.Mods)),
		mods:    p.Mods,
	}

	for _, m := range p.Mods {
		folder := moddep.FolderName(m)
		if other, ok := plan.folders[folder]; ok {
			return nil, &CollisionError{Target: folder, Scope: ScopePrivate, First: other.String(), Second: m.String()}
		}
		plan.folders[folder] = m
	}

	claimed := make(map[string]string)
	claim := func(target, source string, scope Scope) error {
		if prev, ok := claimed[target]; ok && prev != source {
			return &CollisionError{Target: target, Scope: scope, First: prev, Second: source}
		}
		claimed[target] = source
		return nil
	}

	for _, a := range p.Shared.Artifacts() {
		target := a.BaseName()
		if owner, ok := plan.folders[target]; ok {
			return nil, &CollisionError{Target: target, Scope: ScopeShared, First: "folder of " + owner.String(), Second: a.File}
		}
		if err := claim(target, a.File, ScopeShared); err != nil {
			return nil, err
		}
		plan.Entries = append(plan.Entries, Entry{Target: target, Source: a.File, Scope: ScopeShared, Artifact: a})
	}

	for _, m := range p.Mods {
		owner := m
		folder := moddep.FolderName(m)
		for _, a := range p.Private[m].Artifacts() {
			target := path.Join(folder, a.BaseName())
			if err := claim(target, a.File, ScopePrivate); err != nil {
				return nil, err
			}
			plan.Entries = append(plan.Entries, Entry{Target: target, Source: a.File, Scope: ScopePrivate, Owner: &owner, Artifact: a})
		}
	}

	slices.SortFunc(plan.Entries, func(a, b Entry) int { return strings.Compare(a.Target, b.Target) })
	return plan, nil
}

// Shared returns the entries placed at the output root.
func (p *Plan) Shared() []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if e.Scope == ScopeShared {
			out = append(out, e)
		}
	}
	return out
}

// Private returns the entries placed in the folder of mod.
func (p *Plan) Private(mod moddep.Dependency) []Entry {
	mod = mod.Normalize()
	var out []Entry
	for _, e := range p.Entries {
		if e.Scope == ScopePrivate && e.Owner != nil && *e.Owner == mod {
			out = append(out, e)
		}
	}
	return out
}

// Folders returns the mod folder names, sorted.
func (p *Plan) Folders() []string {
	folders := make([]string, 0, len(p.folders))
	for f := range p.folders {
		folders = append(folders, f)
	}
	slices.Sort(folders)
	return folders
}

// Mods returns the top-level mods in declaration order.
func (p *Plan) Mods() []moddep.Dependency { return p.mods }

// Targets returns every target path in the plan, sorted.
func (p *Plan) Targets() []string {
	targets := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		targets = append(targets, e.Target)
	}
	return targets
}
