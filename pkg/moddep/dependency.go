// SPDX-License-Identifier: MPL-2.0

package moddep

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Unspecified is the version of a dependency that has no published version,
// typically a module built from a local project.
const Unspecified Version = "unspecified"

var (
	// ErrInvalidModuleName is returned when a ModuleName value does not match
	// the required format.
	ErrInvalidModuleName = errors.New("invalid module name")

	// ErrInvalidVersion is returned when a Version value is malformed.
	ErrInvalidVersion = errors.New("invalid version")

	// moduleNamePattern: starts with a letter or digit, followed by letters, digits,
	// dots, underscores, or hyphens. Names become folder names, so path
	// separators are never allowed.
	moduleNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

	// versionPattern rejects whitespace and path separators.
	versionPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)
)

type (
	// ModuleName is the name of a mod or library (e.g., "core-lib").
	ModuleName string

	// InvalidModuleNameError is returned when a ModuleName value does not match
	// the required format. It wraps ErrInvalidModuleName for errors.Is() compatibility.
	InvalidModuleNameError struct {
		Value ModuleName
	}

	// Version is the declared version of a dependency (e.g., "1.0", "2.3.1").
	// The zero value is treated as Unspecified.
	Version string

	// InvalidVersionError is returned when a Version value is malformed.
	// It wraps ErrInvalidVersion for errors.Is() compatibility.
	InvalidVersionError struct {
		Value Version
	}

	// Dependency is a declared dependency. Equality and grouping are by identity
	// (name + version); two Dependency values with the same identity are the same
	// dependency.
	Dependency struct {
		Name    ModuleName
		Version Version
	}
)

// String returns the string representation of the ModuleName.
func (n ModuleName) String() string { return string(n) }

// Validate returns nil if the ModuleName is non-empty and uses only letters,
// digits, dots, underscores, or hyphens.
func (n ModuleName) Validate() error {
	if !moduleNamePattern.MatchString(string(n)) {
		return &InvalidModuleNameError{Value: n}
	}
	return nil
}

// Error implements the error interface for InvalidModuleNameError.
func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf(
		"invalid module name %q: must start with a letter or digit and contain only letters, digits, dots, underscores, or hyphens",
		string(e.Value),
	)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidModuleNameError) Unwrap() error { return ErrInvalidModuleName }

// String returns the string representation of the Version.
func (v Version) String() string { return string(v) }

// IsUnspecified reports whether v denotes a local module without a published version.
func (v Version) IsUnspecified() bool {
	return v == "" || v == Unspecified
}

// Validate returns nil if the Version is unspecified or a well-formed version string.
func (v Version) Validate() error {
	if v.IsUnspecified() {
		return nil
	}
	if !versionPattern.MatchString(string(v)) {
		return &InvalidVersionError{Value: v}
	}
	return nil
}

// Error implements the error interface for InvalidVersionError.
func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid version %q: must not contain whitespace or path separators", string(e.Value))
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

// NewDependency returns a validated Dependency. An empty version is normalized
// to Unspecified.
func NewDependency(name ModuleName, version Version) (Dependency, error) {
	dep := Dependency{Name: name, Version: version}.Normalize()
	if err := dep.Validate(); err != nil {
		return Dependency{}, err
	}
	return dep, nil
}

// ParseDependency parses the "name" or "name:version" notation used on the
// command line.
func ParseDependency(s string) (Dependency, error) {
	name, version, _ := strings.Cut(strings.TrimSpace(s), ":")
	return NewDependency(ModuleName(name), Version(version))
}

// Normalize returns a copy of d with an empty version replaced by Unspecified.
func (d Dependency) Normalize() Dependency {
	if d.Version == "" {
		d.Version = Unspecified
	}
	return d
}

// Validate checks the name and the version of the dependency.
func (d Dependency) Validate() error {
	if err := d.Name.Validate(); err != nil {
		return err
	}
	return d.Version.Validate()
}

// Key returns the identity key of the dependency ("name@version").
func (d Dependency) Key() string {
	d = d.Normalize()
	return string(d.Name) + "@" + string(d.Version)
}

// String returns a human-readable representation of the dependency.
func (d Dependency) String() string {
	if d.Version.IsUnspecified() {
		return string(d.Name)
	}
	return string(d.Name) + ":" + string(d.Version)
}

// FolderName returns the name of the folder holding the private artifacts of d.
func (d Dependency) FolderName() string { return FolderName(d) }

// FolderName maps a dependency identity to its folder name: the bare name when
// the version is unspecified, otherwise "name-version". It is a pure function;
// the same identity always yields the same folder name across runs.
func FolderName(dep Dependency) string {
	if dep.Version.IsUnspecified() {
		return string(dep.Name)
	}
	return string(dep.Name) + "-" + string(dep.Version)
}
