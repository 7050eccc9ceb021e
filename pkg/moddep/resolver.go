// SPDX-License-Identifier: MPL-2.0

package moddep

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrResolution is the sentinel wrapped by every ResolutionError.
	ErrResolution = errors.New("resolution failed")

	// ErrModuleNotFound is returned when no repository provides a dependency.
	ErrModuleNotFound = errors.New("module not found")

	// ErrAttributeMismatch is returned when a resolved artifact is incompatible
	// with the requested attributes.
	ErrAttributeMismatch = errors.New("attribute mismatch")

	// ErrArtifactMissing is returned when a module descriptor lists a file that
	// does not exist.
	ErrArtifactMissing = errors.New("artifact file missing")

	// ErrInvalidDescriptor is returned when a module descriptor cannot be parsed.
	ErrInvalidDescriptor = errors.New("invalid module descriptor")
)

type (
	// Request asks a resolver for the artifacts of a set of root dependencies.
	Request struct {
		// Configuration names the configuration being resolved (for diagnostics).
		Configuration ConfigurationName
		// Roots are the dependencies to resolve.
		Roots []Dependency
		// Transitive includes the dependencies of the roots.
		Transitive bool
		// Usage selects the dependency edges followed when Transitive is set.
		Usage Usage
		// Attributes constrain the artifacts that may be selected.
		Attributes Attributes
	}

	// Resolver produces concrete artifacts for a request. Implementations must
	// fail deterministically with a *ResolutionError when the graph cannot be
	// resolved.
	Resolver interface {
		Resolve(ctx context.Context, req Request) ([]ResolvedArtifact, error)
	}

	// ResolverFunc adapts a function to the Resolver interface.
	ResolverFunc func(ctx context.Context, req Request) ([]ResolvedArtifact, error)

	// ResolutionError reports a dependency that could not be resolved.
	ResolutionError struct {
		Configuration ConfigurationName
		Dependency    Dependency
		Err           error
	}
)

// Resolve calls f(ctx, req).
func (f ResolverFunc) Resolve(ctx context.Context, req Request) ([]ResolvedArtifact, error) {
	return f(ctx, req)
}

// Error implements the error interface for ResolutionError.
func (e *ResolutionError) Error() string {
	if e.Configuration != "" {
		return fmt.Sprintf("could not resolve %s in configuration %s: %v", e.Dependency, e.Configuration, e.Err)
	}
	return fmt.Sprintf("could not resolve %s: %v", e.Dependency, e.Err)
}

// Unwrap returns both ErrResolution and the cause so errors.Is matches either.
func (e *ResolutionError) Unwrap() []error { return []error{ErrResolution, e.Err} }
