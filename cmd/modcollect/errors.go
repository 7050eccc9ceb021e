// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/Brownshome/game-modding/internal/collect"
	"github.com/Brownshome/game-modding/internal/config"
	"github.com/Brownshome/game-modding/internal/dag"
	"github.com/Brownshome/game-modding/internal/dirsync"
	"github.com/Brownshome/game-modding/internal/issue"
	"github.com/Brownshome/game-modding/pkg/moddecl"
	"github.com/Brownshome/game-modding/pkg/moddep"
	"github.com/Brownshome/game-modding/pkg/modlayout"
)

// classify maps a domain error to its catalogued issue; zero when none fits.
func classify(err error) issue.Id {
	var cycle *dag.CycleError
	switch {
	case errors.Is(err, moddecl.ErrDeclarationNotFound):
		return issue.DeclarationNotFoundId
	case errors.Is(err, moddecl.ErrInvalidDeclaration), errors.Is(err, collect.ErrUnsafeOutput):
		return issue.DeclarationInvalidId
	case errors.As(err, &cycle):
		return issue.DependencyCycleId
	case errors.Is(err, moddep.ErrResolution):
		return issue.ResolutionFailedId
	case errors.Is(err, modlayout.ErrLayoutCollision):
		return issue.LayoutCollisionId
	case errors.Is(err, dirsync.ErrSyncIO):
		return issue.SyncFailedId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	case errors.Is(err, moddecl.ErrLockFileNotFound):
		return issue.LockMismatchId
	default:
		return 0
	}
}

// describe wraps err as an actionable error for operation on resource,
// tagging it with the matching issue. Errors that already carry an issue
// are returned unchanged.
func describe(operation, resource string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := issue.IssueOf(err); ok {
		return err
	}
	ctx := issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		Wrap(err)
	if id := classify(err); id != 0 {
		ctx = ctx.WithIssue(id)
	}
	switch {
	case errors.Is(err, moddep.ErrResolution):
		ctx = ctx.WithSuggestions(
			"Check that every repository in mods.cue and the config exists",
			"Run 'modcollect deps' to see what resolves",
		)
	case errors.Is(err, modlayout.ErrLayoutCollision):
		ctx = ctx.WithSuggestion("Rename or drop one of the conflicting mods")
	case errors.Is(err, collect.ErrUnsafeOutput):
		ctx = ctx.WithSuggestion("Point 'output' at a directory of its own, such as \"build/mods\"")
	}
	return ctx.BuildError()
}

// declarationError describes a failure to load the declaration at path.
func declarationError(path string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("load declaration").
		WithResource(path).
		Wrap(err)
	switch {
	case errors.Is(err, moddecl.ErrDeclarationNotFound):
		ctx = ctx.WithIssue(issue.DeclarationNotFoundId).
			WithSuggestions("Run 'modcollect init' to create one", "Use --file to point at another declaration")
	case errors.Is(err, moddecl.ErrInvalidDeclaration):
		ctx = ctx.WithIssue(issue.DeclarationInvalidId).
			WithSuggestion("Compare the file with the output of 'modcollect init'")
	}
	return ctx.BuildError()
}

// renderIssue prints the suggestions of err and, in verbose mode, its error
// chain and the catalogued help of its issue. Without verbose output a hint
// replaces the catalogued help.
func renderIssue(w io.Writer, err error, verbose bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) && (verbose || ae.HasSuggestions()) {
		fmt.Fprintln(w, formatErrorForDisplay(err, verbose))
	}
	found, ok := issue.IssueOf(err)
	if !ok {
		return
	}
	if !verbose {
		fmt.Fprintln(w, SubtitleStyle.Render("Run with --verbose for help on this error."))
		return
	}
	rendered, renderErr := found.Render("dark")
	if renderErr != nil {
		return
	}
	fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	return err.Error()
}
