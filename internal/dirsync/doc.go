// SPDX-License-Identifier: MPL-2.0

// Package dirsync makes a directory match a list of (target, source) file
// mappings exactly.
//
// Missing or stale targets are written through a temporary file and a rename
// in the destination directory. Targets whose content already matches their
// source are left alone, so a second pass over an unchanged plan performs no
// filesystem writes at all. Everything under the root that the plan does not
// name is deleted.
//
// The Syncer owns its root exclusively. Two passes must not run against the
// same root at the same time.
package dirsync
