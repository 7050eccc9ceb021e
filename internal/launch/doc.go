// SPDX-License-Identifier: MPL-2.0

// Package launch starts the host application once its mods are collected.
//
// The application command is a single simple shell command interpreted by
// the embedded mvdan/sh interpreter, so it behaves the same on every platform.
// Declared arguments are passed as positional parameters and "$@" is added to
// the parsed command's words, which keeps them literal. Lists, pipelines and
// compound commands are rejected; they belong in a script.
//
// The environment is the current process environment, then MODS_DIR, then
// the declared variables.
package launch
