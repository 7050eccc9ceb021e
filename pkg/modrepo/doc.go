// SPDX-License-Identifier: MPL-2.0

// Package modrepo resolves mod dependencies against local file repositories.
//
// A repository is a directory laid out as <root>/<name>/<version>/module.cue.
// A module descriptor lists the artifact files the module contributes (paths
// relative to the descriptor) and the modules it depends on, each with a scope:
//
//	name:    "core"
//	version: "1.4.0"
//	artifacts: [{file: "core.jar", module_name: "com.example.core"}]
//	dependencies: [
//		{name: "gson", version: "2.10.1", scope: "api"},
//		{name: "asm", version: "9.6"},
//	]
//
// Local, in-development projects carry the version "unspecified" and are
// registered by directory (<path>/module.cue).
//
// The API view follows only "api" edges. The runtime view follows every
// scope. When the same module is reached at different versions within one
// request, the highest version wins and the graph is walked again until the
// selection is stable.
package modrepo
