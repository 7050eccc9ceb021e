// SPDX-License-Identifier: MPL-2.0

// Package moddecl reads and writes the files a mod collection project keeps
// next to each other: the mods.cue declaration and the generated
// mods.lock.cue lock file.
//
// A declaration names the mods to collect, where to put them, which
// repositories to resolve them from, what the host application already ships
// and, optionally, how to launch the application once the mods are in place:
//
//	output: "build/mods"
//	repositories: ["../repository"]
//	mods: [
//		{name: "core", version: "1.4.0"},
//		{name: "my-mod", path: "../my-mod"},
//	]
//	host: {
//		dependencies: [{name: "engine", version: "3.0"}]
//		build_output: ["build/libs/game.jar"]
//	}
//	application: {command: "java", args: ["-jar", "build/libs/game.jar"]}
//
// Relative paths are resolved against the declaration's directory.
package moddecl
