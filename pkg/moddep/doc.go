// SPDX-License-Identifier: MPL-2.0

// Package moddep defines the dependency model shared by every stage of mod
// collection: dependency identities, the fixed graph of named configurations,
// resolved artifacts, and the contract of the external resolver.
//
// # Identity
//
// A [Dependency] is identified by its name and version. The version
// [Unspecified] marks a local, in-development module; such modules are laid
// out in a folder named after the module alone (see [FolderName]).
//
// # Configurations
//
// Mod collection works over five named configurations:
//   - [ConfigMod]: the declared mods, never resolved directly
//   - [ConfigTopLevelMods]: the declared mods only, shared (API) view
//   - [ConfigSharedModClasspath]: full closure of all mods, shared (API) view
//   - [ConfigPrivateModClasspath]: closure of one mod at a time, runtime view
//   - [ConfigRuntimeClasspath]: the host application's own runtime classpath
//
// The first four extend [ConfigMod]. Dependencies of a configuration are the
// union over its extendsFrom closure.
//
// # Resolution
//
// A [Resolver] turns a [Request] into concrete [ResolvedArtifact] values.
// Artifacts are compared by file identity, never by dependency identity,
// because one file may be reached through several dependencies.
package moddep
