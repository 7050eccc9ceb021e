// SPDX-License-Identifier: MPL-2.0

// Package collect runs the mod collection pipeline.
//
// A Project is used in two phases. First every dependency is declared
// (Declare, DeclareHost, DeclareHostOutput, SetApplication, EnableModuleAware).
// The first call to Plan, Status or ResolveAndMaterialize freezes the
// declarations; later declarations fail with ErrDeclarationsFrozen. Each pass
// then resolves the configurations, partitions the artifacts into shared and
// per-mod private sets, removes what the host already provides, maps the
// result to a layout and, for ResolveAndMaterialize, synchronizes the output
// directory and records the lock file.
//
// Tasks exposes the pipeline as a small task graph ("collect", and "run" when
// an application is declared) executed in dependency order.
package collect
