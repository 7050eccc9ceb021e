// SPDX-License-Identifier: MPL-2.0

// Package modlayout decides where every resolved mod artifact goes.
//
// The output directory has one shared area (its root) and one private folder
// per top-level mod:
//
//	<output-root>/
//	  <shared artifact files...>
//	  <mod-name>[-<version>]/
//	    <private artifact files...>
//
// NewPartition splits the resolved configurations into the shared set and one
// private set per mod, Deduplicate removes everything the host application
// already provides, and BuildPlan maps the survivors to target paths, failing
// on ambiguous targets instead of letting one artifact overwrite another.
package modlayout
