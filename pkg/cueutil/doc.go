// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE parsing and encoding utilities.
//
// Declaration files, module descriptors, lock files and the user configuration
// are all CUE documents validated against an embedded schema:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate and decode to Go struct
//
// # Usage
//
//	//go:embed declaration_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[Declaration](
//	    schemaBytes,
//	    data,
//	    "#Declaration",
//	    cueutil.WithFilename("mods.cue"),
//	)
//	if err != nil {
//	    return nil, err  // Error includes CUE path for debugging
//	}
//	return result.Value, nil
//
// Encode goes the other way and renders a Go value as formatted CUE source,
// which is how generated files such as mods.lock.cue are written.
package cueutil
