// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* file and environment helpers it offers a module
// repository fixture builder (WriteModule, WriteLocalProject), XDG directory
// isolation (SetXDGDirs) and CountingFs, an afero.Fs wrapper that counts
// mutating calls so tests can prove a pass performed no writes.
package testutil
