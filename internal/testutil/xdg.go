// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

// SetXDGDirs points HOME and the XDG config and data directories inside dir
// and reloads the xdg package. It returns a cleanup function that restores the
// previous environment. Tests using it must not run in parallel.
func SetXDGDirs(t testing.TB, dir string) func() {
	t.Helper()

	cleanups := []func(){
		SetHomeDir(t, dir),
		MustSetenv(t, "XDG_CONFIG_HOME", filepath.Join(dir, "config")),
		MustSetenv(t, "XDG_DATA_HOME", filepath.Join(dir, "data")),
	}
	xdg.Reload()

	return func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
		xdg.Reload()
	}
}
