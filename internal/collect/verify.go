// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"context"

	"github.com/Brownshome/game-modding/internal/dirsync"
	"github.com/Brownshome/game-modding/pkg/moddecl"
)

// Verify checks the output directory recorded in lock against the recorded
// digests. It reads only and reports missing, modified and foreign files.
func Verify(ctx context.Context, syncer *dirsync.Syncer, lock *moddecl.LockFile) (*dirsync.Verification, error) {
	digests := make(map[string]string, len(lock.Entries))
	for _, e := range lock.Entries {
		digests[e.Target] = e.SHA256
	}
	return syncer.Verify(ctx, lock.Output, digests)
}
