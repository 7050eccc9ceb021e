// SPDX-License-Identifier: MPL-2.0

package dirsync

import (
	"errors"
	"fmt"
)

var (
	// ErrSyncIO is the sentinel wrapped by every SyncError.
	ErrSyncIO = errors.New("directory synchronization failed")

	// ErrInvalidEntry is returned when an entry's target is not a clean
	// relative path or when two entries claim one target with different sources.
	ErrInvalidEntry = errors.New("invalid sync entry")

	errNotRegular = errors.New("source is not a regular file")
)

// SyncError reports the filesystem operation that aborted a pass. The output
// directory is left in whatever state the pass reached and must be synced again.
type SyncError struct {
	Op   string
	Path string
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns both ErrSyncIO and the underlying cause.
func (e *SyncError) Unwrap() []error { return []error{ErrSyncIO, e.Err} }

func ioError(op, path string, err error) error {
	var syncErr *SyncError
	if errors.As(err, &syncErr) {
		return err
	}
	return &SyncError{Op: op, Path: path, Err: err}
}
