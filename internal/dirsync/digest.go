// SPDX-License-Identifier: MPL-2.0

package dirsync

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
)

// digestKey identifies one version of a file. A rewrite changes the size or
// the modification time, so a cached digest is never reused for new content
// written through this package.
type digestKey struct {
	path    string
	size    int64
	modTime int64
}

// Digest returns the hex-encoded SHA-256 of the file at path.
func (s *Syncer) Digest(path string) (string, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return "", ioError("stat", path, err)
	}
	return s.digest(path, info)
}

func (s *Syncer) digest(path string, info fs.FileInfo) (string, error) {
	key := digestKey{path: path, size: info.Size(), modTime: info.ModTime().UnixNano()}
	if sum, ok := s.digests.Get(key); ok {
		return sum, nil
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return "", ioError("open", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", ioError("read", path, err)
	}
	sum := hex.EncodeToString(h.Sum(nil))
	s.digests.Add(key, sum)
	return sum, nil
}

// sameContent compares a source with an existing regular target file:
// size first, then SHA-256.
func (s *Syncer) sameContent(source, target string, targetInfo fs.FileInfo) (bool, error) {
	srcInfo, err := s.fs.Stat(source)
	if err != nil {
		return false, ioError("stat", source, err)
	}
	if !srcInfo.Mode().IsRegular() {
		return false, ioError("stat", source, errNotRegular)
	}
	if srcInfo.Size() != targetInfo.Size() {
		return false, nil
	}

	srcSum, err := s.digest(source, srcInfo)
	if err != nil {
		return false, err
	}
	dstSum, err := s.digest(target, targetInfo)
	if err != nil {
		return false, err
	}
	return srcSum == dstSum, nil
}
