// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// CountingFs wraps an afero.Fs and records every call that can modify the
// filesystem. Reads pass through uncounted.
type CountingFs struct {
	afero.Fs

	mu     sync.Mutex
	writes []string
}

// NewCountingFs wraps fs.
func NewCountingFs(fs afero.Fs) *CountingFs {
	return &CountingFs{Fs: fs}
}

// Writes returns the recorded mutating calls as "op path" strings.
func (c *CountingFs) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

// Reset clears the recorded calls.
func (c *CountingFs) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = nil
}

func (c *CountingFs) record(op, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, op+" "+name)
}

func (c *CountingFs) Create(name string) (afero.File, error) {
	c.record("create", name)
	return c.Fs.Create(name)
}

func (c *CountingFs) Mkdir(name string, perm os.FileMode) error {
	c.record("mkdir", name)
	return c.Fs.Mkdir(name, perm)
}

func (c *CountingFs) MkdirAll(path string, perm os.FileMode) error {
	c.record("mkdirall", path)
	return c.Fs.MkdirAll(path, perm)
}

func (c *CountingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_TRUNC|os.O_APPEND) != 0 {
		c.record("openwrite", name)
	}
	return c.Fs.OpenFile(name, flag, perm)
}

func (c *CountingFs) Remove(name string) error {
	c.record("remove", name)
	return c.Fs.Remove(name)
}

func (c *CountingFs) RemoveAll(path string) error {
	c.record("removeall", path)
	return c.Fs.RemoveAll(path)
}

func (c *CountingFs) Rename(oldname, newname string) error {
	c.record("rename", newname)
	return c.Fs.Rename(oldname, newname)
}

func (c *CountingFs) Chmod(name string, mode os.FileMode) error {
	c.record("chmod", name)
	return c.Fs.Chmod(name, mode)
}

func (c *CountingFs) Chown(name string, uid, gid int) error {
	c.record("chown", name)
	return c.Fs.Chown(name, uid, gid)
}

func (c *CountingFs) Chtimes(name string, atime, mtime time.Time) error {
	c.record("chtimes", name)
	return c.Fs.Chtimes(name, atime, mtime)
}

// LstatIfPossible forwards to the wrapped filesystem when it supports Lstat.
func (c *CountingFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if lstater, ok := c.Fs.(afero.Lstater); ok {
		return lstater.LstatIfPossible(name)
	}
	info, err := c.Fs.Stat(name)
	return info, false, err
}
