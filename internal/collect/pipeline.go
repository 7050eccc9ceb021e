// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"context"
	"fmt"

	"github.com/Brownshome/game-modding/internal/dirsync"
	"github.com/Brownshome/game-modding/pkg/moddecl"
	"github.com/Brownshome/game-modding/pkg/moddep"
	"github.com/Brownshome/game-modding/pkg/modlayout"
)

type (
	// Collection is the outcome of resolving and laying out one pass.
	Collection struct {
		Resolution *Resolution
		// Partition is the deduplicated shared/private split.
		Partition *modlayout.Partition
		Layout    *modlayout.Plan
	}

	// Report describes a finished pass.
	Report struct {
		*Collection
		// Output is the absolute output directory.
		Output string
		// Sync lists what was (or, for a dry run, would be) changed.
		Sync *dirsync.Result
		// LockChanged reports whether the lock file was rewritten.
		LockChanged bool
		// DryRun is set for passes that did not touch the filesystem.
		DryRun bool
	}
)

// Entries converts the layout into synchronizer entries.
func (c *Collection) Entries() []dirsync.Entry {
	entries := make([]dirsync.Entry, 0, len(c.Layout.Entries))
	for _, e := range c.Layout.Entries {
		entries = append(entries, dirsync.Entry{Target: e.Target, Source: e.Source})
	}
	return entries
}

// Plan freezes the declarations, resolves every configuration and builds the
// layout without touching the output directory.
func (p *Project) Plan(ctx context.Context) (*Collection, error) {
	p.passMu.Lock()
	defer p.passMu.Unlock()

	c, err := p.collect(ctx)
	p.end(err)
	return c, err
}

// Status is a dry run of ResolveAndMaterialize: it reports the changes a
// collection would make without writing anything.
func (p *Project) Status(ctx context.Context) (*Report, error) {
	p.passMu.Lock()
	defer p.passMu.Unlock()

	report, err := p.status(ctx)
	p.end(err)
	return report, err
}

func (p *Project) status(ctx context.Context) (*Report, error) {
	c, err := p.collect(ctx)
	if err != nil {
		return nil, err
	}
	result, err := p.syncer.Diff(ctx, p.output, c.Entries())
	if err != nil {
		return nil, err
	}
	return &Report{Collection: c, Output: p.output, Sync: result, DryRun: true}, nil
}

// ResolveAndMaterialize freezes the declarations, runs a full pass and makes
// the output directory match the layout. A failed pass leaves the directory
// in an intermediate state; run the pass again to repair it.
func (p *Project) ResolveAndMaterialize(ctx context.Context) (*Report, error) {
	p.passMu.Lock()
	defer p.passMu.Unlock()

	report, err := p.materialize(ctx)
	p.end(err)
	return report, err
}

func (p *Project) materialize(ctx context.Context) (*Report, error) {
	c, err := p.collect(ctx)
	if err != nil {
		return nil, err
	}

	result, err := p.syncer.Sync(ctx, p.output, c.Entries())
	if err != nil {
		return nil, err
	}
	p.observer.SyncCompleted(p.output, result)

	report := &Report{Collection: c, Output: p.output, Sync: result}
	if p.lockFile != "" {
		lock, err := p.lock(c)
		if err != nil {
			return nil, err
		}
		if report.LockChanged, err = lock.Save(p.lockFile); err != nil {
			return nil, fmt.Errorf("write lock file: %w", err)
		}
	}
	return report, nil
}

// collect runs the resolve, partition, deduplicate and layout steps.
func (p *Project) collect(ctx context.Context) (*Collection, error) {
	s := p.snapshot()

	res, err := p.resolve(ctx, s)
	if err != nil {
		return nil, err
	}

	partition := modlayout.Deduplicate(modlayout.NewPartition(res.Input()), res.Host)
	layout, err := modlayout.BuildPlan(partition)
	if err != nil {
		return nil, err
	}

	p.observer.SharedCollected(layout.Shared())
	for _, mod := range layout.Mods() {
		p.observer.ModuleCollected(mod, mod.FolderName(), layout.Private(mod))
	}

	return &Collection{Resolution: res, Partition: partition, Layout: layout}, nil
}

// lock builds the lock file of a collection. Digests are taken from the
// sources, which the synchronized targets now match.
func (p *Project) lock(c *Collection) (*moddecl.LockFile, error) {
	lock := &moddecl.LockFile{
		Version: moddecl.LockFileVersion,
		Output:  p.output,
		Mods:    make([]moddecl.LockedMod, 0, len(c.Layout.Mods())),
		Entries: make([]moddecl.LockedEntry, 0, len(c.Layout.Entries)),
	}
	for _, mod := range c.Layout.Mods() {
		lock.Mods = append(lock.Mods, lockedMod(mod))
	}
	for _, e := range c.Layout.Entries {
		sum, err := p.syncer.Digest(e.Source)
		if err != nil {
			return nil, err
		}
		entry := moddecl.LockedEntry{
			Target: e.Target,
			Source: e.Source,
			SHA256: sum,
			Scope:  string(e.Scope),
		}
		if e.Owner != nil {
			entry.Owner = e.Owner.String()
		}
		lock.Entries = append(lock.Entries, entry)
	}
	return lock, nil
}

func lockedMod(mod moddep.Dependency) moddecl.LockedMod {
	return moddecl.LockedMod{
		Name:    string(mod.Name),
		Version: string(mod.Normalize().Version),
		Folder:  mod.FolderName(),
	}
}
