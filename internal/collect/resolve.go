// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Brownshome/game-modding/pkg/moddep"
	"github.com/Brownshome/game-modding/pkg/modlayout"
)

// privateResolveLimit bounds concurrent per-mod private resolutions.
const privateResolveLimit = 8

type (
	// Resolution holds the artifacts of every configuration for one pass.
	Resolution struct {
		// Mods are the declared mods in declaration order.
		Mods            []moddep.Dependency
		TopLevel        *moddep.ArtifactSet
		SharedClasspath *moddep.ArtifactSet
		// Private maps each mod to its own runtime closure.
		Private map[moddep.Dependency]*moddep.ArtifactSet
		// Host holds the host runtime classpath plus the host build output.
		Host *moddep.ArtifactSet
	}

	// snapshot is a consistent copy of the declarations taken when a pass starts.
	snapshot struct {
		configs     *moddep.Configurations
		mods        []moddep.Dependency
		hostOutputs []string
	}
)

// Input returns the partitioner input of the resolution.
func (r *Resolution) Input() modlayout.PartitionInput {
	return modlayout.PartitionInput{
		TopLevel:        r.TopLevel,
		SharedClasspath: r.SharedClasspath,
		Private:         r.Private,
		Mods:            r.Mods,
	}
}

// Configuration returns the artifacts resolved for a configuration name. The
// private classpath is returned merged over every mod.
func (r *Resolution) Configuration(name moddep.ConfigurationName) *moddep.ArtifactSet {
	switch name {
	case moddep.ConfigTopLevelMods:
		return r.TopLevel
	case moddep.ConfigSharedModClasspath:
		return r.SharedClasspath
	case moddep.ConfigRuntimeClasspath:
		return r.Host
	case moddep.ConfigPrivateModClasspath:
		merged := &moddep.ArtifactSet{}
		for _, m := range r.Mods {
			merged.AddAll(r.Private[m])
		}
		return merged
	default:
		return &moddep.ArtifactSet{}
	}
}

// snapshot freezes the declarations and copies what a pass reads.
func (p *Project) snapshot() snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phase = PhaseResolving
	cfg, _ := p.configs.Get(moddep.ConfigMod)
	return snapshot{
		configs:     p.configs,
		mods:        cfg.Declared(),
		hostOutputs: append([]string(nil), p.hostOutputs...),
	}
}

// resolve asks the resolver for every configuration. Private closures are
// resolved one mod at a time, each with that mod as the only root, so one
// mod's private dependencies never influence another mod's selection.
func (p *Project) resolve(ctx context.Context, s snapshot) (*Resolution, error) {
	res := &Resolution{
		Mods:    s.mods,
		Private: make(map[moddep.Dependency]*moddep.ArtifactSet, len(s.mods)),
	}

	var err error
	if res.TopLevel, err = p.resolveConfiguration(ctx, s.configs, moddep.ConfigTopLevelMods); err != nil {
		return nil, err
	}
	if res.SharedClasspath, err = p.resolveConfiguration(ctx, s.configs, moddep.ConfigSharedModClasspath); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(privateResolveLimit)
	for _, mod := range s.mods {
		g.Go(func() error {
			closure, err := p.resolveConfiguration(gctx, s.configs, moddep.ConfigPrivateModClasspath, mod)
			if err != nil {
				return err
			}
			mu.Lock()
			res.Private[mod] = closure
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hostDeps, err := s.configs.Dependencies(moddep.ConfigRuntimeClasspath)
	if err != nil {
		return nil, err
	}
	res.Host = &moddep.ArtifactSet{}
	if len(hostDeps) > 0 {
		if res.Host, err = p.resolveConfiguration(ctx, s.configs, moddep.ConfigRuntimeClasspath); err != nil {
			return nil, err
		}
	}
	for _, f := range s.hostOutputs {
		res.Host.Add(moddep.ResolvedArtifact{File: moddep.CanonicalPath(f)})
	}

	return res, nil
}

func (p *Project) resolveConfiguration(
	ctx context.Context,
	configs *moddep.Configurations,
	name moddep.ConfigurationName,
	roots ...moddep.Dependency,
) (*moddep.ArtifactSet, error) {
	req, err := configs.Request(name, roots...)
	if err != nil {
		return nil, err
	}
	artifacts, err := p.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	for i := range artifacts {
		artifacts[i].File = moddep.CanonicalPath(artifacts[i].File)
	}
	set := moddep.NewArtifactSet(artifacts...)

	var owner *moddep.Dependency
	if len(roots) == 1 {
		owner = &roots[0]
	}
	p.observer.ConfigurationResolved(name, owner, set.Len())
	return set, nil
}
