// SPDX-License-Identifier: MPL-2.0

package modlayout

import (
	"github.com/Brownshome/game-modding/pkg/moddep"
)

type (
	// PartitionInput holds the resolved configurations a partition is built from.
	PartitionInput struct {
		// TopLevel is the non-transitive API-view resolution of the declared mods.
		TopLevel *moddep.ArtifactSet
		// SharedClasspath is the transitive API-view resolution of all declared mods.
		SharedClasspath *moddep.ArtifactSet
		// Private holds the transitive runtime-view closure of each mod, resolved
		// with that mod as the only root.
		Private map[moddep.Dependency]*moddep.ArtifactSet
		// Mods lists the top-level mods in declaration order.
		Mods []moddep.Dependency
	}

	// Partition is the shared/private split of the resolved artifacts.
	Partition struct {
		// Shared holds the artifacts placed at the output root.
		Shared *moddep.ArtifactSet
		// Private holds the artifacts placed in each mod's folder.
		Private map[moddep.Dependency]*moddep.ArtifactSet
		// Mods lists the top-level mods in declaration order.
		Mods []moddep.Dependency
		// HostProvided holds the artifacts dropped because the host supplies them.
		// It is empty until Deduplicate runs.
		HostProvided *moddep.ArtifactSet

		// decided is the shared set before host removal.
		decided *moddep.ArtifactSet
	}
)

// NewPartition classifies the resolved artifacts.
//
// An artifact is shared when it is reachable in the shared classpath without
// being a top-level mod's own artifact. Everything else in a mod's private
// closure stays private to that mod, even when another mod needs the same
// file. Top-level artifacts are never shared, so every mod keeps its own
// artifact in its own folder.
func NewPartition(in PartitionInput) *Partition {
	mods := uniqueMods(in.Mods)

	shared := in.SharedClasspath.Subtract(in.TopLevel)

	private := make(map[moddep.Dependency]*moddep.ArtifactSet, len(mods))
	for _, m := range mods {
		private[m] = in.Private[m].Subtract(shared)
	}

	return &Partition{
		Shared:       shared,
		Private:      private,
		Mods:         mods,
		HostProvided: &moddep.ArtifactSet{},
		decided:      shared,
	}
}

// Deduplicate removes every artifact the host already supplies. The shared set
// is filtered first; each private set is then filtered against the host and
// against the shared set decided by NewPartition, so no file is placed twice.
// p is not modified.
func Deduplicate(p *Partition, host *moddep.ArtifactSet) *Partition {
	decided := p.decided
	if decided == nil {
		decided = p.Shared
	}

	removed := &moddep.ArtifactSet{}
	removed.AddAll(p.HostProvided)

	shared := p.Shared.Subtract(host)
	for _, a := range p.Shared.Artifacts() {
		if host.Contains(a.FileKey()) {
			removed.Add(a)
		}
	}

	private := make(map[moddep.Dependency]*moddep.ArtifactSet, len(p.Private))
	for _, m := range p.Mods {
		set := p.Private[m]
		private[m] = set.Subtract(host, decided)
		for _, a := range set.Artifacts() {
			if host.Contains(a.FileKey()) {
				removed.Add(a)
			}
		}
	}

	return &Partition{
		Shared:       shared,
		Private:      private,
		Mods:         p.Mods,
		HostProvided: removed,
		decided:      decided,
	}
}

func uniqueMods(mods []moddep.Dependency) []moddep.Dependency {
	out := make([]moddep.Dependency, 0, len(mods))
	seen := make(map[moddep.Dependency]bool, len(mods))
	for _, m := range mods {
		m = m.Normalize()
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}
