// SPDX-License-Identifier: MPL-2.0

package modlayout

import (
	"errors"
	"slices"
	"testing"

	"github.com/Brownshome/game-modding/pkg/moddep"
)

var (
	modA     = moddep.Dependency{Name: "A", Version: "1.0"}
	modB     = moddep.Dependency{Name: "B", Version: "2.0"}
	localMod = moddep.Dependency{Name: "local-mod", Version: moddep.Unspecified}
	libXDep  = moddep.Dependency{Name: "libX", Version: "1.0"}
)

func artifact(file string, dep moddep.Dependency) moddep.ResolvedArtifact {
	return moddep.ResolvedArtifact{File: file, Dependency: dep}
}

var (
	aJar     = artifact("/repo/A/1.0/A.jar", modA)
	bJar     = artifact("/repo/B/2.0/B.jar", modB)
	libX     = artifact("/repo/libX/1.0/libX.jar", libXDep)
	libY     = artifact("/repo/libY/1.0/libY.jar", moddep.Dependency{Name: "libY", Version: "1.0"})
	apiLib   = artifact("/repo/api/1.0/api.jar", moddep.Dependency{Name: "api", Version: "1.0"})
	localJar = artifact("/work/local-mod/build/local-mod.jar", localMod)
	hostJar  = artifact("/host/libs/host-runtime.jar", moddep.Dependency{Name: "host-runtime", Version: "3.0"})
)

func set(artifacts ...moddep.ResolvedArtifact) *moddep.ArtifactSet {
	return moddep.NewArtifactSet(artifacts...)
}

func plan(t *testing.T, in PartitionInput, host *moddep.ArtifactSet) *Plan {
	t.Helper()
	p, err := BuildPlan(Deduplicate(NewPartition(in), host))
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	return p
}

func TestScenario_SingleModPrivateDependency(t *testing.T) {
	t.Parallel()

	// A:1.0 -> libX (implementation scope, so not in the API view)
	p := plan(t, PartitionInput{
		TopLevel:        set(aJar),
		SharedClasspath: set(aJar),
		Private:         map[moddep.Dependency]*moddep.ArtifactSet{modA: set(aJar, libX)},
		Mods:            []moddep.Dependency{modA},
	}, nil)

	if got, want := p.Targets(), []string{"A-1.0/A.jar", "A-1.0/libX.jar"}; !slices.Equal(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
	if len(p.Shared()) != 0 {
		t.Errorf("nothing should be at the output root, got %v", p.Shared())
	}
}

func TestScenario_CommonDependencyIsShared(t *testing.T) {
	t.Parallel()

	// B:2.0 exports libX through an api edge, so libX is in the API view.
	p := plan(t, PartitionInput{
		TopLevel:        set(aJar, bJar),
		SharedClasspath: set(aJar, bJar, libX),
		Private: map[moddep.Dependency]*moddep.ArtifactSet{
			modA: set(aJar, libX),
			modB: set(bJar, libX, libY),
		},
		Mods: []moddep.Dependency{modA, modB},
	}, nil)

	want := []string{"A-1.0/A.jar", "B-2.0/B.jar", "B-2.0/libY.jar", "libX.jar"}
	if got := p.Targets(); !slices.Equal(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
}

func TestScenario_PrivateDependenciesStayIsolated(t *testing.T) {
	t.Parallel()

	modC := moddep.Dependency{Name: "C", Version: "1.0"}
	cJar := artifact("/repo/C/1.0/C.jar", modC)
	libX2 := artifact("/repo/libX/2.0/libX.jar", moddep.Dependency{Name: "libX", Version: "2.0"})

	// B and C both use libX 2.0 privately; A uses libX 1.0 privately. Sharing
	// libX 2.0 would put it on A's classpath next to A's own libX.
	p := plan(t, PartitionInput{
		TopLevel:        set(aJar, bJar, cJar),
		SharedClasspath: set(aJar, bJar, cJar),
		Private: map[moddep.Dependency]*moddep.ArtifactSet{
			modA: set(aJar, libX),
			modB: set(bJar, libX2),
			modC: set(cJar, libX2),
		},
		Mods: []moddep.Dependency{modA, modB, modC},
	}, nil)

	want := []string{"A-1.0/A.jar", "A-1.0/libX.jar", "B-2.0/B.jar", "B-2.0/libX.jar", "C-1.0/C.jar", "C-1.0/libX.jar"}
	if got := p.Targets(); !slices.Equal(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
	if shared := p.Shared(); len(shared) != 0 {
		t.Errorf("Shared() = %v, want nothing at the root", shared)
	}
}

func TestScenario_APIDependencyIsShared(t *testing.T) {
	t.Parallel()

	p := plan(t, PartitionInput{
		TopLevel:        set(aJar),
		SharedClasspath: set(aJar, apiLib),
		Private:         map[moddep.Dependency]*moddep.ArtifactSet{modA: set(aJar, apiLib, libX)},
		Mods:            []moddep.Dependency{modA},
	}, nil)

	want := []string{"A-1.0/A.jar", "A-1.0/libX.jar", "api.jar"}
	if got := p.Targets(); !slices.Equal(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
}

func TestScenario_UnspecifiedVersionFolder(t *testing.T) {
	t.Parallel()

	p := plan(t, PartitionInput{
		TopLevel:        set(localJar),
		SharedClasspath: set(localJar),
		Private:         map[moddep.Dependency]*moddep.ArtifactSet{localMod: set(localJar)},
		Mods:            []moddep.Dependency{localMod},
	}, nil)

	if got, want := p.Targets(), []string{"local-mod/local-mod.jar"}; !slices.Equal(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
	if got := p.Folders(); !slices.Equal(got, []string{"local-mod"}) {
		t.Errorf("Folders() = %v", got)
	}
}

func TestSharedPrivateDisjoint(t *testing.T) {
	t.Parallel()

	inputs := []PartitionInput{
		{
			TopLevel:        set(aJar, bJar),
			SharedClasspath: set(aJar, bJar, apiLib, libX),
			Private: map[moddep.Dependency]*moddep.ArtifactSet{
				modA: set(aJar, apiLib, libX, libY),
				modB: set(bJar, libX),
			},
			Mods: []moddep.Dependency{modA, modB},
		},
		{
			TopLevel:        set(aJar, bJar, localJar),
			SharedClasspath: set(aJar, bJar, localJar),
			Private: map[moddep.Dependency]*moddep.ArtifactSet{
				modA:     set(aJar, libY),
				modB:     set(bJar, libY, libX),
				localMod: set(localJar, libX, bJar),
			},
			Mods: []moddep.Dependency{modA, modB, localMod},
		},
	}

	for i, in := range inputs {
		p := Deduplicate(NewPartition(in), set(hostJar))
		for _, m := range p.Mods {
			for _, a := range p.Private[m].Artifacts() {
				if p.Shared.Contains(a.FileKey()) {
					t.Errorf("input %d: %s is both shared and private to %s", i, a.File, m)
				}
			}
		}
		for _, a := range p.Shared.Artifacts() {
			if in.TopLevel.Contains(a.FileKey()) {
				t.Errorf("input %d: top-level artifact %s was shared", i, a.File)
			}
		}
	}
}

func TestDeduplicate(t *testing.T) {
	t.Parallel()

	in := PartitionInput{
		TopLevel:        set(aJar, bJar),
		SharedClasspath: set(aJar, bJar, apiLib, hostJar),
		Private: map[moddep.Dependency]*moddep.ArtifactSet{
			modA: set(aJar, apiLib, hostJar, libX),
			modB: set(bJar, hostJar, libY),
		},
		Mods: []moddep.Dependency{modA, modB},
	}
	// The host also ships libY under a different dependency path; identity is the file.
	hostLibY := artifact(libY.File, moddep.Dependency{Name: "renamed-libY", Version: "9"})

	original := NewPartition(in)
	deduped := Deduplicate(original, set(hostJar, hostLibY, apiLib))

	p, err := BuildPlan(deduped)
	if err != nil {
		t.Fatalf("BuildPlan() error = %v", err)
	}
	want := []string{"A-1.0/A.jar", "A-1.0/libX.jar", "B-2.0/B.jar"}
	if got := p.Targets(); !slices.Equal(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}

	for _, removed := range []moddep.ResolvedArtifact{hostJar, libY, apiLib} {
		if !deduped.HostProvided.Contains(removed.FileKey()) {
			t.Errorf("HostProvided should contain %s", removed.File)
		}
	}
	if !original.Shared.Contains(hostJar.FileKey()) {
		t.Error("Deduplicate must not modify its input")
	}
}

func TestDeduplicate_PrivateExcludesDecidedShared(t *testing.T) {
	t.Parallel()

	// A partition assembled by hand whose private set still overlaps the
	// shared set: the decided shared set is subtracted even when the host
	// later removes that artifact from the shared output.
	p := &Partition{
		Shared:  set(libX),
		Private: map[moddep.Dependency]*moddep.ArtifactSet{modA: set(aJar, libX)},
		Mods:    []moddep.Dependency{modA},
	}
	deduped := Deduplicate(p, set(libX))
	if deduped.Shared.Len() != 0 {
		t.Errorf("shared should be empty, got %v", deduped.Shared.Artifacts())
	}
	if deduped.Private[modA].Contains(libX.FileKey()) {
		t.Error("libX must not move into the private folder")
	}
}

func TestBuildPlan_Collisions(t *testing.T) {
	t.Parallel()

	otherLibX := artifact("/repo/libX/2.0/libX.jar", moddep.Dependency{Name: "libX", Version: "2.0"})
	folderNamed := artifact("/repo/odd/1/A-1.0", moddep.Dependency{Name: "odd", Version: "1"})
	sameFolder := moddep.Dependency{Name: "A-1.0", Version: moddep.Unspecified}

	tests := []struct {
		name       string
		partition  *Partition
		wantTarget string
		wantScope  Scope
	}{
		{
			name:       "two shared files with one name",
			partition:  &Partition{Shared: set(libX, otherLibX)},
			wantTarget: "libX.jar",
			wantScope:  ScopeShared,
		},
		{
			name: "two private files with one name",
			partition: &Partition{
				Private: map[moddep.Dependency]*moddep.ArtifactSet{modA: set(libX, otherLibX)},
				Mods:    []moddep.Dependency{modA},
			},
			wantTarget: "A-1.0/libX.jar",
			wantScope:  ScopePrivate,
		},
		{
			name: "shared file named like a mod folder",
			partition: &Partition{
				Shared:  set(folderNamed),
				Private: map[moddep.Dependency]*moddep.ArtifactSet{modA: set(aJar)},
				Mods:    []moddep.Dependency{modA},
			},
			wantTarget: "A-1.0",
			wantScope:  ScopeShared,
		},
		{
			name: "two mods with one folder name",
			partition: &Partition{
				Mods: []moddep.Dependency{modA, sameFolder},
			},
			wantTarget: "A-1.0",
			wantScope:  ScopePrivate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := BuildPlan(tt.partition)
			if !errors.Is(err, ErrLayoutCollision) {
				t.Fatalf("BuildPlan() error = %v, want ErrLayoutCollision", err)
			}
			var collision *CollisionError
			if !errors.As(err, &collision) {
				t.Fatalf("error should be a *CollisionError: %T", err)
			}
			if collision.Target != tt.wantTarget || collision.Scope != tt.wantScope {
				t.Errorf("collision = %+v, want target %q scope %q", collision, tt.wantTarget, tt.wantScope)
			}
			if collision.First == "" || collision.Second == "" {
				t.Errorf("collision should name both claimants: %+v", collision)
			}
		})
	}
}

func TestBuildPlan_SameFileInTwoFoldersIsAllowed(t *testing.T) {
	t.Parallel()

	// B depends on A directly: A's artifact stays in A's folder and B keeps
	// its own copy, since top-level artifacts are never promoted.
	p := plan(t, PartitionInput{
		TopLevel:        set(aJar, bJar),
		SharedClasspath: set(aJar, bJar),
		Private: map[moddep.Dependency]*moddep.ArtifactSet{
			modA: set(aJar),
			modB: set(bJar, aJar),
		},
		Mods: []moddep.Dependency{modA, modB},
	}, nil)

	want := []string{"A-1.0/A.jar", "B-2.0/A.jar", "B-2.0/B.jar"}
	if got := p.Targets(); !slices.Equal(got, want) {
		t.Errorf("Targets() = %v, want %v", got, want)
	}
	if got := p.Private(modB); len(got) != 2 || got[0].Owner == nil || *got[0].Owner != modB {
		t.Errorf("Private(B) = %+v", got)
	}
}

func TestNewPartition_DuplicateModsCollapse(t *testing.T) {
	t.Parallel()

	p := NewPartition(PartitionInput{
		TopLevel:        set(aJar),
		SharedClasspath: set(aJar),
		Private:         map[moddep.Dependency]*moddep.ArtifactSet{modA: set(aJar, libX)},
		Mods:            []moddep.Dependency{modA, modA},
	})
	if len(p.Mods) != 1 {
		t.Fatalf("Mods = %v, want one entry", p.Mods)
	}
	if p.Shared.Contains(libX.FileKey()) {
		t.Error("a mod declared twice must not share its own dependencies")
	}
}
