// SPDX-License-Identifier: MPL-2.0

package modrepo

import (
	"strings"

	"golang.org/x/mod/semver"

	"github.com/Brownshome/game-modding/pkg/moddep"
)

// CompareVersions orders two versions. It returns -1, 0 or +1.
//
// The unspecified version of a local project ranks above every published
// version, so an in-development project always replaces a published release
// of the same module. Versions that are both valid semantic versions (with or
// without the "v" prefix) compare by semver precedence; any other pair compares
// lexically.
func CompareVersions(a, b moddep.Version) int {
	aLocal, bLocal := a.IsUnspecified(), b.IsUnspecified()
	switch {
	case aLocal && bLocal:
		return 0
	case aLocal:
		return 1
	case bLocal:
		return -1
	}

	sa, sb := canonicalSemver(a), canonicalSemver(b)
	if semver.IsValid(sa) && semver.IsValid(sb) {
		if c := semver.Compare(sa, sb); c != 0 {
			return c
		}
		// Equal precedence ("1.0" and "1.0.0"); fall through for a stable order.
	}
	return strings.Compare(string(a), string(b))
}

func canonicalSemver(v moddep.Version) string {
	s := string(v)
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	return s
}
