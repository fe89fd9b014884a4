package save

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// VersionPolicy decides whether a save made by the engine version saved
// can be loaded by the engine version running.
// Implementations must be deterministic and must not panic.
type VersionPolicy interface {
	Compatible(saved, running string) bool
}

// VersionPolicyFunc adapts a function to VersionPolicy.
type VersionPolicyFunc func(saved, running string) bool

func (fn VersionPolicyFunc) Compatible(saved, running string) bool { return fn(saved, running) }

var (
	// ExactMatch accepts only the same version string.
	ExactMatch VersionPolicy = VersionPolicyFunc(func(saved, running string) bool {
		return saved == running
	})

	// SameMajor accepts semantic versions with the same major number.
	SameMajor VersionPolicy = VersionPolicyFunc(func(saved, running string) bool {
		return semverEqualBy(saved, running, semver.Major)
	})

	// SameMinor accepts semantic versions with the same major and minor number.
	SameMinor VersionPolicy = VersionPolicyFunc(func(saved, running string) bool {
		return semverEqualBy(saved, running, semver.MajorMinor)
	})

	// NotNewer accepts saves made by the same or older semantic version.
	NotNewer VersionPolicy = VersionPolicyFunc(func(saved, running string) bool {
		s, r := canonicalSemver(saved), canonicalSemver(running)
		if !semver.IsValid(s) || !semver.IsValid(r) {
			return false
		}
		return semver.Compare(s, r) <= 0
	})
)

// Check applies policy to the versions. The same version string is
// always compatible whatever policy is. nil policy means ExactMatch.
func Check(policy VersionPolicy, saved, running string) bool {
	if saved == running {
		return true
	}
	if policy == nil {
		return false
	}
	return policy.Compatible(saved, running)
}

// PolicyByName returns builtin VersionPolicy named by name.
// Known names are exact, major, minor and not-newer. Empty name is exact.
func PolicyByName(name string) (VersionPolicy, error) {
	switch name {
	case "", "exact":
		return ExactMatch, nil
	case "major":
		return SameMajor, nil
	case "minor":
		return SameMinor, nil
	case "not-newer":
		return NotNewer, nil
	default:
		return nil, fmt.Errorf("save: unknown version policy %q", name)
	}
}

func canonicalSemver(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func semverEqualBy(saved, running string, part func(string) string) bool {
	s, r := canonicalSemver(saved), canonicalSemver(running)
	if !semver.IsValid(s) || !semver.IsValid(r) {
		return false
	}
	return part(s) == part(r)
}
