// Package semver parses and compares the version tokens relkit releases.
//
// Only the subset of semantic versioning the release gate needs is
// implemented: MAJOR.MINOR.PATCH with an optional prerelease suffix.
// Build metadata is not supported.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed version token.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
}

// Parse parses a version string like "1.2.3" or "1.2.3-rc.1".
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, fmt.Errorf("empty version")
	}

	core, pre, hasPre := strings.Cut(s, "-")

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := parseNumeric(p)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
	}

	v := Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}

	if hasPre {
		if err := validatePrerelease(pre); err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		v.Prerelease = pre
	}

	return v, nil
}

// parseNumeric parses a numeric version field, rejecting leading zeros.
func parseNumeric(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty numeric field")
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, fmt.Errorf("numeric field %q has a leading zero", s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("numeric field %q is not a non-negative integer", s)
	}
	return n, nil
}

// validatePrerelease validates a prerelease suffix like "rc.1" or "beta".
func validatePrerelease(pre string) error {
	if pre == "" {
		return fmt.Errorf("empty prerelease suffix")
	}
	for _, ident := range strings.Split(pre, ".") {
		if ident == "" {
			return fmt.Errorf("empty prerelease identifier")
		}
		for _, r := range ident {
			if !isIdentRune(r) {
				return fmt.Errorf("prerelease identifier %q contains %q", ident, r)
			}
		}
	}
	return nil
}

func isIdentRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r == '-':
		return true
	}
	return false
}

// String renders the version back to its canonical form.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// IsPrerelease reports whether the version carries a prerelease suffix.
func (v Version) IsPrerelease() bool {
	return v.Prerelease != ""
}

// Compare returns -1, 0, or +1 depending on whether a is less than, equal
// to, or greater than b. A version with a prerelease suffix sorts below the
// same version without one.
func Compare(a, b Version) int {
	if c := compareInt(a.Major, b.Major); c != 0 {
		return c
	}
	if c := compareInt(a.Minor, b.Minor); c != 0 {
		return c
	}
	if c := compareInt(a.Patch, b.Patch); c != 0 {
		return c
	}
	return comparePrerelease(a.Prerelease, b.Prerelease)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// comparePrerelease compares prerelease suffixes. An empty suffix (a full
// release) sorts above any prerelease.
func comparePrerelease(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}

	aIdents := strings.Split(a, ".")
	bIdents := strings.Split(b, ".")

	for i := 0; i < len(aIdents) && i < len(bIdents); i++ {
		if c := compareIdent(aIdents[i], bIdents[i]); c != 0 {
			return c
		}
	}

	// All shared identifiers equal: the longer suffix sorts higher.
	return compareInt(len(aIdents), len(bIdents))
}

// compareIdent compares two prerelease identifiers. Numeric identifiers
// compare numerically and sort below alphanumeric ones.
func compareIdent(a, b string) int {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)

	switch {
	case aerr == nil && berr == nil:
		return compareInt(an, bn)
	case aerr == nil:
		return -1
	case berr == nil:
		return 1
	}

	return strings.Compare(a, b)
}
