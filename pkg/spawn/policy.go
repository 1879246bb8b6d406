package spawn

import (
	"strings"

	"github.com/ajitpratap0/respawn/pkg/errors"
)

// Policy decides which point a selector picks.
type Policy int

const (
	// Manual means the caller chooses the point; selectors refuse it.
	Manual Policy = iota
	// Farthest picks the point farthest from the reference.
	Farthest
	// Closest picks the nearest point that is still outside its safe distance.
	Closest
	// Random picks uniformly among eligible points.
	Random
)

var policyNames = [...]string{
	Manual:   "manual",
	Farthest: "farthest",
	Closest:  "closest",
	Random:   "random",
}

func (p Policy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return "unknown"
	}
	return policyNames[p]
}

// ParsePolicy parses a policy name, case-insensitively.
func ParsePolicy(s string) (Policy, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range policyNames {
		if n == name {
			return Policy(i), nil
		}
	}
	return Manual, errors.Newf(errors.ErrorTypeValidation, "unknown spawn policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(policyNames) {
		return nil, errors.Newf(errors.ErrorTypeValidation, "unknown spawn policy %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	v, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
