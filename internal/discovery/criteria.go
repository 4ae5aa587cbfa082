package discovery

import (
	"fmt"
	"math"
	"strings"

	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
)

// FollowerCeiling is the top of the follower slider. A follower range whose
// upper bound reaches it is open-ended.
const FollowerCeiling = 1_500_000

// AgeBracket is one of the fixed age buckets.
type AgeBracket string

const (
	Age18To25 AgeBracket = "18-25"
	Age26To35 AgeBracket = "26-35"
	Age36To45 AgeBracket = "36-45"
	Age46Plus AgeBracket = "46+"
)

// AgeBrackets lists every bracket in ascending order.
var AgeBrackets = []AgeBracket{Age18To25, Age26To35, Age36To45, Age46Plus}

var bracketBounds = map[AgeBracket][2]int{
	Age18To25: {18, 25},
	Age26To35: {26, 35},
	Age36To45: {36, 45},
	Age46Plus: {46, -1},
}

// ParseAgeBracket accepts the canonical form and the en-dash variant ("18–25").
func ParseAgeBracket(s string) (AgeBracket, error) {
	b := AgeBracket(strings.ReplaceAll(strings.TrimSpace(s), "–", "-"))
	if _, ok := bracketBounds[b]; !ok {
		return "", fmt.Errorf("unknown age bracket %q", s)
	}
	return b, nil
}

// Contains reports whether age falls in the bracket. Unknown brackets contain nothing.
func (b AgeBracket) Contains(age int) bool {
	bounds, ok := bracketBounds[b]
	if !ok || age < bounds[0] {
		return false
	}
	return bounds[1] < 0 || age <= bounds[1]
}

// BracketFor returns the bracket containing age, or "" for ages below 18.
func BracketFor(age int) AgeBracket {
	for _, b := range AgeBrackets {
		if b.Contains(age) {
			return b
		}
	}
	return ""
}

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether Min <= v <= Max.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// DefaultFollowerRange is the follower slider's full extent.
func DefaultFollowerRange() Range {
	return Range{Min: 0, Max: FollowerCeiling}
}

// Criteria is the set of independently controlled filter conditions.
// The zero value imposes no constraint.
type Criteria struct {
	// Search is matched case-insensitively against name and category substrings.
	Search string

	Country string
	State   string
	City    string
	Niche   string

	// ContentType is matched exactly against the record's category.
	ContentType string
	Gender      string
	AgeBracket  AgeBracket

	// Engagement bounds the engagement rate percentage. Nil means inactive.
	Engagement *Range
	// Followers bounds the follower total. Nil or the default range means inactive.
	Followers *Range

	// Platforms passes records with followers on any listed platform.
	Platforms []Platform
}

// Active reports whether any criterion constrains the result.
func (c Criteria) Active() bool {
	return strings.TrimSpace(c.Search) != "" ||
		c.Country != "" || c.State != "" || c.City != "" || c.Niche != "" ||
		c.ContentType != "" || c.Gender != "" || c.AgeBracket != "" ||
		c.Engagement != nil || c.followersActive() || len(c.Platforms) > 0
}

func (c Criteria) followersActive() bool {
	return c.Followers != nil && (c.Followers.Min > 0 || c.Followers.Max < FollowerCeiling)
}

// Validate rejects criteria a client could not have meant: unknown age
// brackets or platforms and inverted or negative ranges. Filter itself
// accepts anything.
func (c Criteria) Validate() error {
	details := make(map[string]string)

	if c.AgeBracket != "" {
		if _, ok := bracketBounds[c.AgeBracket]; !ok {
			details["age_bracket"] = "must be one of: 18-25 26-35 36-45 46+"
		}
	}
	for _, p := range c.Platforms {
		if !p.Valid() {
			details["platforms"] = fmt.Sprintf("unknown platform %q", p)
			break
		}
	}
	if msg := rangeProblem(c.Engagement); msg != "" {
		details["engagement"] = msg
	}
	if msg := rangeProblem(c.Followers); msg != "" {
		details["followers"] = msg
	}

	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("invalid discovery criteria", details)
	}
	return nil
}

func rangeProblem(r *Range) string {
	switch {
	case r == nil:
		return ""
	case !finite(r.Min) || !finite(r.Max):
		return "bounds must be finite numbers"
	case r.Min < 0:
		return "min must not be negative"
	case r.Max < r.Min:
		return "max must be greater than or equal to min"
	}
	return ""
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
