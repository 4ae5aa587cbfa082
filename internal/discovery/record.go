// Package discovery filters and summarizes influencer records for the
// discovery list. Everything here is pure: no I/O, no shared state.
//
// Records come from storage with any field possibly absent. Absent numbers
// compare as zero and absent nested objects never match an exact-match
// criterion; nothing in this package panics on a sparse record.
package discovery

import (
	"fmt"
	"strings"
)

// Platform identifies a social network an influencer publishes on.
type Platform string

const (
	Instagram Platform = "instagram"
	Facebook  Platform = "facebook"
	YouTube   Platform = "youtube"
	Twitter   Platform = "twitter"
)

// AllPlatforms lists the platforms counted towards an influencer's total reach.
var AllPlatforms = []Platform{Instagram, Facebook, YouTube, Twitter}

// Valid reports whether p is one of AllPlatforms.
func (p Platform) Valid() bool {
	switch p {
	case Instagram, Facebook, YouTube, Twitter:
		return true
	}
	return false
}

// ParsePlatform normalizes case and surrounding space.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// Place is a named location level (country, state or city).
type Place struct {
	Name string `json:"name" yaml:"name"`
}

// Niche is the influencer's content niche.
type Niche struct {
	Name string `json:"name" yaml:"name"`
}

// PlatformStats holds per-platform audience numbers.
type PlatformStats struct {
	TotalFollowers int64  `json:"total_followers" yaml:"total_followers"`
	Handle         string `json:"handle,omitempty" yaml:"handle,omitempty"`
}

// Record is an influencer as seen by the discovery filter.
type Record struct {
	ID             string                      `json:"id" yaml:"id"`
	Name           string                      `json:"name,omitempty" yaml:"name,omitempty"`
	Category       string                      `json:"category,omitempty" yaml:"category,omitempty"`
	Gender         string                      `json:"gender,omitempty" yaml:"gender,omitempty"`
	Age            *int                        `json:"age,omitempty" yaml:"age,omitempty"`
	Country        *Place                      `json:"country,omitempty" yaml:"country,omitempty"`
	State          *Place                      `json:"state,omitempty" yaml:"state,omitempty"`
	City           *Place                      `json:"city,omitempty" yaml:"city,omitempty"`
	Niche          *Niche                      `json:"niche,omitempty" yaml:"niche,omitempty"`
	EngagementRate *float64                    `json:"engagement_rate,omitempty" yaml:"engagement_rate,omitempty"`
	Data           map[Platform]*PlatformStats `json:"data,omitempty" yaml:"data,omitempty"`
}

// AgeValue returns the age, or 0 when absent.
func (r Record) AgeValue() int {
	if r.Age == nil {
		return 0
	}
	return *r.Age
}

// EngagementValue returns the engagement rate percentage, or 0 when absent.
func (r Record) EngagementValue() float64 {
	if r.EngagementRate == nil {
		return 0
	}
	return *r.EngagementRate
}

// FollowersOn returns the follower count on p, or 0 when absent.
func (r Record) FollowersOn(p Platform) int64 {
	stats := r.Data[p]
	if stats == nil {
		return 0
	}
	return stats.TotalFollowers
}

// TotalFollowers sums followers across AllPlatforms. Keys outside that set are ignored.
func (r Record) TotalFollowers() int64 {
	var total int64
	for _, p := range AllPlatforms {
		total += r.FollowersOn(p)
	}
	return total
}

// CountryName returns the country name or "" when absent.
func (r Record) CountryName() string { return placeName(r.Country) }

// StateName returns the state name or "" when absent.
func (r Record) StateName() string { return placeName(r.State) }

// CityName returns the city name or "" when absent.
func (r Record) CityName() string { return placeName(r.City) }

// NicheName returns the niche name or "" when absent.
func (r Record) NicheName() string {
	if r.Niche == nil {
		return ""
	}
	return r.Niche.Name
}

// ActivePlatforms returns the platforms with a nonzero follower count, in AllPlatforms order.
func (r Record) ActivePlatforms() []Platform {
	var out []Platform
	for _, p := range AllPlatforms {
		if r.FollowersOn(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

func placeName(p *Place) string {
	if p == nil {
		return ""
	}
	return p.Name
}
