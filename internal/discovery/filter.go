package discovery

import "strings"

// Filter returns the records that satisfy every active criterion, preserving
// input order. The result never aliases records when criteria are active.
func Filter(records []Record, c Criteria) []Record {
	return FilterBy(records, func(r Record) Record { return r }, c)
}

// FilterBy is Filter over any item that carries a Record, such as a stored
// profile. record extracts the filterable view of an item.
func FilterBy[T any](items []T, record func(T) Record, c Criteria) []T {
	if !c.Active() {
		return items
	}

	m := newMatcher(c)
	out := make([]T, 0, len(items))
	for _, item := range items {
		if m.match(record(item)) {
			out = append(out, item)
		}
	}
	return out
}

// Match reports whether a single record satisfies c.
func Match(r Record, c Criteria) bool {
	return newMatcher(c).match(r)
}

// matcher holds the criteria with the search term folded once per scan.
type matcher struct {
	c    Criteria
	term string
}

func newMatcher(c Criteria) matcher {
	return matcher{c: c, term: strings.ToLower(strings.TrimSpace(c.Search))}
}

func (m matcher) match(r Record) bool {
	c := m.c

	if m.term != "" &&
		!strings.Contains(strings.ToLower(r.Name), m.term) &&
		!strings.Contains(strings.ToLower(r.Category), m.term) {
		return false
	}

	if !exact(c.Country, r.Country != nil, r.CountryName()) ||
		!exact(c.State, r.State != nil, r.StateName()) ||
		!exact(c.City, r.City != nil, r.CityName()) ||
		!exact(c.Niche, r.Niche != nil, r.NicheName()) {
		return false
	}

	if c.ContentType != "" && r.Category != c.ContentType {
		return false
	}
	if c.Gender != "" && r.Gender != c.Gender {
		return false
	}
	if c.AgeBracket != "" && !c.AgeBracket.Contains(r.AgeValue()) {
		return false
	}

	if c.Engagement != nil && !c.Engagement.Contains(r.EngagementValue()) {
		return false
	}

	if c.followersActive() {
		total := float64(r.TotalFollowers())
		if total < c.Followers.Min {
			return false
		}
		if c.Followers.Max < FollowerCeiling && total > c.Followers.Max {
			return false
		}
	}

	if len(c.Platforms) > 0 && !anyPlatform(r, c.Platforms) {
		return false
	}

	return true
}

// exact passes when want is empty, otherwise requires a present field with an equal name.
func exact(want string, present bool, got string) bool {
	if want == "" {
		return true
	}
	return present && got == want
}

func anyPlatform(r Record, platforms []Platform) bool {
	for _, p := range platforms {
		if r.FollowersOn(p) > 0 {
			return true
		}
	}
	return false
}

// Paginate returns items[offset:offset+limit] clamped to the slice bounds.
// A non-positive limit returns everything from offset.
func Paginate[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return items[offset:end]
}
