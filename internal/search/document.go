// Package search provides full-text influencer search on a Bleve index, with
// keyword filters, numeric ranges and facet counts.
package search

import (
	"strings"

	"github.com/reachlyapp/reachly-server/internal/domain"
)

// Document is the indexed form of an influencer profile. Location and niche
// are flattened to plain strings so they can be matched exactly and faceted.
type Document struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Bio      string `json:"bio,omitempty"`
	Category string `json:"category,omitempty"`

	// Keyword fields, matched exactly.
	Country   string   `json:"country,omitempty"`
	State     string   `json:"state,omitempty"`
	City      string   `json:"city,omitempty"`
	Niche     string   `json:"niche,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Platforms []string `json:"platforms,omitempty"`

	Followers    int64   `json:"followers"`
	Engagement   float64 `json:"engagement"`
	Age          int     `json:"age,omitempty"`
	PricePerPost int64   `json:"price_per_post"`

	CreatedAt int64 `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":             d.ID,
		"slug":           d.Slug,
		"name":           d.Name,
		"followers":      d.Followers,
		"engagement":     d.Engagement,
		"price_per_post": d.PricePerPost,
		"created_at":     d.CreatedAt,
	}

	optional := map[string]string{
		"bio":      d.Bio,
		"category": d.Category,
		"country":  d.Country,
		"state":    d.State,
		"city":     d.City,
		"niche":    d.Niche,
		"gender":   d.Gender,
	}
	for field, v := range optional {
		if v != "" {
			m[field] = v
		}
	}
	if d.Niche != "" {
		m["niche_text"] = d.Niche
	}
	if loc := d.location(); loc != "" {
		m["location"] = loc
	}
	if len(d.Platforms) > 0 {
		m["platforms"] = d.Platforms
	}
	if d.Age > 0 {
		m["age"] = d.Age
	}
	return m
}

func (d *Document) location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{d.City, d.State, d.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// InfluencerToDocument converts a profile to its search document.
func InfluencerToDocument(inf *domain.Influencer) *Document {
	doc := &Document{
		ID:           inf.ID,
		Slug:         inf.Slug,
		Name:         inf.Name,
		Bio:          inf.Bio,
		Category:     inf.Category,
		Country:      inf.CountryName(),
		State:        inf.StateName(),
		City:         inf.CityName(),
		Niche:        inf.NicheName(),
		Gender:       inf.Gender,
		Followers:    inf.TotalFollowers(),
		Engagement:   inf.EngagementValue(),
		Age:          inf.AgeValue(),
		PricePerPost: inf.PricePerPost,
		CreatedAt:    inf.CreatedAt.UnixMilli(),
	}
	for _, p := range inf.ActivePlatforms() {
		doc.Platforms = append(doc.Platforms, string(p))
	}
	return doc
}
