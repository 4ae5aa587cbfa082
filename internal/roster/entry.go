// Package roster reads influencer roster files and watches an inbox
// directory for new ones.
//
// A roster is a YAML or JSON list of profiles:
//
//	- name: Ada Lagos
//	  category: Lifestyle
//	  country: {name: Nigeria}
//	  niche: {name: Fashion}
//	  engagement_rate: 4.2
//	  data:
//	    instagram: {total_followers: 120000}
//	  price_per_post: 25000
//	  bio_html: "<p>Lagos based <b>stylist</b></p>"
//	  avatar_url: https://cdn.example.com/ada.jpg
//
// YAML files may also wrap the list in an "influencers" key.
package roster

import (
	"bytes"
	"encoding/json/v2"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	domainerrors "github.com/reachlyapp/reachly-server/internal/errors"
)

// Format is a roster file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Extensions are the file extensions recognised as rosters.
var Extensions = []string{".yaml", ".yml", ".json"}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported roster file %q: want .yaml, .yml or .json", filepath.Base(path))
}

// Entry is one influencer in a roster file. Slug defaults to the slugified
// name; BioHTML, when set, wins over Bio and is converted to markdown.
type Entry struct {
	discovery.Record `json:",inline" yaml:",inline"`

	Slug         string `json:"slug,omitempty" yaml:"slug,omitempty"`
	Bio          string `json:"bio,omitempty" yaml:"bio,omitempty"`
	BioHTML      string `json:"bio_html,omitempty" yaml:"bio_html,omitempty"`
	PricePerPost int64  `json:"price_per_post,omitempty" yaml:"price_per_post,omitempty"`
	Currency     string `json:"currency,omitempty" yaml:"currency,omitempty"`
	AvatarURL    string `json:"avatar_url,omitempty" yaml:"avatar_url,omitempty"`
	// OwnerEmail links the profile to an existing influencer account.
	OwnerEmail string `json:"owner_email,omitempty" yaml:"owner_email,omitempty"`
}

// Validate checks one entry in isolation.
func (e *Entry) Validate() error {
	details := make(map[string]string)

	if strings.TrimSpace(e.Name) == "" {
		details["name"] = "is required"
	}
	if e.PricePerPost < 0 {
		details["price_per_post"] = "must not be negative"
	}
	if e.Age != nil && *e.Age < 0 {
		details["age"] = "must not be negative"
	}
	if e.EngagementRate != nil && (*e.EngagementRate < 0 || *e.EngagementRate > 100) {
		details["engagement_rate"] = "must be between 0 and 100"
	}
	for p, stats := range e.Data {
		if !p.Valid() {
			details["data"] = fmt.Sprintf("unknown platform %q", p)
			break
		}
		if stats != nil && stats.TotalFollowers < 0 {
			details["data"] = fmt.Sprintf("%s followers must not be negative", p)
			break
		}
	}
	if e.AvatarURL != "" && !strings.HasPrefix(e.AvatarURL, "http://") && !strings.HasPrefix(e.AvatarURL, "https://") {
		details["avatar_url"] = "must be an http or https URL"
	}

	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("invalid roster entry", details)
	}
	return nil
}

type yamlDocument struct {
	Influencers []Entry `yaml:"influencers"`
}

// Decode reads a roster in the given format.
func Decode(r io.Reader, format Format) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var entries []Entry
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &entries, json.RejectUnknownMembers(true)); err != nil {
			return nil, fmt.Errorf("decode json roster: %w", err)
		}
	case FormatYAML:
		entries, err = decodeYAML(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown roster format %q", format)
	}
	return entries, nil
}

func decodeYAML(data []byte) ([]Entry, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode yaml roster: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if node.Content[0].Kind == yaml.MappingNode {
		var doc yamlDocument
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode yaml roster: %w", err)
		}
		return doc.Influencers, nil
	}

	var entries []Entry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode yaml roster: %w", err)
	}
	return entries, nil
}

// DecodeFile reads the roster at path, choosing the format by extension.
func DecodeFile(path string) ([]Entry, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return Decode(f, format)
}
