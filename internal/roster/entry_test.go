package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlRoster = `
- name: Ada Lagos
  category: Lifestyle
  gender: female
  age: 27
  country: {name: Nigeria}
  city: {name: Lagos}
  niche: {name: Fashion}
  engagement_rate: 4.2
  data:
    instagram: {total_followers: 120000, handle: "@ada"}
    youtube: {total_followers: 3000}
  price_per_post: 25000
  bio_html: "<p>Lagos based <b>stylist</b></p>"
- name: Bo Chen
  category: Tech
`

func TestDecode_YAMLList(t *testing.T) {
	entries, err := Decode(strings.NewReader(yamlRoster), FormatYAML)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	ada := entries[0]
	assert.Equal(t, "Ada Lagos", ada.Name)
	assert.Equal(t, 27, ada.AgeValue())
	assert.Equal(t, "Nigeria", ada.CountryName())
	assert.Equal(t, "Fashion", ada.NicheName())
	assert.Equal(t, int64(123000), ada.TotalFollowers())
	assert.Equal(t, "@ada", ada.Data[discovery.Instagram].Handle)
	assert.Equal(t, int64(25000), ada.PricePerPost)
	assert.Contains(t, ada.BioHTML, "<b>stylist</b>")

	assert.Equal(t, "Tech", entries[1].Category)
	assert.Nil(t, entries[1].Age)
}

func TestDecode_YAMLWrapped(t *testing.T) {
	doc := "influencers:\n  - name: Cy\n    slug: cy-official\n"
	entries, err := Decode(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cy-official", entries[0].Slug)
}

func TestDecode_YAMLUnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("- name: Cy\n  followers: 10\n"), FormatYAML)
	assert.Error(t, err)
}

func TestDecode_YAMLEmpty(t *testing.T) {
	entries, err := Decode(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecode_JSON(t *testing.T) {
	doc := `[{"name":"Dee","country":{"name":"Kenya"},"data":{"twitter":{"total_followers":900}},"avatar_url":"https://cdn.test/dee.png"}]`
	entries, err := Decode(strings.NewReader(doc), FormatJSON)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Kenya", entries[0].CountryName())
	assert.Equal(t, int64(900), entries[0].FollowersOn(discovery.Twitter))
	assert.Equal(t, "https://cdn.test/dee.png", entries[0].AvatarURL)

	_, err = Decode(strings.NewReader(`[{"name":"Dee","bogus":1}]`), FormatJSON)
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	for path, want := range map[string]Format{
		"a.yaml": FormatYAML,
		"a.YML":  FormatYAML,
		"a.json": FormatJSON,
	} {
		got, err := FormatForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatForPath("a.csv")
	assert.Error(t, err)
}

func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlRoster), 0o644))

	entries, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestEntry_Validate(t *testing.T) {
	age := -1
	rate := 140.0

	tests := []struct {
		name  string
		entry Entry
		field string
	}{
		{"missing name", Entry{}, "name"},
		{"negative price", Entry{Record: discovery.Record{Name: "A"}, PricePerPost: -5}, "price_per_post"},
		{"negative age", Entry{Record: discovery.Record{Name: "A", Age: &age}}, "age"},
		{"engagement over 100", Entry{Record: discovery.Record{Name: "A", EngagementRate: &rate}}, "engagement_rate"},
		{"unknown platform", Entry{Record: discovery.Record{Name: "A", Data: map[discovery.Platform]*discovery.PlatformStats{"tiktok": {TotalFollowers: 1}}}}, "data"},
		{"bad avatar url", Entry{Record: discovery.Record{Name: "A"}, AvatarURL: "ftp://x"}, "avatar_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			require.Error(t, err)
			assert.Contains(t, detailsOf(t, err), tt.field)
		})
	}

	ok := Entry{Record: discovery.Record{Name: "A", Data: map[discovery.Platform]*discovery.PlatformStats{discovery.Instagram: nil}}}
	assert.NoError(t, ok.Validate())
}
