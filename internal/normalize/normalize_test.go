package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Amara Okafor", "amara-okafor"},
		{"Chloé Lin", "chloe-lin"},
		{"Food/Travel", "food-travel"},
		{"  --Diego   Ramos!! ", "diego-ramos"},
		{"ＦＵＬＬ width", "full-width"},
		{"日本語", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "hello world", Text("  hello \t\n world  "))
	assert.Equal(t, "nul", Text("n\x00ul"))
	assert.Equal(t, "", Text("   "))
}

func TestPlaceName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"lagos", "Lagos"},
		{"NEW  YORK", "New York"},
		{"McAllen", "McAllen"},
		{"  São Paulo ", "São Paulo"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, PlaceName(tt.input))
		})
	}
}

func TestEmailAndCurrency(t *testing.T) {
	assert.Equal(t, "amara@example.com", Email("  Amara@Example.COM "))
	assert.Equal(t, "USD", Currency(" usd"))
}

func TestBioMarkdown(t *testing.T) {
	t.Run("plain text is untouched", func(t *testing.T) {
		assert.Equal(t, "Food creator in Lagos.", BioMarkdown("  Food creator in Lagos.  "))
	})

	t.Run("markdown is untouched", func(t *testing.T) {
		assert.Equal(t, "**Bold** claim", BioMarkdown("**Bold** claim"))
	})

	t.Run("html becomes markdown", func(t *testing.T) {
		got := BioMarkdown("<p>Food creator in <strong>Lagos</strong>.</p>")
		assert.Equal(t, "Food creator in **Lagos**.", got)
	})

	t.Run("lists", func(t *testing.T) {
		got := BioMarkdown("<ul><li>Recipes</li><li>Reviews</li></ul>")
		assert.Contains(t, got, "Recipes")
		assert.Contains(t, got, "Reviews")
		assert.NotContains(t, got, "<li>")
	})
}

func TestContainsHTML(t *testing.T) {
	assert.True(t, ContainsHTML("<p>hi</p>"))
	assert.True(t, ContainsHTML("line<BR/>break"))
	assert.False(t, ContainsHTML("a < b and c > d"))
}
