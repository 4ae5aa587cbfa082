package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for influencer documents.
//
// Free text (name, bio, category, niche) uses English stemming. Location and
// niche are also indexed as keywords so filters and facets see exact values.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields ---

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = en.AnalyzerName
	nameField.Store = true
	nameField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("name", nameField)

	// Bio is searchable but not stored; it can be long.
	bioField := bleve.NewTextFieldMapping()
	bioField.Analyzer = en.AnalyzerName
	bioField.Store = false
	docMapping.AddFieldMappingsAt("bio", bioField)

	categoryField := bleve.NewTextFieldMapping()
	categoryField.Analyzer = en.AnalyzerName
	categoryField.Store = true
	docMapping.AddFieldMappingsAt("category", categoryField)

	nicheTextField := bleve.NewTextFieldMapping()
	nicheTextField.Analyzer = en.AnalyzerName
	docMapping.AddFieldMappingsAt("niche_text", nicheTextField)

	// City, state and country joined; no stemming on place names.
	locationField := bleve.NewTextFieldMapping()
	locationField.Analyzer = simple.Name
	docMapping.AddFieldMappingsAt("location", locationField)

	// --- Keyword fields ---

	for _, name := range []string{"id", "slug", "country", "state", "city", "niche", "gender", "platforms"} {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = true
		docMapping.AddFieldMappingsAt(name, f)
	}

	// --- Numeric fields ---

	for _, name := range []string{"followers", "engagement", "age", "price_per_post", "created_at"} {
		f := bleve.NewNumericFieldMapping()
		f.Store = true
		docMapping.AddFieldMappingsAt(name, f)
	}

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
