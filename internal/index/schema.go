package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/ngram"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/searchr/internal/domain/search/query"
)

// Index field names.
const (
	FieldID      = "id"
	FieldTitle   = "title"
	FieldText    = "text"
	FieldCreated = "created"
	FieldUpdated = "updated"
	FieldTags    = "tags"
)

// Gram sizes of the text field analyzer.
const (
	NgramMin = 3
	NgramMax = 10
)

// Analyzer names registered in the index mapping.
const (
	// TextAnalyzer splits text into words, lowercases them and emits 3..10 grams.
	TextAnalyzer = "text_ngram"
	// WordAnalyzer is TextAnalyzer without the gram step; queries use it to
	// split input into words before gram expansion.
	WordAnalyzer = "text_word"

	ngramFilter = "ngram_3_10"
)

// QuerySchema describes the index fields to the query parser. Default field is text.
func QuerySchema() query.Schema {
	return query.Schema{
		Default: FieldText,
		Fields: map[string]query.Kind{
			FieldID:      query.Numeric,
			FieldTitle:   query.Text,
			FieldText:    query.Text,
			FieldCreated: query.Date,
			FieldUpdated: query.Date,
			FieldTags:    query.Keyword,
		},
	}
}

// NewMapping builds the document index mapping.
func NewMapping() (*mapping.IndexMappingImpl, error) {
	m := bleve.NewIndexMapping()

	err := m.AddCustomTokenFilter(ngramFilter, map[string]interface{}{
		"type": ngram.Name,
		"min":  float64(NgramMin),
		"max":  float64(NgramMax),
	})
	if err != nil {
		return nil, fmt.Errorf("add ngram filter: %w", err)
	}

	err = m.AddCustomAnalyzer(TextAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name, ngramFilter},
	})
	if err != nil {
		return nil, fmt.Errorf("add text analyzer: %w", err)
	}

	err = m.AddCustomAnalyzer(WordAnalyzer, map[string]interface{}{
		"type":          custom.Name,
		"tokenizer":     unicode.Name,
		"token_filters": []string{lowercase.Name},
	})
	if err != nil {
		return nil, fmt.Errorf("add word analyzer: %w", err)
	}

	doc := bleve.NewDocumentStaticMapping()

	idField := bleve.NewNumericFieldMapping()
	idField.Store = true
	idField.IncludeInAll = false
	doc.AddFieldMappingsAt(FieldID, idField)

	titleField := bleve.NewTextFieldMapping()
	titleField.Analyzer = standard.Name
	titleField.Store = true
	doc.AddFieldMappingsAt(FieldTitle, titleField)

	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = TextAnalyzer
	textField.Store = true
	textField.IncludeTermVectors = true
	doc.AddFieldMappingsAt(FieldText, textField)

	createdField := bleve.NewDateTimeFieldMapping()
	createdField.IncludeInAll = false
	doc.AddFieldMappingsAt(FieldCreated, createdField)

	updatedField := bleve.NewDateTimeFieldMapping()
	updatedField.IncludeInAll = false
	doc.AddFieldMappingsAt(FieldUpdated, updatedField)

	tagsField := bleve.NewTextFieldMapping()
	tagsField.Analyzer = keyword.Name
	tagsField.IncludeTermVectors = true
	tagsField.IncludeInAll = false
	doc.AddFieldMappingsAt(FieldTags, tagsField)

	m.DefaultMapping = doc
	m.DefaultAnalyzer = standard.Name
	m.DefaultField = FieldText
	m.IndexDynamic = false
	m.StoreDynamic = false
	m.DocValuesDynamic = false

	return m, nil
}
