// Package scraper contains the tax-sale list extraction pipeline: row
// parsing, normalization, and the Scraper service that ties a page fetcher
// to both.
package scraper

// Source-page field names, kept verbatim from the taxsale.html markup.
const (
	FieldEntityTitle = "tax-list-entity-title"
	FieldFileLabel   = "tax-list-file"
	FieldFileHref    = "tax-list-file href"
)

// RawRecord holds one extracted row keyed by source-page field names.
// The key set mirrors whatever the markup yields; absent fields are
// absent keys rather than empty values.
type RawRecord map[string]string

// NormalizedRecord is the fixed four-field reshaping of a RawRecord.
// Fields default to empty strings when the raw counterpart is missing.
type NormalizedRecord struct {
	EntityTitle string `json:"entity_title"`
	FileLabel   string `json:"file_label"`
	FileURL     string `json:"file_url"`
	FileType    string `json:"file_type"`
}

// Result is the payload of one scrape: the raw rows plus their normalized
// counterparts, index-aligned.
type Result struct {
	SourceURL  string             `json:"source_url"`
	Count      int                `json:"count"`
	Raw        []RawRecord        `json:"raw"`
	Normalized []NormalizedRecord `json:"normalized"`
}
