package scraper

import (
	"net/url"
	"strings"
)

// Normalize reshapes raw rows into the fixed four-field schema. It is pure,
// order-preserving, and length-preserving; missing raw fields become empty
// strings rather than errors.
func Normalize(rows []RawRecord) []NormalizedRecord {
	normalized := make([]NormalizedRecord, 0, len(rows))
	for _, row := range rows {
		href := row[FieldFileHref]
		normalized = append(normalized, NormalizedRecord{
			EntityTitle: strings.TrimSpace(row[FieldEntityTitle]),
			FileLabel:   strings.TrimSpace(row[FieldFileLabel]),
			FileURL:     href,
			FileType:    FileType(href),
		})
	}
	return normalized
}

// FileType derives a coarse document type from the URL path suffix.
// Unknown or empty URLs yield an empty string.
func FileType(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)
	switch {
	case strings.HasSuffix(path, ".pdf"):
		return "pdf"
	case strings.HasSuffix(path, ".doc"), strings.HasSuffix(path, ".docx"):
		return "doc"
	case strings.HasSuffix(path, ".xls"), strings.HasSuffix(path, ".xlsx"):
		return "xls"
	default:
		return ""
	}
}
