package scraper

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fileLinkFallback matches links that plausibly point at sale documents
// when a row lacks the explicit tax-list-file class.
const fileLinkFallback = "a[href$='.pdf'], a[href*='sale'], a[href^='http'], a[href^='/']"

// headingPattern selects section headings that look like tax-sale entities
// when the page carries none of the explicit tax-list classes.
var headingPattern = regexp.MustCompile(`(?i)county|pct|sale|isd|sheriff`)

// ParseRows extracts raw tax-sale rows from rendered page HTML. Field names
// follow the source page's conventions verbatim. Hrefs are resolved against
// baseURL with fragments stripped, and exact duplicate rows are dropped.
// A page with no recognizable rows yields an empty slice, not an error.
func ParseRows(html, baseURL string) ([]RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	var rows []RawRecord
	titles := doc.Find("." + FieldEntityTitle)
	if titles.Length() > 0 {
		titles.Each(func(_ int, titleEl *goquery.Selection) {
			rows = append(rows, entityRows(titleEl)...)
		})
	} else {
		rows = headingRows(doc)
	}

	return cleanRows(rows, base), nil
}

// entityRows collects the file entries belonging to one explicit
// tax-list-entity-title element.
func entityRows(titleEl *goquery.Selection) []RawRecord {
	title := strings.TrimSpace(titleEl.Text())

	root := titleEl.Closest(".tax-list-entity")
	if root.Length() == 0 {
		root = titleEl.Parent()
	}

	// Select both the file containers and every anchor inside them: a cell
	// holding several documents yields one row per anchor. The container row
	// duplicates its first anchor and dedupe collapses it.
	var rows []RawRecord
	files := root.Find("." + FieldFileLabel + ", ." + FieldFileLabel + " a")
	if files.Length() == 0 {
		// No explicit file elements; fall back to plausible sale links
		// inside the same container.
		files = root.Find(fileLinkFallback)
	}
	files.Each(func(_ int, fileEl *goquery.Selection) {
		rows = append(rows, fileRow(title, fileEl))
	})
	return rows
}

// fileRow reads one file element into a RawRecord. The anchor inside the
// element (or the element itself when it is one) supplies label and href.
func fileRow(title string, fileEl *goquery.Selection) RawRecord {
	anchor := fileEl
	if !fileEl.Is("a") {
		anchor = fileEl.Find("a").First()
	}

	label := strings.TrimSpace(fileEl.Text())
	if anchor.Length() > 0 {
		label = strings.TrimSpace(anchor.Text())
	}

	row := RawRecord{}
	if title != "" {
		row[FieldEntityTitle] = title
	}
	if label != "" {
		row[FieldFileLabel] = label
	}
	if href, ok := anchor.Attr("href"); ok && href != "" {
		row[FieldFileHref] = href
	}
	return row
}

// headingRows is the robust fallback for pages lacking the tax-list classes
// entirely: scan section headings that look like entity titles and collect
// the links in their containers.
func headingRows(doc *goquery.Document) []RawRecord {
	var rows []RawRecord
	doc.Find("h1,h2,h3,strong,b,li").Each(func(_ int, heading *goquery.Selection) {
		title := strings.TrimSpace(heading.Text())
		if title == "" || !headingPattern.MatchString(title) {
			return
		}

		container := heading.Closest("li,section,div,ul,ol")
		if container.Length() == 0 {
			container = heading.Parent()
		}
		container.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
			href, _ := anchor.Attr("href")
			if href == "" || strings.HasPrefix(href, "#") {
				return
			}
			row := RawRecord{
				FieldEntityTitle: title,
				FieldFileHref:    href,
			}
			if label := strings.TrimSpace(anchor.Text()); label != "" {
				row[FieldFileLabel] = label
			}
			rows = append(rows, row)
		})
	})
	return rows
}

// cleanRows absolutizes hrefs against the page URL, strips fragments, and
// drops exact duplicates while preserving order.
func cleanRows(rows []RawRecord, base *url.URL) []RawRecord {
	cleaned := make([]RawRecord, 0, len(rows))
	seen := make(map[[3]string]struct{}, len(rows))
	for _, row := range rows {
		if href, ok := row[FieldFileHref]; ok {
			row[FieldFileHref] = absolutize(base, href)
		}
		key := [3]string{row[FieldEntityTitle], row[FieldFileLabel], row[FieldFileHref]}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, row)
	}
	return cleaned
}

func absolutize(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}
