package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pbfcm/taxsale-scraper/internal/scraper"
)

func TestWriteRawTSV(t *testing.T) {
	t.Parallel()

	rows := []scraper.RawRecord{
		{
			scraper.FieldEntityTitle: "HARRIS COUNTY",
			scraper.FieldFileLabel:   "Sale\tNotice",
			scraper.FieldFileHref:    "https://www.pbfcm.com/harris.pdf",
		},
		{
			scraper.FieldEntityTitle: "DALLAS ISD",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeRawTSV(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, strings.Join(rawHeaders, "\t"), lines[0])
	// Tabs inside a value must not break the column layout.
	require.Equal(t, "HARRIS COUNTY\tSale Notice\thttps://www.pbfcm.com/harris.pdf", lines[1])
	require.Equal(t, "DALLAS ISD\t\t", lines[2])
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	rows := []scraper.NormalizedRecord{
		{
			EntityTitle: "HARRIS COUNTY",
			FileLabel:   "Sale, Notice",
			FileURL:     "https://www.pbfcm.com/harris.pdf",
			FileType:    "pdf",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCSV(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(csvFields, ","), lines[0])
	require.Equal(t, `HARRIS COUNTY,"Sale, Notice",https://www.pbfcm.com/harris.pdf,pdf`, lines[1])
}

func TestWriteNDJSON(t *testing.T) {
	t.Parallel()

	rows := []scraper.NormalizedRecord{
		{EntityTitle: "HARRIS COUNTY", FileType: "pdf"},
		{EntityTitle: "DALLAS ISD"},
	}

	var buf bytes.Buffer
	require.NoError(t, writeNDJSON(&buf, rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.JSONEq(t,
		`{"entity_title":"HARRIS COUNTY","file_label":"","file_url":"","file_type":"pdf"}`,
		lines[0])
	require.JSONEq(t,
		`{"entity_title":"DALLAS ISD","file_label":"","file_url":"","file_type":""}`,
		lines[1])
}

func TestTSVCell(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a b c", tsvCell(" a\tb\nc "))
	require.Equal(t, "", tsvCell("\t\n"))
}

func TestShorten(t *testing.T) {
	t.Parallel()

	require.Equal(t, "HARRIS COUNTY", shorten("  HARRIS   COUNTY ", 100))
	require.Equal(t, "HARR…", shorten("HARRIS COUNTY", 5))
	require.Equal(t, "", shorten("", 10))
}
