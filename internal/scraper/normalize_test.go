package scraper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_MapsAllFields(t *testing.T) {
	t.Parallel()

	rows := []RawRecord{
		{
			FieldEntityTitle: "HARRIS COUNTY",
			FieldFileLabel:   "Sale Notice",
			FieldFileHref:    "https://www.pbfcm.com/harris_sale.pdf",
		},
	}

	normalized := Normalize(rows)

	require.Len(t, normalized, 1)
	require.Equal(t, NormalizedRecord{
		EntityTitle: "HARRIS COUNTY",
		FileLabel:   "Sale Notice",
		FileURL:     "https://www.pbfcm.com/harris_sale.pdf",
		FileType:    "pdf",
	}, normalized[0])
}

func TestNormalize_MissingFieldsBecomeEmptyStrings(t *testing.T) {
	t.Parallel()

	normalized := Normalize([]RawRecord{{FieldEntityTitle: "PCT 4"}})

	require.Len(t, normalized, 1)
	require.Equal(t, "PCT 4", normalized[0].EntityTitle)
	require.Empty(t, normalized[0].FileLabel)
	require.Empty(t, normalized[0].FileURL)
	require.Empty(t, normalized[0].FileType)
}

func TestNormalize_EmptyInputYieldsEmptyOutput(t *testing.T) {
	t.Parallel()

	normalized := Normalize(nil)
	require.NotNil(t, normalized)
	require.Empty(t, normalized)
}

func TestNormalize_PreservesLengthAndOrder(t *testing.T) {
	t.Parallel()

	rows := []RawRecord{
		{FieldEntityTitle: "A"},
		{FieldEntityTitle: "B"},
		{FieldEntityTitle: "C"},
	}

	normalized := Normalize(rows)

	require.Len(t, normalized, len(rows))
	for i, row := range rows {
		require.Equal(t, row[FieldEntityTitle], normalized[i].EntityTitle)
	}
}

func TestNormalize_TrimsTitleAndLabel(t *testing.T) {
	t.Parallel()

	normalized := Normalize([]RawRecord{{
		FieldEntityTitle: "  HARRIS COUNTY \n",
		FieldFileLabel:   "\tSale Notice ",
	}})

	require.Equal(t, "HARRIS COUNTY", normalized[0].EntityTitle)
	require.Equal(t, "Sale Notice", normalized[0].FileLabel)
}

func TestFileType(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                                       "",
		"https://www.pbfcm.com/sale.pdf":         "pdf",
		"https://www.pbfcm.com/SALE.PDF":         "pdf",
		"https://www.pbfcm.com/list.doc":         "doc",
		"https://www.pbfcm.com/list.docx":        "doc",
		"https://www.pbfcm.com/list.xls":         "xls",
		"https://www.pbfcm.com/list.xlsx":        "xls",
		"https://www.pbfcm.com/sale.html":        "",
		"https://www.pbfcm.com/sale.pdf?x=1":     "pdf",
		"https://www.pbfcm.com/taxsale/somedirs": "",
	}
	for rawURL, want := range cases {
		require.Equal(t, want, FileType(rawURL), "url %q", rawURL)
	}
}
