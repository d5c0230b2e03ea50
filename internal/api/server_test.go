package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pbfcm/taxsale-scraper/internal/config"
	"github.com/pbfcm/taxsale-scraper/internal/scraper"
)

type fakeScraper struct {
	result scraper.Result
	err    error
}

func (f *fakeScraper) Scrape(_ context.Context) (scraper.Result, error) {
	if f.err != nil {
		return scraper.Result{}, f.err
	}
	return f.result, nil
}

func newTestServer(scr Scraper) *Server {
	cfg := config.Config{
		Server:  config.ServerConfig{Port: 8000},
		Scraper: config.ScraperConfig{Engine: config.EngineHeadless},
	}
	return NewServer(scr, cfg, zap.NewNop())
}

func TestServer_Health_AlwaysOK(t *testing.T) {
	t.Parallel()

	// Health must not depend on the scraper or browser state.
	server := newTestServer(&fakeScraper{err: scraper.ErrBrowserLaunch})

	req := httptest.NewRequest(http.MethodGet, "/pbfcm/health", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_Scrape_ReturnsAlignedArrays(t *testing.T) {
	t.Parallel()

	raw := []scraper.RawRecord{
		{
			scraper.FieldEntityTitle: "HARRIS COUNTY",
			scraper.FieldFileLabel:   "Sale",
			scraper.FieldFileHref:    "https://www.pbfcm.com/harris.pdf",
		},
		{
			scraper.FieldEntityTitle: "DALLAS ISD",
		},
	}
	server := newTestServer(&fakeScraper{result: scraper.Result{
		SourceURL:  config.DefaultTargetURL,
		Count:      len(raw),
		Raw:        raw,
		Normalized: scraper.Normalize(raw),
	}})

	req := httptest.NewRequest(http.MethodGet, "/pbfcm/scrape", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		SourceURL  string                     `json:"source_url"`
		Count      int                        `json:"count"`
		Raw        []map[string]string        `json:"raw"`
		Normalized []scraper.NormalizedRecord `json:"normalized"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, config.DefaultTargetURL, payload.SourceURL)
	require.Equal(t, 2, payload.Count)
	require.Len(t, payload.Raw, 2)
	require.Len(t, payload.Normalized, 2)
	require.Equal(t, "HARRIS COUNTY", payload.Raw[0]["tax-list-entity-title"])
	require.Equal(t, "HARRIS COUNTY", payload.Normalized[0].EntityTitle)
	require.Equal(t, "pdf", payload.Normalized[0].FileType)
	require.Empty(t, payload.Normalized[1].FileURL)
}

func TestServer_Scrape_EmptyPageReturnsEmptyArrays(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeScraper{result: scraper.Result{
		SourceURL:  config.DefaultTargetURL,
		Raw:        []scraper.RawRecord{},
		Normalized: []scraper.NormalizedRecord{},
	}})

	req := httptest.NewRequest(http.MethodGet, "/pbfcm/scrape", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"raw":[]`)
	require.Contains(t, rec.Body.String(), `"normalized":[]`)
}

func TestServer_Scrape_GenericFailure(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeScraper{err: errors.New("fetch page: target unreachable")})

	req := httptest.NewRequest(http.MethodGet, "/pbfcm/scrape", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload["error"])
	require.Contains(t, payload["error"], "fetch page")
	require.NotContains(t, rec.Body.String(), `"raw"`)
}

func TestServer_Scrape_BrowserLaunchFailureIsBadGateway(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeScraper{
		err: scraper.ErrBrowserLaunch,
	})

	req := httptest.NewRequest(http.MethodGet, "/pbfcm/scrape", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServer_Scrape_ExtractionTimeoutIsGatewayTimeout(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeScraper{
		err: scraper.ErrExtractionTimeout,
	})

	req := httptest.NewRequest(http.MethodGet, "/pbfcm/scrape", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestServer_Metrics_Exposed(t *testing.T) {
	t.Parallel()

	server := newTestServer(&fakeScraper{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDMiddlewareSetsHeader(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pbfcm/health", nil)
	newTestServer(&fakeScraper{}).Handler().ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestScrapeStatusMapping(t *testing.T) {
	t.Parallel()

	require.Equal(t, http.StatusBadGateway, scrapeStatus(scraper.ErrBrowserLaunch))
	require.Equal(t, http.StatusGatewayTimeout, scrapeStatus(scraper.ErrExtractionTimeout))
	require.Equal(t, http.StatusInternalServerError, scrapeStatus(errors.New("boom")))
}
