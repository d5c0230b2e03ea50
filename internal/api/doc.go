// Package api hosts the HTTP server, middleware, and handlers for the
// scraper service. Routes:
//   - GET /pbfcm/health for liveness probes.
//   - GET /pbfcm/scrape to run a fresh scrape of the tax-sale list.
//   - GET /metrics for Prometheus scraping.
package api
