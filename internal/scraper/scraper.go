package scraper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fetcher retrieves the rendered HTML of a page. Implementations live in
// internal/fetcher; the headless one drives a browser, the static one a
// plain HTTP client.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close()
}

// Scraper runs the full pipeline: fetch the target page, parse raw rows,
// normalize them.
type Scraper struct {
	fetcher   Fetcher
	targetURL string
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// New builds a Scraper. targetQPS bounds how often the target site is hit;
// zero or negative disables the limiter.
func New(fetcher Fetcher, targetURL string, targetQPS float64, logger *zap.Logger) *Scraper {
	var limiter *rate.Limiter
	if targetQPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(targetQPS), 1)
	}
	return &Scraper{
		fetcher:   fetcher,
		targetURL: targetURL,
		limiter:   limiter,
		logger:    logger,
	}
}

// Scrape fetches the target page and returns raw and normalized rows,
// index-aligned. A page with zero rows is a valid result; any fetch or
// parse failure fails the whole scrape with no partial data.
func (s *Scraper) Scrape(ctx context.Context) (Result, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("wait target rate limit: %w", err)
		}
	}

	start := time.Now()
	html, err := s.fetcher.Fetch(ctx, s.targetURL)
	if err != nil {
		return Result{}, fmt.Errorf("fetch page: %w", err)
	}

	rows, err := ParseRows(html, s.targetURL)
	if err != nil {
		return Result{}, fmt.Errorf("extract rows: %w", err)
	}

	s.logger.Info("scrape completed",
		zap.String("url", s.targetURL),
		zap.Int("rows", len(rows)),
		zap.Duration("duration", time.Since(start)),
	)

	return Result{
		SourceURL:  s.targetURL,
		Count:      len(rows),
		Raw:        rows,
		Normalized: Normalize(rows),
	}, nil
}

// Close releases the underlying fetcher.
func (s *Scraper) Close() {
	s.fetcher.Close()
}
