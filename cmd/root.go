// Package cmd defines and implements the CLI commands for the taxsale
// scraper executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbfcm/taxsale-scraper/internal/config"
	"github.com/pbfcm/taxsale-scraper/internal/fetcher/headless"
	"github.com/pbfcm/taxsale-scraper/internal/fetcher/static"
	"github.com/pbfcm/taxsale-scraper/internal/logging"
	"github.com/pbfcm/taxsale-scraper/internal/scraper"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "taxsale-scraper",
		Short: "Scraper for the PBFCM tax-sale list",
		Long: `taxsale-scraper extracts the tax-sale entries published at
https://www.pbfcm.com/taxsale.html using a headless browser, and returns
them in raw and normalized form. It can run as an HTTP service (serve)
or as a one-shot extraction to TSV/CSV/NDJSON (scrape).`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScrapeCmd())
	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger shared by all commands.
func setup() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}

// buildScraper wires the configured fetch engine into a Scraper. headful
// shows the browser window; only the scrape command exposes it.
func buildScraper(cfg config.Config, logger *zap.Logger, headful bool) *scraper.Scraper {
	var fetcher scraper.Fetcher
	switch cfg.Scraper.Engine {
	case config.EngineStatic:
		fetcher = static.New(static.Config{
			UserAgent: cfg.Scraper.UserAgent,
			Timeout:   cfg.NavTimeout(),
		}, logger.Named("static"))
	default:
		fetcher = headless.New(headless.Config{
			UserAgent:         cfg.Scraper.UserAgent,
			NavigationTimeout: cfg.NavTimeout(),
			SettleDelay:       cfg.SettleDelay(),
			BlockResources:    cfg.Scraper.BlockResources,
			Headful:           headful,
		}, logger.Named("headless"))
	}
	return scraper.New(fetcher, cfg.Scraper.TargetURL, cfg.Scraper.TargetQPS, logger.Named("scraper"))
}
