package cmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pbfcm/taxsale-scraper/internal/config"
	"github.com/pbfcm/taxsale-scraper/internal/scraper"
)

// rawHeaders is the column order for raw TSV output, matching the
// source-page field names.
var rawHeaders = []string{
	scraper.FieldEntityTitle,
	scraper.FieldFileLabel,
	scraper.FieldFileHref,
}

// csvFields is the column order for normalized CSV output.
var csvFields = []string{"entity_title", "file_label", "file_url", "file_type"}

type scrapeOptions struct {
	outRawTSV  string
	rawStdout  bool
	outCSV     string
	ndjson     string
	noProgress bool
	noHeadless bool
	engine     string
}

// newScrapeCmd creates the 'scrape' subcommand: a one-shot extraction that
// streams raw and normalized rows to files or stdout.
func newScrapeCmd() *cobra.Command {
	opts := &scrapeOptions{}
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs one scrape and writes the rows",
		Long: `Scrapes the tax-sale list once and writes the results: raw rows
as TSV (source field names), normalized rows as CSV or NDJSON.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrapeCommand(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.outRawTSV, "out-raw-tsv", "", "write raw fields (TSV) to file")
	cmd.Flags().BoolVar(&opts.rawStdout, "raw-stdout", false, "stream raw TSV to stdout")
	cmd.Flags().StringVar(&opts.outCSV, "out-csv", "", "write normalized CSV to file")
	cmd.Flags().StringVar(&opts.ndjson, "ndjson", "", "write normalized NDJSON to file")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable progress lines")
	cmd.Flags().BoolVar(&opts.noHeadless, "no-headless", false, "show the browser window")
	cmd.Flags().StringVar(&opts.engine, "engine", "", "override scrape engine (headless|static)")

	return cmd
}

func runScrapeCommand(cmd *cobra.Command, opts *scrapeOptions) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if opts.engine != "" {
		if opts.engine != config.EngineHeadless && opts.engine != config.EngineStatic {
			return fmt.Errorf("unknown engine %q", opts.engine)
		}
		cfg.Scraper.Engine = opts.engine
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scr := buildScraper(cfg, logger, opts.noHeadless)
	defer scr.Close()

	result, err := scr.Scrape(ctx)
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}

	if !opts.noProgress {
		printProgress(result.Normalized)
	}

	if err := writeOutputs(result, opts); err != nil {
		return err
	}
	return nil
}

func printProgress(rows []scraper.NormalizedRecord) {
	for i, row := range rows {
		fmt.Fprintf(os.Stderr, "[%03d] %s  —  %s\n",
			i+1, shorten(row.EntityTitle, 100), shorten(row.FileLabel, 100))
	}
}

func writeOutputs(result scraper.Result, opts *scrapeOptions) error {
	if opts.outRawTSV != "" {
		f, err := os.Create(opts.outRawTSV)
		if err != nil {
			return fmt.Errorf("create raw tsv: %w", err)
		}
		defer f.Close()
		if err := writeRawTSV(f, result.Raw); err != nil {
			return err
		}
	} else if opts.rawStdout {
		if err := writeRawTSV(os.Stdout, result.Raw); err != nil {
			return err
		}
	}

	if opts.outCSV != "" {
		f, err := os.Create(opts.outCSV)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := writeCSV(f, result.Normalized); err != nil {
			return err
		}
	}

	if opts.ndjson != "" {
		f, err := os.Create(opts.ndjson)
		if err != nil {
			return fmt.Errorf("create ndjson: %w", err)
		}
		defer f.Close()
		if err := writeNDJSON(f, result.Normalized); err != nil {
			return err
		}
	}

	return nil
}

func writeRawTSV(w io.Writer, rows []scraper.RawRecord) error {
	if _, err := fmt.Fprintln(w, strings.Join(rawHeaders, "\t")); err != nil {
		return fmt.Errorf("write tsv header: %w", err)
	}
	for _, row := range rows {
		cells := make([]string, len(rawHeaders))
		for i, h := range rawHeaders {
			cells[i] = tsvCell(row[h])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("write tsv row: %w", err)
		}
	}
	return nil
}

func writeCSV(w io.Writer, rows []scraper.NormalizedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvFields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{row.EntityTitle, row.FileLabel, row.FileURL, row.FileType}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func writeNDJSON(w io.Writer, rows []scraper.NormalizedRecord) error {
	enc := json.NewEncoder(w)
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("write ndjson row: %w", err)
		}
	}
	return nil
}

// tsvCell flattens tabs and newlines so a value stays on one TSV row.
func tsvCell(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// shorten collapses whitespace and truncates for progress display.
func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
