// Command analyze runs one technical analysis and prints it.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"StockSentinel/internal/collector"
	"StockSentinel/internal/logger"
	"StockSentinel/internal/model"
)

type options struct {
	csvDir  string
	days    int
	asJSON  bool
	mock    bool
	baseURL string
	proxy   string
	timeout time.Duration
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "analyze <TICKER>",
		Short: "Technical analysis of one ticker from daily bars",
		Long: `Fetches daily OHLCV bars for a ticker and prints the full analysis:
price statistics, indicators, trend, momentum, prediction and the recommendation.

Bars come from Yahoo Finance by default, or from <DIR>/<TICKER>.csv with --csv.`,
		Example:       "  analyze BBCA.JK\n  analyze AAPL --days 500 --json\n  analyze TLKM.JK --csv data/csv",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.csvDir, "csv", "", "read bars from <DIR>/<TICKER>.csv instead of Yahoo")
	f.IntVar(&opts.days, "days", 365, "lookback in calendar days")
	f.BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	f.BoolVar(&opts.mock, "mock", false, "use generated bars")
	f.StringVar(&opts.baseURL, "base-url", "", "override the Yahoo chart endpoint")
	f.StringVar(&opts.proxy, "proxy", os.Getenv("HTTPS_PROXY"), "HTTP proxy for Yahoo requests")
	f.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall deadline")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log fetch progress to stderr")
	return cmd
}

func newFetcher(opts *options) collector.Fetcher {
	switch {
	case opts.mock:
		return &collector.MockFetcher{}
	case opts.csvDir != "":
		return collector.NewCSVFetcher(opts.csvDir)
	default:
		return collector.NewYahooFetcher(opts.baseURL, opts.proxy)
	}
}

func run(ctx context.Context, out io.Writer, ticker string, opts *options) error {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	if err := logger.Init(logger.Config{Level: level, Format: "pretty", ServiceName: "analyze"}); err != nil {
		return err
	}
	if opts.days < collector.MinFetchBars {
		return fmt.Errorf("%w: --days must be at least %d", model.ErrInvalidArgument, collector.MinFetchBars)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	col := collector.NewCollector(newFetcher(opts), opts.days, 2)
	bundle, err := col.Analyze(ctx, ticker)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	}
	render(out, bundle)
	return nil
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		// Failures are reported as the same error record the HTTP API answers with.
		enc := json.NewEncoder(os.Stderr)
		_ = enc.Encode(model.NewErrorResult(err))
		os.Exit(1)
	}
}
