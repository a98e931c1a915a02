package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/shanehull/earningswatch/internal/analysis"
	"github.com/shanehull/earningswatch/internal/config"
	"github.com/shanehull/earningswatch/internal/irpage"
	"github.com/shanehull/earningswatch/internal/logging"
	"github.com/shanehull/earningswatch/internal/types"
)

var (
	tickerStr  = flag.String("ticker", "", "(-t) Ticker symbol used to name the output files")
	irURL      = flag.String("ir-url", "", "(-u) Investor relations page to scan for an earnings PDF")
	outDir     = flag.String("out", "", "(-o) Output directory (default: the data directory)")
	configPath = flag.String("config", "", "Path to a YAML config file")
	verbose    = flag.Bool("verbose", false, "(-v) Enable debug logging")
)

func init() {
	flag.StringVar(tickerStr, "t", "", "(-t) Ticker symbol (shorthand)")
	flag.StringVar(irURL, "u", "", "(-u) Investor relations page (shorthand)")
	flag.StringVar(outDir, "o", "", "(-o) Output directory (shorthand)")
	flag.BoolVar(verbose, "v", false, "(-v) Enable debug logging (shorthand)")

	flag.Usage = func() {
		flagSet := flag.CommandLine
		fmt.Printf("Usage of %s-scraper:\n", config.AppName)

		order := []string{
			"ticker",
			"ir-url",
			"out",
			"config",
			"verbose",
		}

		for _, name := range order {
			f := flagSet.Lookup(name)
			if f != nil {
				fmt.Printf("  -%s\n", f.Name)
				fmt.Printf("    %s\n", f.Usage)
			}
		}
	}
}

func main() {
	flag.Parse()

	ticker := types.NormalizeTicker(*tickerStr)
	if ticker == "" || *irURL == "" {
		fmt.Println("Error: a ticker and an IR URL are required.")
		fmt.Println("Usage: earningswatch-scraper -ticker AAPL -ir-url https://investor.apple.com/")
		os.Exit(1)
	}

	logger, err := logging.New(*verbose)
	if err != nil {
		fmt.Printf("Fatal error setting up logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Fatal error loading config: %v\n", err)
		os.Exit(1)
	}

	pdfDir, chartDir := cfg.PDFDir(), cfg.ChartDir()
	if *outDir != "" {
		pdfDir = filepath.Join(*outDir, "pdfs")
		chartDir = filepath.Join(*outDir, "charts")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	locator := irpage.NewLocator(irpage.Config{
		PDFDir:          pdfDir,
		UserAgent:       cfg.UserAgent,
		FetchTimeout:    cfg.FetchTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
	}, logger)

	fmt.Printf("Scanning %s for the latest %s earnings PDF...\n", *irURL, ticker)

	pdfPath, found, err := locator.DownloadLatest(ctx, ticker, *irURL)
	if err != nil {
		logger.Error("PDF download failed", zap.String("ticker", ticker), zap.Error(err))
		os.Exit(1)
	}
	if !found {
		fmt.Println("No earnings PDF link found on the page.")
		return
	}
	fmt.Printf("PDF saved to %s\n", pdfPath)

	result, ok, err := analysis.NewAnalyzer(chartDir, logger).Analyze(pdfPath, ticker)
	if err != nil {
		logger.Error("PDF analysis failed", zap.String("path", pdfPath), zap.Error(err))
		os.Exit(1)
	}
	if !ok {
		fmt.Println("No analyzable text in the PDF, no chart generated.")
		return
	}

	fmt.Printf("Chart saved to %s\n", result.ChartPath)
	for i, w := range result.Words {
		fmt.Printf("  %2d. %-20s %d\n", i+1, w.Word, w.Count)
	}
}
