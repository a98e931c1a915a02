package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"github.com/shanehull/earningswatch/internal/analysis"
	"github.com/shanehull/earningswatch/internal/config"
	"github.com/shanehull/earningswatch/internal/desk"
	"github.com/shanehull/earningswatch/internal/earnings"
	"github.com/shanehull/earningswatch/internal/history"
	"github.com/shanehull/earningswatch/internal/irpage"
	"github.com/shanehull/earningswatch/internal/notify"
	"github.com/shanehull/earningswatch/internal/types"
	"github.com/shanehull/earningswatch/internal/watchlist"
)

type app struct {
	cfg    config.Config
	desk   *desk.Desk
	store  *watchlist.Store
	out    io.Writer
	logger *zap.Logger
}

func newApp(cfg config.Config, logger *zap.Logger) (*app, error) {
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	store, err := watchlist.Open(cfg.WatchlistPath(), logger)
	if err != nil {
		return nil, err
	}

	resolver := earnings.NewResolver(newSource(cfg), logger, earnings.WithTimeout(cfg.ResolveTimeout))
	locator := irpage.NewLocator(irpage.Config{
		PDFDir:          cfg.PDFDir(),
		UserAgent:       cfg.UserAgent,
		FetchTimeout:    cfg.FetchTimeout,
		DownloadTimeout: cfg.DownloadTimeout,
	}, logger)
	analyzer := analysis.NewAnalyzer(cfg.ChartDir(), logger)

	return &app{
		cfg:    cfg,
		desk:   desk.New(store, resolver, locator, analyzer, logger),
		store:  store,
		out:    os.Stdout,
		logger: logger,
	}, nil
}

func newSource(cfg config.Config) earnings.Source {
	if cfg.Provider == config.ProviderFMP {
		return earnings.NewFMPSource(earnings.FMPConfig{APIKey: cfg.FMPKey, UserAgent: cfg.UserAgent})
	}
	return earnings.NewYahooSource(earnings.YahooConfig{UserAgent: cfg.UserAgent})
}

func (a *app) run(ctx context.Context, name string, args []string) error {
	switch name {
	case "add":
		return a.add(ctx, args)
	case "refresh":
		return a.refresh(ctx, args)
	case "list":
		return a.list(args)
	case "day":
		return a.day(args)
	case "pdf":
		return a.pdf(ctx, args)
	case "watch":
		return a.watch(ctx, args)
	}
	return fmt.Errorf("unknown command %q (commands: %s)", name, commandNames())
}

// tickerArg returns the -ticker flag value, or the first positional argument.
func tickerArg(fs *flag.FlagSet, ticker string) string {
	if ticker == "" {
		ticker = fs.Arg(0)
	}
	return types.NormalizeTicker(ticker)
}

func (a *app) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	ticker := fs.String("ticker", "", "(-t) Ticker symbol, e.g. AAPL")
	irURL := fs.String("ir-url", "", "(-u) Investor relations page URL")
	fs.StringVar(ticker, "t", "", "(-t) Ticker symbol (shorthand)")
	fs.StringVar(irURL, "u", "", "(-u) Investor relations page URL (shorthand)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	symbol := tickerArg(fs, *ticker)
	if symbol == "" {
		return errors.New("a ticker is required: add -ticker AAPL [-ir-url URL]")
	}

	item, err := a.desk.Add(ctx, symbol, strings.TrimSpace(*irURL))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Added %s (%s): earnings %s, %s\n", item.Ticker, item.CompanyName, item.EarningsDate, item.MarketSession)
	return nil
}

func (a *app) refresh(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	ticker := fs.String("ticker", "", "(-t) Refresh only this ticker")
	fs.StringVar(ticker, "t", "", "(-t) Refresh only this ticker (shorthand)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if symbol := tickerArg(fs, *ticker); symbol != "" {
		item, err := a.desk.Refresh(ctx, symbol)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Refreshed %s: earnings %s, %s\n", item.Ticker, item.EarningsDate, item.MarketSession)
		return nil
	}

	fmt.Fprintf(a.out, "Refreshed %d tickers\n", a.desk.RefreshAll(ctx))
	return nil
}

func (a *app) list(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "Print the watchlist as JSON")
	color := fs.Bool("color", false, "Colorize JSON output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items := a.desk.Items()
	if *asJSON {
		return writeJSON(a.out, items, *color)
	}

	if len(items) == 0 {
		fmt.Fprintf(a.out, "The watchlist at %s is empty. Add a ticker with: add -ticker AAPL\n", a.store.Path())
		return nil
	}
	return writeTable(a.out, items)
}

func (a *app) day(args []string) error {
	fs := flag.NewFlagSet("day", flag.ContinueOnError)
	date := fs.String("date", "", "(-d) Day to show as YYYY-MM-DD (default: today)")
	fs.StringVar(date, "d", "", "(-d) Day to show (shorthand)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	day := time.Now()
	if *date != "" {
		parsed, err := time.ParseInLocation(types.DateLayout, *date, time.Local)
		if err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", *date, err)
		}
		day = parsed
	}

	items := a.desk.OnDate(day)
	label := day.Format(types.DateLayout)
	if len(items) == 0 {
		fmt.Fprintf(a.out, "No tracked companies report on %s.\n", label)
		return nil
	}

	fmt.Fprintf(a.out, "Reporting on %s:\n", label)
	for _, item := range items {
		fmt.Fprintf(a.out, "  %-8s %-32s %s\n", item.Ticker, item.CompanyName, item.MarketSession)
	}
	return nil
}

func (a *app) pdf(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pdf", flag.ContinueOnError)
	ticker := fs.String("ticker", "", "(-t) Tracked ticker with an IR URL")
	fs.StringVar(ticker, "t", "", "(-t) Tracked ticker (shorthand)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	symbol := tickerArg(fs, *ticker)
	if symbol == "" {
		return errors.New("a ticker is required: pdf -ticker AAPL")
	}

	report, err := a.desk.DownloadAndAnalyze(ctx, symbol)
	if err != nil {
		return err
	}
	printPDFReport(a.out, symbol, report.Found, report.PDFPath, report.Chart, report.HasChart)
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	once := fs.Bool("once", false, "Check once and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ledger, err := history.NewManager(a.cfg.HistoryPath(), time.Local, a.logger)
	if err != nil {
		return err
	}

	notifiers := []notify.Notifier{notify.NewConsoleNotifier(a.out)}
	if a.cfg.Email.Enabled() {
		sender := notify.NewEmailSender(notify.EmailConfig{
			SMTPServer: a.cfg.Email.SMTPServer,
			SMTPPort:   a.cfg.Email.SMTPPort,
			SMTPUser:   a.cfg.Email.SMTPUser,
			SMTPPass:   a.cfg.Email.SMTPPass,
			FromEmail:  a.cfg.Email.FromEmail,
			ToEmail:    a.cfg.Email.ToEmail,
		}, a.logger)
		notifiers = append(notifiers, notify.NewEmailNotifier(notify.NewHTMLEmailRenderer(), sender, a.logger))
	}

	a.logger.Debug("Using notification history", zap.String("path", ledger.HistoryFilePath()))

	w := notify.NewWatcher(a.desk, ledger, a.cfg.NotifyInterval, a.logger, notifiers...)
	if *once {
		if w.RunOnce(ctx) == 0 {
			fmt.Fprintf(a.out, "Nothing new to announce for %s.\n", ledger.Today())
		}
		return nil
	}

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func writeJSON(out io.Writer, items []types.WatchItem, color bool) error {
	if items == nil {
		items = []types.WatchItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}
	data = pretty.Pretty(data)
	if color {
		data = pretty.Color(data, nil)
	}
	_, err = out.Write(data)
	return err
}

func writeTable(out io.Writer, items []types.WatchItem) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TICKER\tCOMPANY\tEARNINGS\tSESSION\tIR URL\tUPDATED")
	for _, item := range items {
		updated := "-"
		if item.UpdatedAt != nil {
			updated = *item.UpdatedAt
		}
		ir := item.IR()
		if ir == "" {
			ir = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", item.Ticker, item.CompanyName, item.EarningsDate, item.MarketSession, ir, updated)
	}
	return tw.Flush()
}

func printPDFReport(out io.Writer, ticker string, found bool, pdfPath string, chart analysis.Result, hasChart bool) {
	if !found {
		fmt.Fprintf(out, "No earnings PDF link found on the IR page for %s.\n", ticker)
		return
	}
	fmt.Fprintf(out, "PDF saved to %s\n", pdfPath)
	if !hasChart {
		fmt.Fprintln(out, "No analyzable text in the PDF, no chart generated.")
		return
	}
	fmt.Fprintf(out, "Chart saved to %s\n", chart.ChartPath)
	for i, w := range chart.Words {
		fmt.Fprintf(out, "  %2d. %-20s %d\n", i+1, w.Word, w.Count)
	}
}
