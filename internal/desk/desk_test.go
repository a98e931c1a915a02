package desk

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/shanehull/earningswatch/internal/analysis"
	"github.com/shanehull/earningswatch/internal/earnings"
	"github.com/shanehull/earningswatch/internal/types"
	"github.com/shanehull/earningswatch/internal/watchlist"
)

var fixedNow = time.Date(2024, 10, 30, 8, 15, 0, 0, time.Local)

type fakeResolver struct {
	results map[string]types.Resolution
	calls   []string
}

func (f *fakeResolver) Resolve(_ context.Context, ticker string) (types.Resolution, error) {
	f.calls = append(f.calls, ticker)
	if r, ok := f.results[ticker]; ok {
		return r, nil
	}
	return types.Resolution{}, &earnings.ResolutionError{Ticker: ticker, Err: earnings.ErrUnknownTicker}
}

type fakeLocator struct {
	path  string
	found bool
	err   error
	irURL string
}

func (f *fakeLocator) DownloadLatest(_ context.Context, _ string, irURL string) (string, bool, error) {
	f.irURL = irURL
	return f.path, f.found, f.err
}

type fakeAnalyzer struct {
	result analysis.Result
	ok     bool
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(string, string) (analysis.Result, bool, error) {
	f.calls++
	return f.result, f.ok, f.err
}

func resolution(ticker, name, date string, session types.Session) types.Resolution {
	return types.Resolution{Ticker: ticker, CompanyName: name, EarningsDate: date, Session: session}
}

func newDesk(t *testing.T, r Resolver, l PDFLocator, a TextAnalyzer) (*Desk, *watchlist.Store) {
	t.Helper()
	store, err := watchlist.Open(filepath.Join(t.TempDir(), "watchlist.json"), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	return New(store, r, l, a, zaptest.NewLogger(t), WithClock(func() time.Time { return fixedNow })), store
}

func TestAddPersistsResolvedItem(t *testing.T) {
	r := &fakeResolver{results: map[string]types.Resolution{
		"AAPL": resolution("AAPL", "Apple Inc.", "2024-10-31", types.PostMarket),
	}}
	d, store := newDesk(t, r, &fakeLocator{}, &fakeAnalyzer{})

	item, err := d.Add(context.Background(), " aapl ", "https://investor.apple.com/")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if item.Ticker != "AAPL" || item.EarningsDate != "2024-10-31" || item.MarketSession != types.PostMarket {
		t.Errorf("unexpected item %+v", item)
	}
	if item.UpdatedAt == nil || *item.UpdatedAt != "2024-10-30 08:15:00" {
		t.Errorf("unexpected updated_at %v", item.UpdatedAt)
	}

	stored, ok := store.Get("AAPL")
	if !ok || stored.IR() != "https://investor.apple.com/" {
		t.Errorf("expected stored item with IR URL, got %+v", stored)
	}
}

func TestAddFailureStoresNothing(t *testing.T) {
	d, store := newDesk(t, &fakeResolver{}, &fakeLocator{}, &fakeAnalyzer{})

	_, err := d.Add(context.Background(), "ZZZZ", "")
	if !errors.Is(err, earnings.ErrResolutionFailed) {
		t.Fatalf("expected resolution failure, got %v", err)
	}
	if len(store.Items()) != 0 {
		t.Error("nothing should be stored on failure")
	}

	if _, err := d.Add(context.Background(), "   ", ""); !errors.Is(err, ErrEmptyTicker) {
		t.Errorf("expected ErrEmptyTicker, got %v", err)
	}
}

func TestRefreshAllContinuesPastFailures(t *testing.T) {
	r := &fakeResolver{results: map[string]types.Resolution{
		"AAPL": resolution("AAPL", "Apple Inc.", types.NoDate, types.SessionUnknown),
		"MSFT": resolution("MSFT", "Microsoft", types.NoDate, types.SessionUnknown),
		"NVDA": resolution("NVDA", "NVIDIA", types.NoDate, types.SessionUnknown),
	}}
	d, store := newDesk(t, r, &fakeLocator{}, &fakeAnalyzer{})
	ctx := context.Background()
	for _, tk := range []string{"AAPL", "MSFT", "NVDA"} {
		if _, err := d.Add(ctx, tk, ""); err != nil {
			t.Fatal(err)
		}
	}

	r.results["AAPL"] = resolution("AAPL", "Apple Inc.", "2024-10-31", types.PostMarket)
	r.results["NVDA"] = resolution("NVDA", "NVIDIA", "2024-11-20", types.PostMarket)
	delete(r.results, "MSFT")

	if n := d.RefreshAll(ctx); n != 2 {
		t.Errorf("expected 2 refreshed, got %d", n)
	}

	reloaded, err := watchlist.Open(store.Path(), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if a, _ := reloaded.Get("AAPL"); a.EarningsDate != "2024-10-31" {
		t.Errorf("expected AAPL persisted, got %+v", a)
	}
	if n, _ := reloaded.Get("NVDA"); n.EarningsDate != "2024-11-20" {
		t.Errorf("expected NVDA persisted, got %+v", n)
	}
	if m, _ := reloaded.Get("MSFT"); m.EarningsDate != types.NoDate || m.CompanyName != "Microsoft" {
		t.Errorf("expected MSFT untouched, got %+v", m)
	}
}

func TestRefreshUntracked(t *testing.T) {
	d, _ := newDesk(t, &fakeResolver{}, &fakeLocator{}, &fakeAnalyzer{})
	if _, err := d.Refresh(context.Background(), "TSLA"); !errors.Is(err, ErrNotTracked) {
		t.Errorf("expected ErrNotTracked, got %v", err)
	}
}

func TestItemsSortedWithUndatedLast(t *testing.T) {
	d, store := newDesk(t, &fakeResolver{}, &fakeLocator{}, &fakeAnalyzer{})
	for _, it := range []types.WatchItem{
		{Ticker: "NA1", EarningsDate: types.NoDate, MarketSession: types.SessionUnknown},
		{Ticker: "LATE", EarningsDate: "2024-11-20", MarketSession: types.PostMarket},
		{Ticker: "EARLY", EarningsDate: "2024-10-31", MarketSession: types.PreMarket},
		{Ticker: "NA2", EarningsDate: types.NoDate, MarketSession: types.SessionUnknown},
	} {
		if err := store.Upsert(it); err != nil {
			t.Fatal(err)
		}
	}

	var got []string
	for _, it := range d.Items() {
		got = append(got, it.Ticker)
	}
	want := []string{"EARLY", "LATE", "NA1", "NA2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Items() order = %v, want %v", got, want)
		}
	}

	due := d.OnDate(time.Date(2024, 10, 31, 0, 0, 0, 0, time.Local))
	if len(due) != 1 || due[0].Ticker != "EARLY" {
		t.Errorf("expected EARLY due, got %+v", due)
	}
	if len(d.DueOn(types.NoDate)) != 0 {
		t.Error("undated items must never be due")
	}
}

func TestDownloadAndAnalyze(t *testing.T) {
	loc := &fakeLocator{path: "/data/pdfs/AAPL_latest_earnings.pdf", found: true}
	an := &fakeAnalyzer{ok: true, result: analysis.Result{ChartPath: "/data/charts/AAPL_word_freq.png"}}
	d, store := newDesk(t, &fakeResolver{}, loc, an)
	if err := store.Upsert(types.WatchItem{Ticker: "AAPL", EarningsDate: types.NoDate, MarketSession: types.SessionUnknown, IRURL: types.StringPtr("https://ir.example.com")}); err != nil {
		t.Fatal(err)
	}

	report, err := d.DownloadAndAnalyze(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Found || !report.HasChart || report.Chart.ChartPath != "/data/charts/AAPL_word_freq.png" {
		t.Errorf("unexpected report %+v", report)
	}
	if loc.irURL != "https://ir.example.com" {
		t.Errorf("expected stored IR URL to be used, got %s", loc.irURL)
	}
	if item, _ := store.Get("AAPL"); item.LastPDFPath == nil || *item.LastPDFPath != loc.path {
		t.Errorf("expected last_pdf_path set, got %+v", item)
	}
}

func TestDownloadAndAnalyzeNoDocument(t *testing.T) {
	an := &fakeAnalyzer{}
	d, store := newDesk(t, &fakeResolver{}, &fakeLocator{}, an)
	if err := store.Upsert(types.WatchItem{Ticker: "AAPL", EarningsDate: types.NoDate, MarketSession: types.SessionUnknown, IRURL: types.StringPtr("https://ir.example.com")}); err != nil {
		t.Fatal(err)
	}

	report, err := d.DownloadAndAnalyze(context.Background(), "AAPL")
	if err != nil || report.Found {
		t.Fatalf("expected absent result, got %+v err=%v", report, err)
	}
	if an.calls != 0 {
		t.Error("analyzer must not run without a document")
	}
	if item, _ := store.Get("AAPL"); item.LastPDFPath != nil {
		t.Error("last_pdf_path must stay unset")
	}
}

func TestDownloadAndAnalyzePreconditions(t *testing.T) {
	d, store := newDesk(t, &fakeResolver{}, &fakeLocator{}, &fakeAnalyzer{})
	if _, err := d.DownloadAndAnalyze(context.Background(), "AAPL"); !errors.Is(err, ErrNotTracked) {
		t.Errorf("expected ErrNotTracked, got %v", err)
	}

	if err := store.Upsert(types.WatchItem{Ticker: "AAPL", EarningsDate: types.NoDate, MarketSession: types.SessionUnknown}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.DownloadAndAnalyze(context.Background(), "AAPL"); !errors.Is(err, ErrNoIRURL) {
		t.Errorf("expected ErrNoIRURL, got %v", err)
	}
}

func TestDownloadAndAnalyzePropagatesLocatorError(t *testing.T) {
	boom := errors.New("fetch failed")
	d, store := newDesk(t, &fakeResolver{}, &fakeLocator{err: boom}, &fakeAnalyzer{})
	if err := store.Upsert(types.WatchItem{Ticker: "AAPL", EarningsDate: types.NoDate, MarketSession: types.SessionUnknown, IRURL: types.StringPtr("https://ir.example.com")}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.DownloadAndAnalyze(context.Background(), "AAPL"); !errors.Is(err, boom) {
		t.Errorf("expected locator error unchanged, got %v", err)
	}
}
