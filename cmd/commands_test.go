package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/shanehull/earningswatch/internal/analysis"
	"github.com/shanehull/earningswatch/internal/config"
	"github.com/shanehull/earningswatch/internal/types"
)

func TestWriteJSONKeepsNullFields(t *testing.T) {
	var buf bytes.Buffer
	items := []types.WatchItem{{Ticker: "AAPL", CompanyName: "Apple Inc.", EarningsDate: types.NoDate, MarketSession: types.SessionUnknown}}
	if err := writeJSON(&buf, items, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"ir_url": null`) || !strings.Contains(out, `"earnings_date": "N/A"`) {
		t.Errorf("unexpected JSON:\n%s", out)
	}

	buf.Reset()
	if err := writeJSON(&buf, nil, false); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty array, got %q", buf.String())
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	stamp := "2024-10-30 08:15:00"
	items := []types.WatchItem{{Ticker: "MSFT", CompanyName: "Microsoft", EarningsDate: "2024-10-30", MarketSession: types.PostMarket, UpdatedAt: &stamp}}
	if err := writeTable(&buf, items); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "TICKER") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
	for _, want := range []string{"MSFT", "post-market", stamp, "-"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("expected %q in row %q", want, lines[1])
		}
	}
}

func TestPrintPDFReport(t *testing.T) {
	var buf bytes.Buffer
	printPDFReport(&buf, "AAPL", false, "", analysis.Result{}, false)
	if !strings.Contains(buf.String(), "No earnings PDF link found") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	chart := analysis.Result{ChartPath: "/c/AAPL_word_freq.png", Words: []analysis.WordCount{{Word: "revenue", Count: 4}}}
	printPDFReport(&buf, "AAPL", true, "/p/AAPL_latest_earnings.pdf", chart, true)
	out := buf.String()
	if !strings.Contains(out, "Chart saved to /c/AAPL_word_freq.png") || !strings.Contains(out, "revenue") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestListEmptyNamesWatchlistFile(t *testing.T) {
	cfg := config.Default()
	cfg.DataHome = t.TempDir()
	a, err := newApp(cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	a.out = &buf

	if err := a.list(nil); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(cfg.DataHome, "watchlist.json")
	if !strings.Contains(buf.String(), "The watchlist at "+want+" is empty") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
