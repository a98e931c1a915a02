package earnings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newYahooServer(t *testing.T, quote, summary string, summaryStatus int) (*httptest.Server, *int) {
	t.Helper()
	crumbCalls := 0

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/test/getcrumb", func(w http.ResponseWriter, r *http.Request) {
		crumbCalls++
		fmt.Fprint(w, "abc123")
	})
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("crumb") != "abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("expected user agent header, got %q", r.Header.Get("User-Agent"))
		}
		fmt.Fprint(w, quote)
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("modules") != "calendarEvents" {
			t.Errorf("unexpected modules %q", r.URL.Query().Get("modules"))
		}
		w.WriteHeader(summaryStatus)
		fmt.Fprint(w, summary)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &crumbCalls
}

func TestYahooSource(t *testing.T) {
	quote := `{"quoteResponse":{"result":[{"symbol":"AAPL","shortName":"Apple Inc.","longName":"Apple Inc.","earningsTimestamp":1700000000}],"error":null}}`
	// 1730322000 = 2024-10-30 21:00 UTC = 5:00 PM New York
	summary := `{"quoteSummary":{"result":[{"calendarEvents":{"earnings":{"earningsDate":[{"raw":1730318400,"fmt":"2024-10-30"}],"earningsCallDate":[{"raw":1730322000,"fmt":"2024-10-30"}]}}}],"error":null}}`

	srv, crumbCalls := newYahooServer(t, quote, summary, http.StatusOK)
	src := NewYahooSource(YahooConfig{BaseURL: srv.URL, CookieURL: srv.URL + "/cookie", UserAgent: "test-agent"})

	q, err := src.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Quote: unexpected error: %v", err)
	}
	if q.ShortName != "Apple Inc." || q.EarningsTimestamp != 1700000000 {
		t.Errorf("unexpected quote: %+v", q)
	}

	cal, err := src.Calendar(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Calendar: unexpected error: %v", err)
	}
	if cal.EarningsDate != "2024-10-30" {
		t.Errorf("expected 2024-10-30, got %q", cal.EarningsDate)
	}
	if ClassifySession(cal.CallTime) != "post-market" {
		t.Errorf("expected a PM call time, got %q", cal.CallTime)
	}

	if *crumbCalls != 1 {
		t.Errorf("expected crumb to be fetched once, got %d", *crumbCalls)
	}
}

func TestYahooCalendarRawDateOnly(t *testing.T) {
	quote := `{"quoteResponse":{"result":[{"symbol":"AAPL","shortName":"Apple Inc."}],"error":null}}`
	summary := `{"quoteSummary":{"result":[{"calendarEvents":{"earnings":{"earningsDate":[{"raw":1730318400}]}}}],"error":null}}`

	srv, _ := newYahooServer(t, quote, summary, http.StatusOK)
	src := NewYahooSource(YahooConfig{BaseURL: srv.URL, CookieURL: srv.URL + "/cookie", UserAgent: "test-agent"})

	cal, err := src.Calendar(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Calendar: unexpected error: %v", err)
	}
	if cal.EarningsDate != "" || cal.EarningsTime != 1730318400 {
		t.Errorf("expected the raw epoch to be passed through, got %+v", cal)
	}
}

func TestYahooSourceUnknownTicker(t *testing.T) {
	quote := `{"quoteResponse":{"result":[],"error":null}}`
	srv, _ := newYahooServer(t, quote, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`, http.StatusNotFound)
	src := NewYahooSource(YahooConfig{BaseURL: srv.URL, CookieURL: srv.URL + "/cookie", UserAgent: "test-agent"})

	if _, err := src.Quote(context.Background(), "ZZZZ"); !errors.Is(err, ErrUnknownTicker) {
		t.Errorf("Quote: expected ErrUnknownTicker, got %v", err)
	}
	if _, err := src.Calendar(context.Background(), "ZZZZ"); !errors.Is(err, ErrUnknownTicker) {
		t.Errorf("Calendar: expected ErrUnknownTicker, got %v", err)
	}
}

func TestYahooSourceNoCalendar(t *testing.T) {
	srv, _ := newYahooServer(t, `{}`, `{"quoteSummary":{"result":[{"calendarEvents":{"earnings":{}}}],"error":null}}`, http.StatusOK)
	src := NewYahooSource(YahooConfig{BaseURL: srv.URL, CookieURL: srv.URL + "/cookie", UserAgent: "test-agent"})

	cal, err := src.Calendar(context.Background(), "SPY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cal != nil {
		t.Errorf("expected nil calendar, got %+v", cal)
	}
}

func TestFMPSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/profile/MSFT", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != "key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `[{"symbol":"MSFT","companyName":"Microsoft Corporation"}]`)
	})
	mux.HandleFunc("/api/v3/historical/earning_calendar/MSFT", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"symbol":"MSFT","date":"2025-01-28","time":"amc"},
			{"symbol":"MSFT","date":"2024-10-30","time":"amc"},
			{"symbol":"MSFT","date":"2024-07-30","time":"bmo"},
			{"symbol":"MSFT","date":"bogus","time":"bmo"}
		]`)
	})
	mux.HandleFunc("/api/v3/profile/NONE", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewFMPSource(FMPConfig{
		BaseURL: srv.URL,
		APIKey:  "key",
		Now:     func() time.Time { return time.Date(2024, 10, 1, 12, 0, 0, 0, time.Local) },
	})

	q, err := src.Quote(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("Quote: unexpected error: %v", err)
	}
	if q.ShortName != "Microsoft Corporation" {
		t.Errorf("unexpected name %q", q.ShortName)
	}

	cal, err := src.Calendar(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("Calendar: unexpected error: %v", err)
	}
	if cal.EarningsDate != "2024-10-30" {
		t.Errorf("expected next upcoming date 2024-10-30, got %s", cal.EarningsDate)
	}
	if got := ClassifySession(cal.CallTime); got != "post-market" {
		t.Errorf("expected amc to classify post-market, got %s (%q)", got, cal.CallTime)
	}

	if _, err := src.Quote(context.Background(), "NONE"); !errors.Is(err, ErrUnknownTicker) {
		t.Errorf("expected ErrUnknownTicker, got %v", err)
	}
}

func TestExpandSessionCode(t *testing.T) {
	tests := map[string]string{
		"bmo": "before market open",
		"AMC": "after market close",
		"--":  "",
		"":    "",
	}
	for in, want := range tests {
		if got := expandSessionCode(in); got != want {
			t.Errorf("expandSessionCode(%q) = %q, want %q", in, got, want)
		}
	}
}
