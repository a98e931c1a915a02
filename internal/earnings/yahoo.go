package earnings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	yahooBaseURL   = "https://query2.finance.yahoo.com"
	yahooCookieURL = "https://fc.yahoo.com"
	yahooCallZone  = "America/New_York"
)

type YahooConfig struct {
	BaseURL   string
	CookieURL string
	UserAgent string
	Client    *http.Client
}

// YahooSource reads quotes and calendar events from Yahoo Finance. Yahoo
// requires a session cookie plus a matching crumb on every API call.
type YahooSource struct {
	cfg      YahooConfig
	client   *http.Client
	callZone *time.Location

	mu    sync.Mutex
	crumb string
}

func NewYahooSource(cfg YahooConfig) *YahooSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = yahooBaseURL
	}
	if cfg.CookieURL == "" {
		cfg.CookieURL = yahooCookieURL
	}

	client := cfg.Client
	if client == nil {
		jar, _ := cookiejar.New(nil)
		client = &http.Client{Jar: jar}
	}

	zone, err := time.LoadLocation(yahooCallZone)
	if err != nil {
		zone = time.FixedZone("ET", -5*60*60)
	}

	return &YahooSource{
		cfg:      cfg,
		client:   client,
		callZone: zone,
	}
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooValue struct {
	Raw int64  `json:"raw"`
	Fmt string `json:"fmt"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                 string `json:"symbol"`
			ShortName              string `json:"shortName"`
			LongName               string `json:"longName"`
			EarningsTimestamp      int64  `json:"earningsTimestamp"`
			EarningsTimestampStart int64  `json:"earningsTimestampStart"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteResponse"`
}

type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			CalendarEvents struct {
				Earnings struct {
					EarningsDate     []yahooValue `json:"earningsDate"`
					EarningsCallDate []yahooValue `json:"earningsCallDate"`
				} `json:"earnings"`
			} `json:"calendarEvents"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

func (y *YahooSource) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var resp yahooQuoteResponse
	params := url.Values{"symbols": {symbol}}
	if err := y.getJSON(ctx, "/v7/finance/quote", params, &resp); err != nil {
		return nil, err
	}
	if e := resp.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("yahoo quote error %s: %s", e.Code, e.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, ErrUnknownTicker
	}

	r := resp.QuoteResponse.Result[0]
	return &Quote{
		ShortName:              strings.TrimSpace(r.ShortName),
		LongName:               strings.TrimSpace(r.LongName),
		EarningsTimestamp:      r.EarningsTimestamp,
		EarningsTimestampStart: r.EarningsTimestampStart,
	}, nil
}

func (y *YahooSource) Calendar(ctx context.Context, symbol string) (*Calendar, error) {
	var resp yahooSummaryResponse
	params := url.Values{"modules": {"calendarEvents"}}
	if err := y.getJSON(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &resp); err != nil {
		return nil, err
	}
	if e := resp.QuoteSummary.Error; e != nil {
		return nil, fmt.Errorf("yahoo calendar error %s: %s", e.Code, e.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, nil
	}

	earnings := resp.QuoteSummary.Result[0].CalendarEvents.Earnings
	cal := &Calendar{}

	if len(earnings.EarningsDate) > 0 {
		d := earnings.EarningsDate[0]
		switch {
		case d.Fmt != "":
			cal.EarningsDate = d.Fmt
		case d.Raw > 0:
			cal.EarningsTime = d.Raw
		}
	}

	if len(earnings.EarningsCallDate) > 0 && earnings.EarningsCallDate[0].Raw > 0 {
		cal.CallTime = time.Unix(earnings.EarningsCallDate[0].Raw, 0).In(y.callZone).Format("3:04 PM")
	}

	if cal.Empty() {
		return nil, nil
	}
	return cal, nil
}

func (y *YahooSource) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	crumb, err := y.ensureCrumb(ctx)
	if err != nil {
		return err
	}
	params.Set("crumb", crumb)

	endpoint := y.cfg.BaseURL + path + "?" + params.Encode()
	resp, err := y.do(ctx, endpoint)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// stale crumb, fetch a fresh one on the next call
		y.resetCrumb()
		return fmt.Errorf("received status code %d from %s", resp.StatusCode, path)
	case resp.StatusCode == http.StatusNotFound:
		return ErrUnknownTicker
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("received status code %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func (y *YahooSource) ensureCrumb(ctx context.Context) (string, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.crumb != "" {
		return y.crumb, nil
	}

	// Only the Set-Cookie matters; the page itself answers 404.
	if resp, err := y.do(ctx, y.cfg.CookieURL); err == nil {
		resp.Body.Close()
	}

	resp, err := y.do(ctx, y.cfg.BaseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("failed to fetch crumb: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received status code %d fetching crumb", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if crumb == "" {
		return "", errors.New("yahoo returned an empty crumb")
	}

	y.crumb = crumb
	return crumb, nil
}

func (y *YahooSource) resetCrumb() {
	y.mu.Lock()
	y.crumb = ""
	y.mu.Unlock()
}

func (y *YahooSource) do(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", y.cfg.UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	return y.client.Do(req)
}
