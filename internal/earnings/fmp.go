package earnings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shanehull/earningswatch/internal/types"
)

const fmpBaseURL = "https://financialmodelingprep.com"

type FMPConfig struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Client    *http.Client

	// Now anchors "upcoming"; defaults to time.Now.
	Now func() time.Time
}

// FMPSource reads company profiles and the earnings calendar from Financial
// Modeling Prep.
type FMPSource struct {
	cfg    FMPConfig
	client *http.Client
}

func NewFMPSource(cfg FMPConfig) *FMPSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmpBaseURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}
	return &FMPSource{cfg: cfg, client: client}
}

type fmpProfile struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
}

type fmpEarning struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
	Time   string `json:"time"`
}

func (f *FMPSource) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var profiles []fmpProfile
	if err := f.getJSON(ctx, "/api/v3/profile/"+url.PathEscape(symbol), &profiles); err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrUnknownTicker
	}
	return &Quote{ShortName: strings.TrimSpace(profiles[0].CompanyName)}, nil
}

// Calendar picks the earliest calendar entry dated today or later.
func (f *FMPSource) Calendar(ctx context.Context, symbol string) (*Calendar, error) {
	var entries []fmpEarning
	if err := f.getJSON(ctx, "/api/v3/historical/earning_calendar/"+url.PathEscape(symbol), &entries); err != nil {
		return nil, err
	}

	today := f.cfg.Now().Format(types.DateLayout)
	var upcoming []fmpEarning
	for _, e := range entries {
		if _, err := time.Parse(types.DateLayout, e.Date); err != nil {
			continue
		}
		if e.Date >= today {
			upcoming = append(upcoming, e)
		}
	}
	if len(upcoming) == 0 {
		return nil, nil
	}

	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].Date < upcoming[j].Date })
	next := upcoming[0]

	return &Calendar{
		EarningsDate: next.Date,
		CallTime:     expandSessionCode(next.Time),
	}, nil
}

// expandSessionCode spells out FMP's session codes; "amc" would otherwise
// read as a morning call.
func expandSessionCode(code string) string {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "bmo":
		return "before market open"
	case "amc":
		return "after market close"
	default:
		return ""
	}
}

func (f *FMPSource) getJSON(ctx context.Context, path string, out any) error {
	endpoint := f.cfg.BaseURL + path + "?" + url.Values{"apikey": {f.cfg.APIKey}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received status code %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
