package types

import (
	"strings"
	"time"
)

// NoDate marks an earnings date that could not be resolved.
const NoDate = "N/A"

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

type Session string

const (
	PreMarket      Session = "pre-market"
	PostMarket     Session = "post-market"
	SessionUnknown Session = "unknown"
)

func (s Session) Valid() bool {
	switch s {
	case PreMarket, PostMarket, SessionUnknown:
		return true
	}
	return false
}

type WatchItem struct {
	Ticker        string  `json:"ticker"`
	CompanyName   string  `json:"company_name"`
	EarningsDate  string  `json:"earnings_date"`
	MarketSession Session `json:"market_session"`
	IRURL         *string `json:"ir_url"`
	LastPDFPath   *string `json:"last_pdf_path"`
	UpdatedAt     *string `json:"updated_at"`
}

// Resolution is the complete result of one earnings lookup.
type Resolution struct {
	Ticker       string
	CompanyName  string
	EarningsDate string
	Session      Session
}

func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Apply overwrites the resolved fields of the item and bumps UpdatedAt.
func (w *WatchItem) Apply(r Resolution, now time.Time) {
	w.Ticker = r.Ticker
	w.CompanyName = r.CompanyName
	w.EarningsDate = r.EarningsDate
	w.MarketSession = r.Session
	stamp := now.Format(TimestampLayout)
	w.UpdatedAt = &stamp
}

func (w WatchItem) HasDate() bool {
	return w.EarningsDate != "" && w.EarningsDate != NoDate
}

func (w WatchItem) IR() string {
	if w.IRURL == nil {
		return ""
	}
	return *w.IRURL
}

func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
