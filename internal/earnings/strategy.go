package earnings

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/shanehull/earningswatch/internal/types"
)

// Inputs is everything the upstream source returned for one symbol.
type Inputs struct {
	Quote    *Quote
	Calendar *Calendar
}

// DateStrategy is one link of the date fallback chain. It returns ok=false to
// hand over to the next strategy; an error aborts the whole resolution.
type DateStrategy interface {
	Name() string
	Date(in Inputs) (date string, ok bool, err error)
}

// CalendarDate reads the explicit earnings date of the calendar record.
type CalendarDate struct {
	Location *time.Location
}

func (CalendarDate) Name() string { return "calendar" }

func (s CalendarDate) Date(in Inputs) (string, bool, error) {
	if in.Calendar.Empty() {
		return "", false, nil
	}
	raw := strings.TrimSpace(in.Calendar.EarningsDate)
	if raw == "" {
		if ts := in.Calendar.EarningsTime; ts > 0 {
			return time.Unix(ts, 0).In(location(s.Location)).Format(types.DateLayout), true, nil
		}
		return "", false, nil
	}

	t, err := dateparse.ParseIn(raw, location(s.Location))
	if err != nil {
		return "", false, fmt.Errorf("failed to parse calendar earnings date %q: %w", raw, err)
	}
	return t.Format(types.DateLayout), true, nil
}

// QuoteTimestamp converts the epoch "next earnings" fields of the issuer
// metadata, primary field first.
type QuoteTimestamp struct {
	Location *time.Location
}

func (QuoteTimestamp) Name() string { return "quote-timestamp" }

func (s QuoteTimestamp) Date(in Inputs) (string, bool, error) {
	if in.Quote == nil {
		return "", false, nil
	}
	for _, ts := range []int64{in.Quote.EarningsTimestamp, in.Quote.EarningsTimestampStart} {
		if ts > 0 {
			return time.Unix(ts, 0).In(location(s.Location)).Format(types.DateLayout), true, nil
		}
	}
	return "", false, nil
}

func DefaultStrategies(loc *time.Location) []DateStrategy {
	return []DateStrategy{
		CalendarDate{Location: loc},
		QuoteTimestamp{Location: loc},
	}
}

// ClassifySession maps free-form call-time text onto a market session.
func ClassifySession(text string) types.Session {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "am") || strings.Contains(lower, "before"):
		return types.PreMarket
	case strings.Contains(lower, "pm") || strings.Contains(lower, "after"):
		return types.PostMarket
	default:
		return types.SessionUnknown
	}
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
