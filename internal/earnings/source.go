package earnings

import (
	"context"
	"strings"
)

// Source is an upstream financial-data provider. Every field it returns is
// optional; a nil Calendar means the provider has no calendar record.
type Source interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
	Calendar(ctx context.Context, symbol string) (*Calendar, error)
}

type Quote struct {
	ShortName string
	LongName  string

	// Epoch seconds, zero when absent.
	EarningsTimestamp      int64
	EarningsTimestampStart int64
}

type Calendar struct {
	EarningsDate string
	CallTime     string

	// EarningsTime is the epoch-seconds date, used when EarningsDate is empty.
	EarningsTime int64
}

func (c *Calendar) Empty() bool {
	return c == nil || (strings.TrimSpace(c.EarningsDate) == "" && strings.TrimSpace(c.CallTime) == "" && c.EarningsTime <= 0)
}
