/*
Package earnings resolves a ticker's next earnings date and market session from
an upstream financial-data source.
*/
package earnings

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shanehull/earningswatch/internal/types"
)

type Resolver struct {
	source     Source
	strategies []DateStrategy
	timeout    time.Duration
	logger     *zap.Logger
}

type Option func(*Resolver)

// WithLocation sets the zone used to turn timestamps into dates.
func WithLocation(loc *time.Location) Option {
	return func(r *Resolver) {
		r.strategies = DefaultStrategies(loc)
	}
}

func WithStrategies(strategies ...DateStrategy) Option {
	return func(r *Resolver) {
		r.strategies = strategies
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

func NewResolver(source Source, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		source:     source,
		strategies: DefaultStrategies(time.Local),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a complete resolution or a *ResolutionError. An unknown
// date is not an error: EarningsDate is then types.NoDate.
func (r *Resolver) Resolve(ctx context.Context, ticker string) (types.Resolution, error) {
	symbol := types.NormalizeTicker(ticker)
	if symbol == "" {
		return types.Resolution{}, &ResolutionError{Ticker: ticker, Err: ErrEmptyTicker}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	quote, err := r.source.Quote(ctx, symbol)
	if err != nil {
		return types.Resolution{}, &ResolutionError{Ticker: symbol, Err: fmt.Errorf("quote lookup: %w", err)}
	}
	if quote == nil {
		quote = &Quote{}
	}

	cal, err := r.source.Calendar(ctx, symbol)
	if err != nil {
		return types.Resolution{}, &ResolutionError{Ticker: symbol, Err: fmt.Errorf("calendar lookup: %w", err)}
	}

	res := types.Resolution{
		Ticker:       symbol,
		CompanyName:  companyName(quote, symbol),
		EarningsDate: types.NoDate,
		Session:      types.SessionUnknown,
	}

	if !cal.Empty() && cal.CallTime != "" {
		res.Session = ClassifySession(cal.CallTime)
	}

	in := Inputs{Quote: quote, Calendar: cal}
	for _, s := range r.strategies {
		date, ok, err := s.Date(in)
		if err != nil {
			return types.Resolution{}, &ResolutionError{Ticker: symbol, Err: err}
		}
		if ok {
			res.EarningsDate = date
			r.logger.Debug("Resolved earnings date",
				zap.String("ticker", symbol),
				zap.String("strategy", s.Name()),
				zap.String("date", date))
			break
		}
	}

	if res.EarningsDate == types.NoDate {
		r.logger.Info("No earnings date available", zap.String("ticker", symbol))
	}

	return res, nil
}

func companyName(q *Quote, symbol string) string {
	switch {
	case q.ShortName != "":
		return q.ShortName
	case q.LongName != "":
		return q.LongName
	default:
		return symbol
	}
}
