package earnings

import (
	"errors"
	"fmt"
)

var (
	// ErrResolutionFailed matches every error returned by Resolver.Resolve.
	ErrResolutionFailed = errors.New("earnings resolution failed")

	ErrUnknownTicker = errors.New("unknown ticker")
	ErrEmptyTicker   = errors.New("empty ticker")
)

type ResolutionError struct {
	Ticker string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve earnings for %s: %v", e.Ticker, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolutionFailed
}
