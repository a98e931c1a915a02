package irpage

import (
	"errors"
	"fmt"
)

var (
	ErrFetchFailed    = errors.New("IR page fetch failed")
	ErrDownloadFailed = errors.New("PDF download failed")
)

// RequestError is a failed IR page fetch or PDF download. StatusCode is zero
// when the request never got a response.
type RequestError struct {
	Kind       error
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%v: received status code %d from %s", e.Kind, e.StatusCode, e.URL)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Is(target error) bool {
	return target == e.Kind
}
