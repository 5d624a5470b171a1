package scrape

import (
	"errors"
	"fmt"
)

// ErrUnknownStrategy is returned by ParseStrategy for names it does not know.
var ErrUnknownStrategy = errors.New("unknown populate strategy")

// FetchError reports a page that could not be retrieved: a transport
// failure (StatusCode 0) or a non-2xx answer.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return "fetch " + e.URL
	}
}

func (e *FetchError) Unwrap() error { return e.Err }
