package choice

import "errors"

var (
	// ErrClosed is returned when input reaches an autocomplete after Close.
	ErrClosed = errors.New("choice: autocomplete closed")
	// ErrFetchPanicked wraps a recovered panic raised by a Fetcher.
	ErrFetchPanicked = errors.New("choice: fetcher panicked")
)
