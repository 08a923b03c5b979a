package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyFeed is returned by ParseFeed when the body is empty or whitespace.
var ErrEmptyFeed = errors.New("empty feed body")

// Item-level extraction failures.
var (
	ErrMissingField     = errors.New("missing required field")
	ErrMissingStartTime = errors.New("missing start time")
	ErrInvalidTime      = errors.New("invalid timestamp")
)

// FetchError reports a failed feed download: either a non-2xx status
// (StatusCode set) or a transport fault (Err set).
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports a feed body that is not well-formed XML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse feed: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// ItemError reports why a single feed item was skipped.
type ItemError struct {
	Index int
	GUID  string
	Err   error
}

func (e *ItemError) Error() string {
	if e.GUID == "" {
		return fmt.Sprintf("item %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("item %d (%s): %v", e.Index, e.GUID, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
