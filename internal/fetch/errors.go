package fetch

import "errors"

var (
	// ErrFetchFailed is returned when the page request cannot be completed
	ErrFetchFailed = errors.New("failed to fetch page")
	// ErrUnexpectedStatus is returned when the page responds with a non-200 status
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrEmptyBody is returned when the page responds with no content
	ErrEmptyBody = errors.New("empty response body")
)
