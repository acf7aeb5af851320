package domain

import "errors"

var (
	// ErrEmptyTarget is returned when the audit target is blank
	ErrEmptyTarget = errors.New("empty audit target")
	// ErrInvalidURLFormat is returned when the target cannot be parsed as a URL
	ErrInvalidURLFormat = errors.New("invalid URL format")
	// ErrUnsupportedScheme is returned for targets that are not http or https
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	// ErrInvalidDomainFormat is returned when the target host is not a registrable domain
	ErrInvalidDomainFormat = errors.New("invalid domain format")
)
