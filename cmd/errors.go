package cmd

import "errors"

var (
	// ErrNoAuditInput is returned when neither a URL nor an HTML file is given
	ErrNoAuditInput = errors.New("either --url or --html-file is required")
	// ErrConflictingAuditInput is returned when both a URL and an HTML file are given
	ErrConflictingAuditInput = errors.New("--url and --html-file are mutually exclusive")
	// ErrUnknownRuleSet is returned when the named rule set does not exist
	ErrUnknownRuleSet = errors.New("unknown rule set")
	// ErrUnknownRule is returned when the rule set has no rule with the given id
	ErrUnknownRule = errors.New("unknown rule")
)
