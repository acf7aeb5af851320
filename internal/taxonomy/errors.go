package taxonomy

import "errors"

var (
	// ErrEmptyFile is returned when a rule file contains no YAML document
	ErrEmptyFile = errors.New("rule file is empty")
	// ErrInvalidRuleFile is returned when a rule file fails schema validation
	ErrInvalidRuleFile = errors.New("invalid rule file")
	// ErrEmptyRule is returned when a rule carries neither literals nor patterns
	ErrEmptyRule = errors.New("rule has no literals or patterns")
	// ErrInvalidPattern is returned when a rule pattern does not compile
	ErrInvalidPattern = errors.New("invalid rule pattern")
	// ErrDuplicateRuleSet is returned when two files at the same level define the same rule set
	ErrDuplicateRuleSet = errors.New("duplicate rule set")
	// ErrDuplicateRule is returned when a rule set contains two rules with the same id
	ErrDuplicateRule = errors.New("duplicate rule id")
	// ErrMissingRuleSet is returned when a required rule set is absent after loading
	ErrMissingRuleSet = errors.New("required rule set missing")
	// ErrNoUserDir is returned when watching is requested without a user rules directory
	ErrNoUserDir = errors.New("user rules directory not configured")
)
