package consent

// BehaviorStatus is the pass/warn/fail grade of a banner score
type BehaviorStatus string

const (
	BehaviorPassed  BehaviorStatus = "passed"
	BehaviorWarning BehaviorStatus = "warning"
	BehaviorFailed  BehaviorStatus = "failed"
)

// BehaviorLabel grades a banner score for display
type BehaviorLabel struct {
	Status  BehaviorStatus `json:"status"`
	Message string         `json:"message"`
}

// LabelFor returns the behavior label for a banner score
func LabelFor(score int) BehaviorLabel {
	switch {
	case score >= 80:
		return BehaviorLabel{Status: BehaviorPassed, Message: "Good consent implementation"}
	case score >= 50:
		return BehaviorLabel{Status: BehaviorWarning, Message: "Consent issues detected"}
	default:
		return BehaviorLabel{Status: BehaviorFailed, Message: "Critical consent violations"}
	}
}
