package protocol

import "time"

// Risk is the tier assigned to an extracted command.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Rank orders risk tiers from 0 (low) to 2 (high). Unknown values rank above
// high so that they never pass a threshold check.
func (r Risk) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return 3
	}
}

// AtMost reports whether r is no riskier than limit.
func (r Risk) AtMost(limit Risk) bool {
	return r.Rank() <= limit.Rank()
}

// ParseRisk converts a risk name to a Risk.
func ParseRisk(s string) (Risk, bool) {
	switch Risk(s) {
	case RiskLow, RiskMedium, RiskHigh:
		return Risk(s), true
	default:
		return "", false
	}
}

// ApprovalRequest asks an external reviewer to accept one command found in
// completion text. A request is created once per detected command per round.
type ApprovalRequest struct {
	ID        string    `json:"id"`
	Intent    string    `json:"intent"`
	Command   string    `json:"command"`
	Risk      Risk      `json:"risk"`
	Timestamp time.Time `json:"timestamp"`
}

// ApprovalDecision is the single outcome recorded for an ApprovalRequest.
// RequestID correlates the decision with the request it answers.
type ApprovalDecision struct {
	RequestID string    `json:"request_id"`
	Approved  bool      `json:"approved"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
