package model

import "time"

// VerdictKind classifies one agent's opinion about a claim. The core
// transition logic only interprets the constants below; agents may emit
// their own refinements (e.g. "appears_consistent_with_known_facts"), which
// the transition treats as neutral.
type VerdictKind string

const (
	VerdictVerified            VerdictKind = "verified"
	VerdictVerifiedPreliminary VerdictKind = "verified_preliminary"
	VerdictUnverified          VerdictKind = "unverified"
	VerdictError               VerdictKind = "error"
	VerdictUnableToVerify      VerdictKind = "unable_to_verify"
	// VerdictCautionAdvised is emitted by rule-table agents when a claim
	// triggers suspicion rules without being conclusively rejected.
	VerdictCautionAdvised VerdictKind = "caution_advised"
	// VerdictAgentExecutionError is synthesised by the orchestrator when an
	// agent fails, panics, or times out. It is recorded like any other
	// verdict and never aborts the run.
	VerdictAgentExecutionError VerdictKind = "error_agent_execution"
)

// Verdict is one agent's permanently recorded opinion about one claim.
// Verdicts are immutable once produced; a claim's history is only appended.
type Verdict struct {
	AgentID      string      `json:"agent_id"`
	AgentVersion string      `json:"agent_version"`
	ProducedAt   time.Time   `json:"produced_at"`
	Kind         VerdictKind `json:"verdict"`
	Confidence   *float64    `json:"confidence,omitempty"`
	Details      any         `json:"details,omitempty"`
}

// Confidence returns a pointer suitable for Verdict.Confidence.
func Confidence(v float64) *float64 { return &v }
