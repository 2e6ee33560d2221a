// Package model defines the core domain types of the Helios protocol:
// claims, verdicts, and the claim status state machine.
package model

import (
	"maps"
	"time"
)

// ClaimStatus represents the trust state of a claim.
type ClaimStatus string

const (
	// StatusPendingVerification is the initial status of every submitted claim.
	StatusPendingVerification ClaimStatus = "pending_verification"
	// StatusReverificationNeeded marks claims flagged for another run.
	StatusReverificationNeeded ClaimStatus = "reverification_needed"
	// StatusVerifiedPreliminary — at least one agent returned a preliminary pass.
	StatusVerifiedPreliminary ClaimStatus = "verified_preliminary"
	// StatusUnverified — at least one agent rejected the claim and none passed it.
	StatusUnverified ClaimStatus = "unverified"
	// StatusVerifiedImmutable is the terminal status reserved for the genesis
	// claim. It is never the result of a verification run.
	StatusVerifiedImmutable ClaimStatus = "verified_immutable"
)

// Verifiable reports whether a verification run may be accepted for a claim
// in this status.
func (s ClaimStatus) Verifiable() bool {
	return s == StatusPendingVerification || s == StatusReverificationNeeded
}

// Claim is the unit of assertion: a statement about a piece of content,
// identified by its hash and submitter. All fields except Status and the
// append-only VerificationHistory are immutable after submission.
type Claim struct {
	ClaimID             string         `json:"claim_id"`
	CreatedAt           time.Time      `json:"created_at"`
	SubmitterID         string         `json:"submitter_id"`
	ContentHash         string         `json:"content_hash"`
	ContentType         string         `json:"content_type"`
	Metadata            map[string]any `json:"metadata"`
	VerificationHistory []Verdict      `json:"verification_history"`
	Status              ClaimStatus    `json:"status"`
}

// Clone returns a deep copy of the claim: the metadata map and the verdict
// history are copied, so later mutations of the original are not visible on
// the copy. Metadata values themselves are shared.
func (c *Claim) Clone() *Claim {
	if c == nil {
		return nil
	}
	out := *c
	out.Metadata = maps.Clone(c.Metadata)
	out.VerificationHistory = make([]Verdict, len(c.VerificationHistory))
	copy(out.VerificationHistory, c.VerificationHistory)
	return &out
}
