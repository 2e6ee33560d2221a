package agent

import (
	"context"
	"fmt"

	"github.com/helios-protocol/helios/internal/model"
)

// DefaultMinHashLength is the minimum content-hash length the HashCheckAgent
// considers plausible.
const DefaultMinHashLength = 10

// HashCheckAgent is a metadata-only strategy: it checks that a claim carries
// a content hash of plausible length. It never inspects content, so it
// accepts every content type.
type HashCheckAgent struct {
	info    Info
	minSize int
}

// NewHashCheckAgent returns a HashCheckAgent with the given minimum hash
// length; minSize <= 0 selects DefaultMinHashLength.
func NewHashCheckAgent(minSize int) *HashCheckAgent {
	if minSize <= 0 {
		minSize = DefaultMinHashLength
	}
	return &HashCheckAgent{
		info:    Info{ID: "hash_check_v1", Version: "0.1.0"},
		minSize: minSize,
	}
}

// Info implements Verifier.
func (a *HashCheckAgent) Info() Info { return a.info }

// Verify implements Verifier.
func (a *HashCheckAgent) Verify(_ context.Context, claim *model.Claim, _ []byte) (model.Verdict, error) {
	if claim.ContentHash == "" {
		v := New(a.info, model.VerdictUnverified, "claim is missing a content hash")
		v.Confidence = model.Confidence(0.1)
		return v, nil
	}

	if len(claim.ContentHash) >= a.minSize {
		v := New(a.info, model.VerdictVerifiedPreliminary,
			fmt.Sprintf("content hash has sufficient length (%d >= %d)", len(claim.ContentHash), a.minSize))
		v.Confidence = model.Confidence(0.6)
		return v, nil
	}

	v := New(a.info, model.VerdictUnverified,
		fmt.Sprintf("content hash too short (%d < %d)", len(claim.ContentHash), a.minSize))
	v.Confidence = model.Confidence(0.2)
	return v, nil
}
