package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/helios-protocol/helios/internal/model"
)

// SentinelHash is the all-zero digest used as the genesis entry's PrevHash.
const SentinelHash = "0000000000000000000000000000000000000000000000000000000000000000"

// Reserved identities and constants of the genesis claim.
const (
	GenesisClaimID     = "genesis_000"
	GenesisSubmitterID = "system_helios"
	genesisContentType = "system"
)

// Entry is a single block in the claim ledger: one claim plus chain-linkage
// metadata. Index, Timestamp, PrevHash, and Hash never change after append.
type Entry struct {
	Index     int          `json:"index"`
	Timestamp time.Time    `json:"timestamp"`
	Claim     *model.Claim `json:"claim"`
	PrevHash  string       `json:"prev_hash"`
	Hash      string       `json:"hash"`
}

// hashEntry computes the hex SHA-256 digest of an entry over the RFC 8785
// canonical JSON of its fields excluding Hash itself. The digest is
// deterministic for a given entry state; it is computed exactly once, when
// the entry is appended.
func hashEntry(e *Entry) (string, error) {
	hashable := struct {
		Index     int          `json:"index"`
		Timestamp string       `json:"timestamp"`
		Claim     *model.Claim `json:"claim"`
		PrevHash  string       `json:"prev_hash"`
	}{
		Index:     e.Index,
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
		Claim:     e.Claim,
		PrevHash:  e.PrevHash,
	}

	raw, err := json.Marshal(hashable)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize entry: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// genesisClaim builds the claim embedded in the genesis entry. Its status is
// terminal and never subject to orchestration.
func genesisClaim(now time.Time) *model.Claim {
	return &model.Claim{
		ClaimID:     GenesisClaimID,
		CreatedAt:   now,
		SubmitterID: GenesisSubmitterID,
		ContentHash: SentinelHash,
		ContentType: genesisContentType,
		Metadata: map[string]any{
			"description": "Helios Protocol Genesis Block",
		},
		VerificationHistory: []model.Verdict{},
		Status:              model.StatusVerifiedImmutable,
	}
}
