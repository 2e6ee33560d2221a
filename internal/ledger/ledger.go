package ledger

import (
	"context"
	"errors"

	"github.com/helios-protocol/helios/internal/model"
)

// ErrClaimNotFound is returned when no entry embeds a claim with the
// requested id.
var ErrClaimNotFound = errors.New("claim not found")

// ErrInvalidClaim is returned by Append when the claim is nil or missing its
// identifier.
var ErrInvalidClaim = errors.New("invalid claim")

// ErrDuplicateClaimID is returned by Append when the claim id is already
// present in the chain. Claim ids are never reused.
var ErrDuplicateClaimID = errors.New("claim id already exists in ledger")

// TransitionFunc folds a claim's full accumulated verdict history into its
// next status. It is evaluated under the ledger's lock so the history it
// sees is exactly the history the status is written against.
type TransitionFunc func(history []model.Verdict) model.ClaimStatus

// Ledger is the append-only, hash-linked store of claims.
type Ledger interface {
	// Append wraps the claim in a new entry chained to the current tail and
	// returns it. The only operation that grows the chain.
	Append(ctx context.Context, claim *model.Claim) (*Entry, error)

	// GetClaim returns the live claim with the given id, or ErrClaimNotFound.
	// Mutations applied through ApplyVerdicts are visible on the returned
	// value.
	GetClaim(ctx context.Context, claimID string) (*model.Claim, error)

	// GetClaimSnapshot returns a deep copy of the claim, taken under the
	// ledger lock. The copy is safe to read or marshal while concurrent
	// ApplyVerdicts calls mutate the live claim.
	GetClaimSnapshot(ctx context.Context, claimID string) (*model.Claim, error)

	// Get returns the entry at the given zero-based index.
	Get(ctx context.Context, index int) (*Entry, error)

	// Len returns the number of entries, including genesis.
	Len(ctx context.Context) (int, error)

	// Entries returns a snapshot of the full chain in append order.
	Entries(ctx context.Context) ([]*Entry, error)

	// TailHash returns the hash of the last entry.
	TailHash(ctx context.Context) (string, error)

	// Verify walks the chain and checks linkage: every entry's PrevHash must
	// equal its predecessor's Hash, and the genesis PrevHash must equal
	// SentinelHash. Entry hashes cover append-time claim snapshots and are
	// not recomputed against live claims.
	Verify(ctx context.Context) error

	// ApplyVerdicts appends verdicts to the claim's verification history and
	// writes the status produced by transition over the full accumulated
	// history, atomically with respect to all other ledger operations.
	ApplyVerdicts(ctx context.Context, claimID string, verdicts []model.Verdict, transition TransitionFunc) (*model.Claim, error)
}
