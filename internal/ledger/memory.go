package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/helios-protocol/helios/internal/model"
)

// MemoryLedger is an in-memory, thread-safe Ledger implementation. State
// lives for the owning process only; durable persistence is out of scope
// for a Helios node.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries []*Entry
	byClaim map[string]int // claim id -> entry index
}

// New creates a MemoryLedger initialised with the genesis entry. The genesis
// claim carries the reserved system identity and the terminal
// verified_immutable status.
func New() *MemoryLedger {
	l := &MemoryLedger{byClaim: make(map[string]int)}

	now := time.Now().UTC()
	genesis := &Entry{
		Index:     0,
		Timestamp: now,
		Claim:     genesisClaim(now),
		PrevHash:  SentinelHash,
	}
	hash, err := hashEntry(genesis)
	if err != nil {
		// The genesis entry is built from static, known-marshalable fields.
		panic(fmt.Sprintf("ledger: hash genesis entry: %v", err))
	}
	genesis.Hash = hash

	l.entries = append(l.entries, genesis)
	l.byClaim[genesis.Claim.ClaimID] = 0
	return l
}

// Append implements Ledger. O(1) amortized; never blocks on anything but the
// ledger lock.
func (l *MemoryLedger) Append(_ context.Context, claim *model.Claim) (*Entry, error) {
	if claim == nil || claim.ClaimID == "" {
		return nil, ErrInvalidClaim
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.byClaim[claim.ClaimID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateClaimID, claim.ClaimID)
	}

	prev := l.entries[len(l.entries)-1]
	entry := &Entry{
		Index:     len(l.entries),
		Timestamp: time.Now().UTC(),
		Claim:     claim,
		PrevHash:  prev.Hash,
	}
	hash, err := hashEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
	entry.Hash = hash

	l.entries = append(l.entries, entry)
	l.byClaim[claim.ClaimID] = entry.Index
	return entry, nil
}

// GetClaim implements Ledger.
func (l *MemoryLedger) GetClaim(_ context.Context, claimID string) (*model.Claim, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, ok := l.byClaim[claimID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, claimID)
	}
	return l.entries[idx].Claim, nil
}

// GetClaimSnapshot implements Ledger.
func (l *MemoryLedger) GetClaimSnapshot(_ context.Context, claimID string) (*model.Claim, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	idx, ok := l.byClaim[claimID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, claimID)
	}
	return l.entries[idx].Claim.Clone(), nil
}

// Get implements Ledger.
func (l *MemoryLedger) Get(_ context.Context, index int) (*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.entries) {
		return nil, fmt.Errorf("index %d out of range", index)
	}
	return l.entries[index], nil
}

// Len implements Ledger.
func (l *MemoryLedger) Len(_ context.Context) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries), nil
}

// Entries implements Ledger.
func (l *MemoryLedger) Entries(_ context.Context) ([]*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Entry, len(l.entries))
	copy(out, l.entries)
	return out, nil
}

// TailHash implements Ledger.
func (l *MemoryLedger) TailHash(_ context.Context) (string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return SentinelHash, nil
	}
	return l.entries[len(l.entries)-1].Hash, nil
}

// Verify implements Ledger.
func (l *MemoryLedger) Verify(_ context.Context) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i, curr := range l.entries {
		if i == 0 {
			if curr.PrevHash != SentinelHash {
				return fmt.Errorf("genesis entry has non-sentinel prev hash %q", curr.PrevHash)
			}
			continue
		}
		if curr.Index != i {
			return fmt.Errorf("entry at position %d has index %d", i, curr.Index)
		}
		if curr.PrevHash != l.entries[i-1].Hash {
			return fmt.Errorf("hash chain broken at index %d", curr.Index)
		}
	}
	return nil
}

// ApplyVerdicts implements Ledger. The transition function runs under the
// ledger's write lock, so the history it folds is exactly the history the
// resulting status is recorded against. The returned claim is a snapshot,
// detached from later mutations.
func (l *MemoryLedger) ApplyVerdicts(_ context.Context, claimID string, verdicts []model.Verdict, transition TransitionFunc) (*model.Claim, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx, ok := l.byClaim[claimID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, claimID)
	}

	claim := l.entries[idx].Claim
	claim.VerificationHistory = append(claim.VerificationHistory, verdicts...)
	claim.Status = transition(claim.VerificationHistory)
	return claim.Clone(), nil
}
