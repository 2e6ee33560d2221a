// Package claims contains the submission and read-side business logic for a
// Helios node's claim ledger.
package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/helios-protocol/helios/internal/ledger"
	"github.com/helios-protocol/helios/internal/model"
	"go.uber.org/zap"
)

// ErrInvalidInput is returned by Submit when a required field is empty. The
// claim is not created.
var ErrInvalidInput = errors.New("content_hash, content_type and submitter_id are required")

// SubmitRequest is the claim submission payload.
type SubmitRequest struct {
	ContentHash string         `json:"content_hash"`
	ContentType string         `json:"content_type"`
	SubmitterID string         `json:"submitter_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Service owns claim submission and ledger reads for one node.
type Service struct {
	ledger ledger.Ledger
	logger *zap.Logger
}

// NewService creates a claims Service backed by the given ledger.
func NewService(l ledger.Ledger, logger *zap.Logger) *Service {
	return &Service{ledger: l, logger: logger}
}

// Submit validates the request, assigns a fresh claim id, and appends the
// claim to the ledger with status pending_verification.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*model.Claim, error) {
	if req.ContentHash == "" || req.ContentType == "" || req.SubmitterID == "" {
		return nil, ErrInvalidInput
	}

	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	claim := &model.Claim{
		ClaimID:             "claim_" + uuid.NewString(),
		CreatedAt:           time.Now().UTC(),
		SubmitterID:         req.SubmitterID,
		ContentHash:         req.ContentHash,
		ContentType:         req.ContentType,
		Metadata:            metadata,
		VerificationHistory: []model.Verdict{},
		Status:              model.StatusPendingVerification,
	}

	entry, err := s.ledger.Append(ctx, claim)
	if err != nil {
		return nil, fmt.Errorf("append claim: %w", err)
	}

	s.logger.Info("claim submitted",
		zap.String("claim_id", claim.ClaimID),
		zap.String("submitter_id", claim.SubmitterID),
		zap.String("content_type", claim.ContentType),
		zap.Int("ledger_index", entry.Index),
	)
	return claim.Clone(), nil
}

// Get returns a snapshot of the claim with the given id. The ledger keeps
// the live claim; callers get a copy that is safe to marshal while
// verification runs mutate the original.
func (s *Service) Get(ctx context.Context, claimID string) (*model.Claim, error) {
	return s.ledger.GetClaimSnapshot(ctx, claimID)
}

// Entries returns the full chain in append order.
func (s *Service) Entries(ctx context.Context) ([]*ledger.Entry, error) {
	return s.ledger.Entries(ctx)
}

// TailHash returns the hash of the chain tip.
func (s *Service) TailHash(ctx context.Context) (string, error) {
	return s.ledger.TailHash(ctx)
}

// VerifyChain walks the full chain and reports linkage integrity.
func (s *Service) VerifyChain(ctx context.Context) error {
	return s.ledger.Verify(ctx)
}
