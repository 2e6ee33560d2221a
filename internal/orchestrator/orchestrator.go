// Package orchestrator dispatches claims to applicable verification agents
// and folds their verdicts into a single authoritative status transition on
// the ledger.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/helios-protocol/helios/internal/agent"
	"github.com/helios-protocol/helios/internal/ledger"
	"github.com/helios-protocol/helios/internal/model"
	"go.uber.org/zap"
)

var (
	// ErrClaimNotFound — the claim id is unknown to the ledger.
	ErrClaimNotFound = errors.New("claim not found")

	// ErrAgentNotFound — an explicit agent id was requested but no agent
	// with that id is registered.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrNoApplicableAgent — no registered agent accepts the claim's content
	// type. The claim is left untouched.
	ErrNoApplicableAgent = errors.New("no applicable agent for claim")

	// ErrNotVerifiable — the claim's status does not admit a verification
	// run. Status and history are left unchanged; this is a no-op notice,
	// not a failure of the claim itself.
	ErrNotVerifiable = errors.New("claim status does not permit verification")
)

// DefaultAgentTimeout bounds a single agent invocation. A timed-out agent is
// recorded as an execution-error verdict, like any other agent failure.
const DefaultAgentTimeout = 30 * time.Second

// Orchestrator owns the agent collection for one ledger instance and drives
// all claim status transitions. Runs are serialized: the read-check-mutate
// of a claim happens under one exclusive owner.
type Orchestrator struct {
	ledger       ledger.Ledger
	logger       *zap.Logger
	agentTimeout time.Duration

	runMu sync.Mutex // serializes Run calls

	mu     sync.RWMutex
	agents map[string]agent.Verifier
	order  []string // registration order, drives selection order
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAgentTimeout overrides the per-agent invocation timeout. Zero disables
// the bound.
func WithAgentTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.agentTimeout = d }
}

// New creates an Orchestrator bound to the given ledger. The agent
// collection starts empty; strategies are added with Register.
func New(l ledger.Ledger, logger *zap.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		ledger:       l,
		logger:       logger,
		agentTimeout: DefaultAgentTimeout,
		agents:       make(map[string]agent.Verifier),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register adds a verification agent. The last registration for a given
// agent id wins; re-registration silently replaces the previous instance
// while keeping its original selection slot.
func (o *Orchestrator) Register(v agent.Verifier) {
	id := v.Info().ID

	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.agents[id]; !exists {
		o.order = append(o.order, id)
	}
	o.agents[id] = v
}

// Agents returns the registered agents' identities in selection order.
func (o *Orchestrator) Agents() []agent.Info {
	o.mu.RLock()
	defer o.mu.RUnlock()
	infos := make([]agent.Info, 0, len(o.order))
	for _, id := range o.order {
		infos = append(infos, o.agents[id].Info())
	}
	return infos
}

// Select resolves the agents applicable to a claim. With an explicit agent
// id, exactly that agent is returned or ErrAgentNotFound. Otherwise every
// registered agent accepting the claim's content type is returned in
// registration order; an agent with an empty acceptance set accepts all.
func (o *Orchestrator) Select(claim *model.Claim, explicitAgentID string) ([]agent.Verifier, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if explicitAgentID != "" {
		v, ok := o.agents[explicitAgentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, explicitAgentID)
		}
		return []agent.Verifier{v}, nil
	}

	var selected []agent.Verifier
	for _, id := range o.order {
		v := o.agents[id]
		if v.Info().Accepts(claim.ContentType) {
			selected = append(selected, v)
		}
	}
	return selected, nil
}

// Run executes one orchestration run for the claim: select agents, invoke
// each, append every produced verdict to the claim's history in selection
// order, and write the status resolved over the full accumulated history.
// Returns the claim's post-run state. Every claim Run returns is a snapshot
// detached from the ledger's live state.
//
// A failing, panicking, or timed-out agent is converted into a synthetic
// error_agent_execution verdict and never aborts the other agents.
func (o *Orchestrator) Run(ctx context.Context, claimID, explicitAgentID string) (*model.Claim, error) {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	claim, err := o.ledger.GetClaimSnapshot(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrClaimNotFound, claimID)
	}

	if !claim.Status.Verifiable() {
		o.logger.Info("verification run rejected",
			zap.String("claim_id", claimID),
			zap.String("status", string(claim.Status)),
		)
		return claim, fmt.Errorf("%w: current status %s", ErrNotVerifiable, claim.Status)
	}

	selected, err := o.Select(claim, explicitAgentID)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return claim, fmt.Errorf("%w: content type %s", ErrNoApplicableAgent, claim.ContentType)
	}

	verdicts := make([]model.Verdict, 0, len(selected))
	for _, v := range selected {
		verdicts = append(verdicts, o.invoke(ctx, v, claim))
	}

	updated, err := o.ledger.ApplyVerdicts(ctx, claimID, verdicts, ResolveStatus)
	if err != nil {
		return nil, fmt.Errorf("apply verdicts: %w", err)
	}

	o.logger.Info("verification run complete",
		zap.String("claim_id", claimID),
		zap.Int("agents", len(selected)),
		zap.String("status", string(updated.Status)),
	)
	return updated, nil
}

// invoke runs one agent with the configured timeout and converts every
// failure mode into a verdict.
func (o *Orchestrator) invoke(ctx context.Context, v agent.Verifier, claim *model.Claim) model.Verdict {
	info := v.Info()

	if o.agentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.agentTimeout)
		defer cancel()
	}

	type result struct {
		verdict model.Verdict
		err     error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("agent panicked: %v", r)}
			}
		}()
		// Content bytes are a collaborator's concern; the core supplies none.
		verdict, err := v.Verify(ctx, claim, nil)
		done <- result{verdict: verdict, err: err}
	}()

	select {
	case <-ctx.Done():
		o.logger.Warn("agent invocation timed out",
			zap.String("agent_id", info.ID),
			zap.String("claim_id", claim.ClaimID),
		)
		return executionErrorVerdict(info, ctx.Err())
	case res := <-done:
		if res.err != nil {
			o.logger.Warn("agent invocation failed",
				zap.String("agent_id", info.ID),
				zap.String("claim_id", claim.ClaimID),
				zap.Error(res.err),
			)
			return executionErrorVerdict(info, res.err)
		}
		return res.verdict
	}
}

// executionErrorVerdict synthesises the verdict recorded for an agent that
// failed to produce one.
func executionErrorVerdict(info agent.Info, cause error) model.Verdict {
	return agent.New(info, model.VerdictAgentExecutionError, cause.Error())
}

// ResolveStatus folds a claim's full verdict history, in order, into its
// status. The first verified_preliminary verdict wins and short-circuits;
// otherwise any unverified verdict yields unverified; otherwise the claim
// stays pending. First-match and order-sensitive — not a vote.
func ResolveStatus(history []model.Verdict) model.ClaimStatus {
	for _, v := range history {
		if v.Kind == model.VerdictVerifiedPreliminary {
			return model.StatusVerifiedPreliminary
		}
	}
	for _, v := range history {
		if v.Kind == model.VerdictUnverified {
			return model.StatusUnverified
		}
	}
	return model.StatusPendingVerification
}
