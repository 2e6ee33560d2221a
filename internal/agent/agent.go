// Package agent defines the verification agent contract and the built-in
// verification strategies of a Helios node.
//
// An agent is polymorphic over a single capability: given a claim (and
// optionally the raw content, which the built-ins never use), produce
// exactly one verdict, synchronously. The orchestrator depends only on the
// Verifier interface; new strategies register without orchestrator changes.
package agent

import (
	"context"
	"time"

	"github.com/helios-protocol/helios/internal/model"
)

// Info identifies a verification agent and declares the content types it
// accepts. An empty ContentTypes set accepts every content type.
type Info struct {
	ID           string   `json:"agent_id"`
	Version      string   `json:"agent_version"`
	ContentTypes []string `json:"content_types,omitempty"`
}

// Accepts reports whether the agent will attempt a claim of the given
// content type.
func (i Info) Accepts(contentType string) bool {
	if len(i.ContentTypes) == 0 {
		return true
	}
	for _, ct := range i.ContentTypes {
		if ct == contentType {
			return true
		}
	}
	return false
}

// Verifier is the capability every verification strategy must expose.
type Verifier interface {
	// Info returns the agent's identity and content-type acceptance set.
	Info() Info

	// Verify produces exactly one verdict for the claim. content carries the
	// raw bytes when a collaborator supplies them; it may be nil. A non-nil
	// error is recorded by the orchestrator as an execution-error verdict
	// and never aborts the run.
	Verify(ctx context.Context, claim *model.Claim, content []byte) (model.Verdict, error)
}

// New builds a verdict stamped with the agent's identity and the current
// UTC time.
func New(info Info, kind model.VerdictKind, details any) model.Verdict {
	return model.Verdict{
		AgentID:      info.ID,
		AgentVersion: info.Version,
		ProducedAt:   time.Now().UTC(),
		Kind:         kind,
		Details:      details,
	}
}
