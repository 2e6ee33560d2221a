package agent_test

import (
	"context"
	"testing"

	"github.com/helios-protocol/helios/internal/agent"
	"github.com/helios-protocol/helios/internal/model"
)

var ctx = context.Background()

func claimWithHash(hash string) *model.Claim {
	return &model.Claim{
		ClaimID:     "claim_test",
		SubmitterID: "user_alpha",
		ContentHash: hash,
		ContentType: "text/plain",
		Metadata:    map[string]any{},
		Status:      model.StatusPendingVerification,
	}
}

func TestHashCheck_plausibleHash(t *testing.T) {
	a := agent.NewHashCheckAgent(0)

	v, err := a.Verify(ctx, claimWithHash("abcdefghij1234567890"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != model.VerdictVerifiedPreliminary {
		t.Errorf("expected verified_preliminary, got %q", v.Kind)
	}
	if v.Confidence == nil || *v.Confidence != 0.6 {
		t.Errorf("expected confidence 0.6, got %v", v.Confidence)
	}
	if v.AgentID != a.Info().ID || v.AgentVersion != a.Info().Version {
		t.Errorf("verdict provenance mismatch: %s/%s", v.AgentID, v.AgentVersion)
	}
}

func TestHashCheck_shortHash(t *testing.T) {
	a := agent.NewHashCheckAgent(0)

	v, err := a.Verify(ctx, claimWithHash("abc"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != model.VerdictUnverified {
		t.Errorf("expected unverified, got %q", v.Kind)
	}
	if v.Confidence == nil || *v.Confidence != 0.2 {
		t.Errorf("expected confidence 0.2, got %v", v.Confidence)
	}
}

func TestHashCheck_missingHash(t *testing.T) {
	a := agent.NewHashCheckAgent(0)

	v, err := a.Verify(ctx, claimWithHash(""), nil)
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind != model.VerdictUnverified {
		t.Errorf("expected unverified, got %q", v.Kind)
	}
	if v.Confidence == nil || *v.Confidence != 0.1 {
		t.Errorf("expected confidence 0.1, got %v", v.Confidence)
	}
}

func TestHashCheck_customMinLength(t *testing.T) {
	a := agent.NewHashCheckAgent(3)

	v, _ := a.Verify(ctx, claimWithHash("abc"), nil)
	if v.Kind != model.VerdictVerifiedPreliminary {
		t.Errorf("min length 3 should accept a 3-char hash, got %q", v.Kind)
	}
}

func TestHashCheck_acceptsAllContentTypes(t *testing.T) {
	info := agent.NewHashCheckAgent(0).Info()
	for _, ct := range []string{"text/plain", "video/mp4", "application/octet-stream"} {
		if !info.Accepts(ct) {
			t.Errorf("empty acceptance set should accept %q", ct)
		}
	}
}
