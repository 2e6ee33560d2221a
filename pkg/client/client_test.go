package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/helios-protocol/helios/pkg/client"
)

var ctx = context.Background()

func fakeNode(t *testing.T, getClaimHits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	// Method-prefixed ServeMux patterns need Go 1.22; dispatch manually so
	// the tests run on the Go 1.21 toolchain available here.
	mux.HandleFunc("/api/v1/claims", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req client.SubmitRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.ContentHash == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "content_hash required"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(client.Claim{
			ClaimID:     "claim_1",
			ContentHash: req.ContentHash,
			ContentType: req.ContentType,
			SubmitterID: req.SubmitterID,
			Status:      "pending_verification",
		})
	})

	mux.HandleFunc("/api/v1/claims/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/claims/claim_1":
			if getClaimHits != nil {
				getClaimHits.Add(1)
			}
			json.NewEncoder(w).Encode(client.Claim{ClaimID: "claim_1", Status: "pending_verification"})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/claims/claim_1/verify":
			json.NewEncoder(w).Encode(client.Claim{
				ClaimID: "claim_1",
				Status:  "verified_preliminary",
				VerificationHistory: []client.Verdict{
					{AgentID: "hash_check_v1", Kind: "verified_preliminary"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "claim not found"})
		}
	})

	mux.HandleFunc("/api/v1/ledger", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(client.LedgerOverview{Entries: 2, TailHash: "abc123"})
	})

	mux.HandleFunc("/api/v1/ledger/verify", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"valid": true})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSubmitClaim_roundTrip(t *testing.T) {
	srv := fakeNode(t, nil)
	c := client.New(srv.URL)

	claim, err := c.SubmitClaim(ctx, client.SubmitRequest{
		ContentHash: "abcdefghij1234567890",
		ContentType: "text/plain",
		SubmitterID: "s1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if claim.ClaimID != "claim_1" || claim.Status != "pending_verification" {
		t.Errorf("unexpected claim: %+v", claim)
	}
}

func TestSubmitClaim_apiError(t *testing.T) {
	srv := fakeNode(t, nil)
	c := client.New(srv.URL)

	_, err := c.SubmitClaim(ctx, client.SubmitRequest{ContentType: "text/plain", SubmitterID: "s1"})
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", apiErr.StatusCode)
	}
}

func TestGetClaim_notFound(t *testing.T) {
	srv := fakeNode(t, nil)
	c := client.New(srv.URL)

	_, err := c.GetClaim(ctx, "claim_nope")
	if !errors.Is(err, client.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetClaim_cacheServesRepeatReads(t *testing.T) {
	var hits atomic.Int64
	srv := fakeNode(t, &hits)
	c := client.New(srv.URL, client.WithCacheTTL(time.Minute))

	for i := 0; i < 3; i++ {
		if _, err := c.GetClaim(ctx, "claim_1"); err != nil {
			t.Fatal(err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("expected 1 upstream hit, got %d", got)
	}
}

func TestVerifyClaim_invalidatesCache(t *testing.T) {
	var hits atomic.Int64
	srv := fakeNode(t, &hits)
	c := client.New(srv.URL, client.WithCacheTTL(time.Minute))

	if _, err := c.GetClaim(ctx, "claim_1"); err != nil {
		t.Fatal(err)
	}

	claim, err := c.VerifyClaim(ctx, "claim_1", "")
	if err != nil {
		t.Fatal(err)
	}
	if claim.Status != "verified_preliminary" {
		t.Errorf("expected verified_preliminary, got %q", claim.Status)
	}

	// The stale cached claim must not be served after the run.
	if _, err := c.GetClaim(ctx, "claim_1"); err != nil {
		t.Fatal(err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("expected cache invalidation to force a refetch, got %d hits", got)
	}
}

func TestLedgerAndChain(t *testing.T) {
	srv := fakeNode(t, nil)
	c := client.New(srv.URL)

	overview, err := c.Ledger(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if overview.Entries != 2 || overview.TailHash != "abc123" {
		t.Errorf("unexpected overview: %+v", overview)
	}

	valid, err := c.VerifyChain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !valid {
		t.Error("expected valid chain")
	}
}
