package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/helios-protocol/helios/internal/agent"
	"github.com/helios-protocol/helios/internal/api"
	"github.com/helios-protocol/helios/internal/claims"
	"github.com/helios-protocol/helios/internal/ledger"
	"github.com/helios-protocol/helios/internal/model"
	"github.com/helios-protocol/helios/internal/orchestrator"
	"go.uber.org/zap"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return setupRouterWith(t, agent.NewHashCheckAgent(0))
}

func setupRouterWith(t *testing.T, agents ...agent.Verifier) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	chain := ledger.New()
	orch := orchestrator.New(chain, zap.NewNop())
	for _, a := range agents {
		orch.Register(a)
	}
	svc := claims.NewService(chain, zap.NewNop())

	r := gin.New()
	v1 := r.Group("/api/v1")
	api.NewClaimHandler(svc, orch, zap.NewNop()).Register(v1)
	api.NewLedgerHandler(chain, zap.NewNop()).Register(v1)
	return r
}

// pdfOnlyAgent accepts application/pdf claims and nothing else.
type pdfOnlyAgent struct{}

func (pdfOnlyAgent) Info() agent.Info {
	return agent.Info{ID: "pdf_only_v1", Version: "0.0.1", ContentTypes: []string{"application/pdf"}}
}

func (pdfOnlyAgent) Verify(context.Context, *model.Claim, []byte) (model.Verdict, error) {
	return model.Verdict{AgentID: "pdf_only_v1", Kind: model.VerdictVerifiedPreliminary}, nil
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitClaim_201(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/claims",
		`{"content_hash":"abcdefghij1234567890","content_type":"text/plain","submitter_id":"s1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var claim map[string]any
	json.Unmarshal(w.Body.Bytes(), &claim)
	if claim["status"] != "pending_verification" {
		t.Errorf("expected pending_verification, got %v", claim["status"])
	}
	if claim["claim_id"] == "" {
		t.Error("claim_id missing from response")
	}
}

func TestSubmitClaim_400_missingFields(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/claims",
		`{"content_type":"text/plain","submitter_id":"s1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetClaim_404(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/claims/claim_nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestVerifyClaim_endToEnd(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/claims",
		`{"content_hash":"abcdefghij1234567890","content_type":"text/plain","submitter_id":"s1"}`)
	var claim map[string]any
	json.Unmarshal(w.Body.Bytes(), &claim)
	id := claim["claim_id"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/v1/claims/"+id+"/verify", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var verified map[string]any
	json.Unmarshal(w.Body.Bytes(), &verified)
	if verified["status"] != "verified_preliminary" {
		t.Errorf("expected verified_preliminary, got %v", verified["status"])
	}
	history := verified["verification_history"].([]any)
	if len(history) != 1 {
		t.Errorf("expected 1 verdict, got %d", len(history))
	}

	// Second trigger hits the status guard.
	w = doJSON(t, router, http.MethodPost, "/api/v1/claims/"+id+"/verify", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 on repeat verify, got %d", w.Code)
	}
}

func TestVerifyClaim_shortHashUnverified(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/claims",
		`{"content_hash":"abc","content_type":"text/plain","submitter_id":"s1"}`)
	var claim map[string]any
	json.Unmarshal(w.Body.Bytes(), &claim)
	id := claim["claim_id"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/v1/claims/"+id+"/verify", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var verified map[string]any
	json.Unmarshal(w.Body.Bytes(), &verified)
	if verified["status"] != "unverified" {
		t.Errorf("expected unverified, got %v", verified["status"])
	}
}

func TestVerifyClaim_404_unknownClaim(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/claims/claim_nope/verify", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestVerifyClaim_404_unknownAgent(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/claims",
		`{"content_hash":"abcdefghij1234567890","content_type":"text/plain","submitter_id":"s1"}`)
	var claim map[string]any
	json.Unmarshal(w.Body.Bytes(), &claim)
	id := claim["claim_id"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/v1/claims/"+id+"/verify",
		`{"agent_id":"unregistered"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestVerifyClaim_422_noApplicableAgent(t *testing.T) {
	router := setupRouterWith(t, pdfOnlyAgent{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/claims",
		`{"content_hash":"abcdefghij1234567890","content_type":"text/plain","submitter_id":"s1"}`)
	var claim map[string]any
	json.Unmarshal(w.Body.Bytes(), &claim)
	id := claim["claim_id"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/v1/claims/"+id+"/verify", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	// The rejected run must leave the claim untouched.
	w = doJSON(t, router, http.MethodGet, "/api/v1/claims/"+id, "")
	var got map[string]any
	json.Unmarshal(w.Body.Bytes(), &got)
	if got["status"] != "pending_verification" {
		t.Errorf("claim status changed to %v without an applicable agent", got["status"])
	}
}

func TestVerifyClaim_409_returnsUnchangedClaim(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/claims",
		`{"content_hash":"abcdefghij1234567890","content_type":"text/plain","submitter_id":"s1"}`)
	var claim map[string]any
	json.Unmarshal(w.Body.Bytes(), &claim)
	id := claim["claim_id"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/v1/claims/"+id+"/verify", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on first verify, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/v1/claims/"+id+"/verify", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Error string         `json:"error"`
		Claim map[string]any `json:"claim"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error == "" {
		t.Error("409 response missing error message")
	}
	if resp.Claim["status"] != "verified_preliminary" {
		t.Errorf("409 claim status %v, expected verified_preliminary from the first run", resp.Claim["status"])
	}
	history := resp.Claim["verification_history"].([]any)
	if len(history) != 1 {
		t.Errorf("rejected run grew history to %d verdicts", len(history))
	}
}

func TestListAgents_200(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/agents", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Agents []map[string]any `json:"agents"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Agents) != 1 {
		t.Errorf("expected 1 agent, got %d", len(resp.Agents))
	}
}
