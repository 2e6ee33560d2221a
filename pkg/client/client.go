// Package client provides the Helios Go SDK for submitting claims,
// triggering verification runs, and reading the ledger of a Helios node.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// APIError is returned when the node responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("node returned %d: %s", e.StatusCode, e.Message)
}

// ErrNotFound is reported when the node answers 404 for a claim or entry.
var ErrNotFound = errors.New("not found")

// Claim is the claim record as returned by the node API.
type Claim struct {
	ClaimID             string         `json:"claim_id"`
	CreatedAt           time.Time      `json:"created_at"`
	SubmitterID         string         `json:"submitter_id"`
	ContentHash         string         `json:"content_hash"`
	ContentType         string         `json:"content_type"`
	Metadata            map[string]any `json:"metadata"`
	VerificationHistory []Verdict      `json:"verification_history"`
	Status              string         `json:"status"`
}

// Verdict is one recorded agent opinion.
type Verdict struct {
	AgentID      string    `json:"agent_id"`
	AgentVersion string    `json:"agent_version"`
	ProducedAt   time.Time `json:"produced_at"`
	Kind         string    `json:"verdict"`
	Confidence   *float64  `json:"confidence,omitempty"`
	Details      any       `json:"details,omitempty"`
}

// Entry is one ledger entry.
type Entry struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Claim     *Claim    `json:"claim"`
	PrevHash  string    `json:"prev_hash"`
	Hash      string    `json:"hash"`
}

// SubmitRequest is the payload for SubmitClaim.
type SubmitRequest struct {
	ContentHash string         `json:"content_hash"`
	ContentType string         `json:"content_type"`
	SubmitterID string         `json:"submitter_id"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// LedgerOverview holds the chain length and current tail hash.
type LedgerOverview struct {
	Entries  int    `json:"entries"`
	TailHash string `json:"tail_hash"`
}

// AgentInfo identifies one registered verification agent.
type AgentInfo struct {
	ID           string   `json:"agent_id"`
	Version      string   `json:"agent_version"`
	ContentTypes []string `json:"content_types,omitempty"`
}

// Client is the Helios SDK entry point.
type Client struct {
	nodeBase   string
	httpClient *http.Client
	cache      *gocache.Cache // nil = caching disabled
}

// Option is a functional option for configuring a Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCacheTTL enables read-through caching of GetClaim results with the
// given TTL. Verification triggers invalidate the cached claim.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = gocache.New(ttl, 2*ttl)
	}
}

// New creates a Client for the node at nodeBase (e.g. "http://localhost:8080").
func New(nodeBase string, opts ...Option) *Client {
	c := &Client{
		nodeBase:   nodeBase,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SubmitClaim submits a new claim and returns it with its assigned id and
// initial status.
func (c *Client) SubmitClaim(ctx context.Context, req SubmitRequest) (*Claim, error) {
	var claim Claim
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/claims", req, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// GetClaim fetches a claim by id, serving from the cache when enabled.
func (c *Client) GetClaim(ctx context.Context, claimID string) (*Claim, error) {
	if c.cache != nil {
		if cached, ok := c.cache.Get(claimID); ok {
			return cached.(*Claim), nil
		}
	}

	var claim Claim
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/claims/"+claimID, nil, &claim); err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.SetDefault(claimID, &claim)
	}
	return &claim, nil
}

// VerifyClaim triggers a verification run for the claim. agentID may be
// empty to let the node select every applicable agent.
func (c *Client) VerifyClaim(ctx context.Context, claimID, agentID string) (*Claim, error) {
	var body any
	if agentID != "" {
		body = map[string]string{"agent_id": agentID}
	}

	var claim Claim
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/claims/"+claimID+"/verify", body, &claim)
	if err != nil {
		return nil, err
	}

	// The run mutated the claim server-side.
	if c.cache != nil {
		c.cache.Delete(claimID)
	}
	return &claim, nil
}

// Ledger returns the chain length and current tail hash.
func (c *Client) Ledger(ctx context.Context) (*LedgerOverview, error) {
	var overview LedgerOverview
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/ledger", nil, &overview); err != nil {
		return nil, err
	}
	return &overview, nil
}

// VerifyChain asks the node to walk its chain and reports whether linkage
// is intact.
func (c *Client) VerifyChain(ctx context.Context) (bool, error) {
	var resp struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/ledger/verify", nil, &resp); err != nil {
		return false, err
	}
	return resp.Valid, nil
}

// Entries returns the node's full chain in append order.
func (c *Client) Entries(ctx context.Context) ([]*Entry, error) {
	var resp struct {
		Entries []*Entry `json:"entries"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/ledger/entries", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// Agents returns the node's registered verification agents.
func (c *Client) Agents(ctx context.Context) ([]AgentInfo, error) {
	var resp struct {
		Agents []AgentInfo `json:"agents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/agents", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Agents, nil
}

// doJSON performs one JSON request/response round trip against the node.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.nodeBase+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
