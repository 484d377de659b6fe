// Package fitgapsdk is a minimal Go client for the fitgap HTTP API.
package fitgapsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to a running fitgap server.
type Client struct {
	BaseURL      string
	EngagementID string
	APIKey       string
	BearerToken  string
	HTTPClient   *http.Client
	Timeout      time.Duration
}

// New creates a client with sane defaults.
func New(baseURL, engagementID string) *Client {
	return &Client{
		BaseURL:      baseURL,
		EngagementID: engagementID,
		Timeout:      30 * time.Second,
	}
}

// Requirement is the API requirement model (partial).
type Requirement struct {
	ReqID           string   `json:"req_id"`
	EngagementID    string   `json:"engagement_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	Stakeholder     string   `json:"stakeholder,omitempty"`
	Status          string   `json:"status"`
	Priority        string   `json:"priority"`
	BusinessProcess *string  `json:"business_process,omitempty"`
	SignOffStatus   string   `json:"sign_off_status"`
	CreatedAt       string   `json:"created_at"`
}

// Match is one catalogue hit.
type Match struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Group      string `json:"group"`
	Confidence string `json:"confidence"`
	Rationale  string `json:"rationale"`
}

// GapAnalysis is one classification result.
type GapAnalysis struct {
	ID                 string  `json:"id"`
	EngagementID       string  `json:"engagement_id"`
	ProcessDescription string  `json:"process_description"`
	Matches            []Match `json:"matches"`
	ReqID              *string `json:"req_id,omitempty"`
	TokensUsed         *int    `json:"tokens_used,omitempty"`
	Saved              bool    `json:"saved"`
}

// SweepResult reports a bulk analysis run.
type SweepResult struct {
	Processed int `json:"processed"`
	Results   []struct {
		ReqID         string `json:"req_id"`
		Title         string `json:"title"`
		TopMatchID    string `json:"top_match_id,omitempty"`
		TopMatchName  string `json:"top_match_name,omitempty"`
		TopConfidence string `json:"top_confidence,omitempty"`
	} `json:"results"`
}

// Usage is the server's provider consumption snapshot.
type Usage struct {
	CallCount         int64   `json:"call_count"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	EstimatedCostUSD  float64 `json:"estimated_cost_usd"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// CreateRequirement creates a requirement in the client's engagement.
func (c *Client) CreateRequirement(ctx context.Context, title, description string, tags []string) (Requirement, error) {
	body := map[string]any{
		"engagement_id": c.EngagementID,
		"title":         title,
		"description":   description,
		"tags":          tags,
	}
	var resp Requirement
	err := c.do(ctx, http.MethodPost, "v1/requirements", body, &resp)
	return resp, err
}

// ListRequirements lists the engagement's requirements.
func (c *Client) ListRequirements(ctx context.Context) ([]Requirement, error) {
	var resp []Requirement
	endpoint := "v1/requirements?engagement_id=" + url.QueryEscape(c.EngagementID)
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// GetRequirement fetches one requirement by id.
func (c *Client) GetRequirement(ctx context.Context, reqID string) (Requirement, error) {
	var resp Requirement
	endpoint := fmt.Sprintf("v1/requirements/%s?engagement_id=%s",
		url.PathEscape(reqID), url.QueryEscape(c.EngagementID))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Analyse classifies a free-form process description.
func (c *Client) Analyse(ctx context.Context, description string, limit int) (GapAnalysis, error) {
	body := map[string]any{
		"engagement_id":       c.EngagementID,
		"process_description": description,
	}
	if limit > 0 {
		body["limit"] = limit
	}
	var resp GapAnalysis
	err := c.do(ctx, http.MethodPost, "v1/gap-analysis", body, &resp)
	return resp, err
}

// AnalyseRequirement classifies a stored requirement.
func (c *Client) AnalyseRequirement(ctx context.Context, reqID string) (GapAnalysis, error) {
	body := map[string]any{
		"engagement_id": c.EngagementID,
		"req_id":        reqID,
	}
	var resp GapAnalysis
	err := c.do(ctx, http.MethodPost, "v1/gap-analysis", body, &resp)
	return resp, err
}

// AnalyseAll sweeps every open requirement in the engagement.
func (c *Client) AnalyseAll(ctx context.Context) (SweepResult, error) {
	var resp SweepResult
	endpoint := fmt.Sprintf("v1/engagement/%s/analyse-all", url.PathEscape(c.EngagementID))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// SignOff advances a requirement's sign-off state.
func (c *Client) SignOff(ctx context.Context, reqID, level, signedBy string) (Requirement, error) {
	body := map[string]any{"level": level, "signed_by": signedBy}
	var resp Requirement
	endpoint := fmt.Sprintf("v1/requirements/%s/sign-off?engagement_id=%s",
		url.PathEscape(reqID), url.QueryEscape(c.EngagementID))
	err := c.do(ctx, http.MethodPost, endpoint, body, &resp)
	return resp, err
}

// Summary fetches the engagement dashboard as raw JSON.
func (c *Client) Summary(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	endpoint := fmt.Sprintf("v1/engagement/%s/summary", url.PathEscape(c.EngagementID))
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// Usage fetches provider consumption since server start.
func (c *Client) Usage(ctx context.Context) (Usage, error) {
	var resp Usage
	err := c.do(ctx, http.MethodGet, "v1/usage", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
