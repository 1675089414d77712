// Package cinder is the HTTP client for the external moderation case
// service. All calls are JSON over HTTP with bearer-token auth; transient
// failures bubble up to the async dispatcher's retry policy.
package cinder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Entity is a target or actor as the case service sees it.
type Entity struct {
	EntityType string            `json:"entity_type"`
	Attributes map[string]string `json:"attributes"`
}

// ReportRequest opens a fresh case from a report with no existing job.
type ReportRequest struct {
	Entity       Entity `json:"entity"`
	Reporter     Entity `json:"reporter,omitempty"`
	Reason       string `json:"reason"`
	Message      string `json:"message,omitempty"`
	QueueSlug    string `json:"queue_slug,omitempty"`
	ConsideredAt string `json:"considered_at,omitempty"`
}

// DecisionRequest posts an adjudication, either against an existing job or
// as an override of a previously-synced decision.
type DecisionRequest struct {
	Action    string   `json:"action"`
	Notes     string   `json:"notes,omitempty"`
	PolicyIDs []string `json:"policy_uuids,omitempty"`
}

// AppealRequest files an appeal against a synced decision.
type AppealRequest struct {
	DecisionToAppealID string `json:"decision_to_appeal_id"`
	Reasoning          string `json:"reasoning"`
	QueueSlug          string `json:"queue_slug"`
}

// CreateReport files the very first report for a target. Returns the new
// job id.
func (c *Client) CreateReport(ctx context.Context, req ReportRequest) (string, error) {
	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := c.post(ctx, "/create_report", req, &resp); err != nil {
		return "", err
	}
	return resp.JobID, nil
}

// CreateDecision posts a decision against an existing job. Returns the
// external decision id.
func (c *Client) CreateDecision(ctx context.Context, jobID string, req DecisionRequest) (string, error) {
	var resp struct {
		UUID string `json:"uuid"`
	}
	if err := c.post(ctx, "/jobs/"+jobID+"/decision", req, &resp); err != nil {
		return "", err
	}
	return resp.UUID, nil
}

// CreateOverride posts a correction superseding a previously-synced
// decision. Returns the external decision id of the override.
func (c *Client) CreateOverride(ctx context.Context, decisionID string, req DecisionRequest) (string, error) {
	var resp struct {
		UUID string `json:"uuid"`
	}
	if err := c.post(ctx, "/decisions/"+decisionID+"/override/", req, &resp); err != nil {
		return "", err
	}
	return resp.UUID, nil
}

// CreateAppeal files an appeal. Returns the external id of the appeal job.
func (c *Client) CreateAppeal(ctx context.Context, req AppealRequest) (string, error) {
	var resp struct {
		ExternalID string `json:"external_id"`
	}
	if err := c.post(ctx, "/appeal", req, &resp); err != nil {
		return "", err
	}
	return resp.ExternalID, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode cinder request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cinder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cinder returned status %d for %s: %s", resp.StatusCode, path, snippet)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode cinder response: %w", err)
	}
	return nil
}
