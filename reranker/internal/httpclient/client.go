//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package httpclient provides the HTTP client shared by scoring-model backends.
// It speaks the rerank wire format used by Cohere- and Infinity-compatible
// servers.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ragware/kbcore/log"
)

// Client is a shared HTTP client for pairwise scoring backends.
type Client struct {
	client *http.Client
}

// NewClient creates a new Client.
func NewClient(client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{client: client}
}

// ScoreRequest represents the request payload for scoring.
type ScoreRequest struct {
	Model     string   `json:"model,omitempty"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
}

type scoreResponse struct {
	Results []scoreResult `json:"results"`
}

type scoreResult struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Scores sends the scoring request and returns one relevance score per input
// document, aligned to input order. Documents the server fails to score keep
// a zero score.
func (c *Client) Scores(ctx context.Context, endpoint, apiKey string, reqPayload ScoreRequest) ([]float64, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is empty")
	}

	reqBody, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	scores := make([]float64, len(reqPayload.Documents))
	for _, r := range apiResp.Results {
		if r.Index < 0 || r.Index >= len(scores) {
			log.Warnf("invalid index from scoring backend: %d", r.Index)
			continue
		}
		scores[r.Index] = r.RelevanceScore
	}
	return scores, nil
}
