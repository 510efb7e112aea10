//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package crossencoder provides the cross-encoder reranking strategy.
// Every (query, document) pair is scored by a pairwise scoring model, which
// is the most accurate of the available strategies and the most expensive.
package crossencoder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/ragware/kbcore/log"
	"github.com/ragware/kbcore/reranker"
	"github.com/ragware/kbcore/reranker/internal/httpclient"
)

const (
	// DefaultModel is the default cross-encoder scoring model.
	DefaultModel = "cross-encoder/ms-marco-MiniLM-L-6-v2"

	envAPIKey = "RERANKER_API_KEY"
)

func init() {
	reranker.Register(reranker.StrategyCrossEncoder, func(cfg *reranker.Config) (reranker.Reranker, error) {
		var opts []Option
		if cfg.Scorer != nil {
			opts = append(opts, WithScorer(cfg.Scorer))
		}
		if cfg.TopK > 0 {
			opts = append(opts, WithTopK(cfg.TopK))
		}
		return New(opts...)
	})
}

// Verify that Reranker implements the reranker.Reranker interface.
var _ reranker.Reranker = (*Reranker)(nil)

// Reranker implements reranker.Reranker with a pairwise scoring model.
type Reranker struct {
	scorer   reranker.Scorer
	topK     int
	endpoint string
	apiKey   string
	model    string
	client   *httpclient.Client
}

// Option configures Reranker.
type Option func(*Reranker)

// WithScorer sets the pairwise scoring capability directly.
// When set, the HTTP endpoint options are ignored.
func WithScorer(s reranker.Scorer) Option {
	return func(r *Reranker) {
		r.scorer = s
	}
}

// WithTopK sets the number of top results to return. <= 0 means all.
func WithTopK(k int) Option {
	return func(r *Reranker) {
		r.topK = k
	}
}

// WithEndpoint sets the URL of a rerank-API-compatible scoring server.
func WithEndpoint(url string) Option {
	return func(r *Reranker) {
		r.endpoint = url
	}
}

// WithAPIKey sets the API key for the scoring server.
func WithAPIKey(key string) Option {
	return func(r *Reranker) {
		r.apiKey = key
	}
}

// WithModel sets the scoring model name.
func WithModel(model string) Option {
	return func(r *Reranker) {
		r.model = model
	}
}

// WithHTTPClient sets a custom HTTP client for the scoring server.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Reranker) {
		r.client = httpclient.NewClient(client)
	}
}

// New creates a cross-encoder reranker.
// A usable scoring model is required up front: when neither a Scorer nor an
// endpoint is configured the constructor fails instead of deferring the
// failure to the first Rerank call.
func New(opts ...Option) (*Reranker, error) {
	r := &Reranker{
		apiKey: os.Getenv(envAPIKey),
		model:  DefaultModel,
		client: httpclient.NewClient(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.scorer == nil {
		if r.endpoint == "" {
			return nil, errors.New("crossencoder: no scoring model available: configure a Scorer or an endpoint")
		}
		r.scorer = &httpScorer{
			client:   r.client,
			endpoint: r.endpoint,
			apiKey:   r.apiKey,
			model:    r.model,
		}
	}
	return r, nil
}

// Rerank implements the reranker.Reranker interface.
func (r *Reranker) Rerank(ctx context.Context, query *reranker.Query, results []*reranker.Result) ([]*reranker.Result, error) {
	if len(results) == 0 {
		return results, nil
	}

	start := time.Now()
	pairs := make([]reranker.Pair, len(results))
	for i, res := range results {
		pairs[i] = reranker.Pair{Query: query.Text, Text: res.Document.Content}
	}

	scores, err := r.scorer.Predict(ctx, pairs)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(results) {
		return nil, errors.New("crossencoder: scorer returned wrong number of scores")
	}

	scored := make([]*reranker.Result, len(results))
	for i, res := range results {
		scored[i] = &reranker.Result{Document: res.Document, Score: scores[i]}
	}
	reranker.SortByScore(scored)
	scored = reranker.TopK(scored, r.topK)

	log.Debugf("cross-encoder reranked %d candidates in %v", len(results), time.Since(start))
	return scored, nil
}

// httpScorer adapts the shared rerank HTTP client to the Scorer capability.
type httpScorer struct {
	client   *httpclient.Client
	endpoint string
	apiKey   string
	model    string
}

func (s *httpScorer) Predict(ctx context.Context, pairs []reranker.Pair) ([]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	req := httpclient.ScoreRequest{
		Model:     s.model,
		Query:     pairs[0].Query,
		Documents: make([]string, len(pairs)),
	}
	for i, p := range pairs {
		req.Documents[i] = p.Text
	}
	return s.client.Scores(ctx, s.endpoint, s.apiKey, req)
}
