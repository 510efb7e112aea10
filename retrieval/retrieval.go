//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package retrieval composes a search backend with an optional relevance
// reranker into one query pipeline.
package retrieval

import (
	"context"
	"errors"
	"time"

	"github.com/ragware/kbcore/document"
	"github.com/ragware/kbcore/reranker"
)

// Retriever is the first-stage search backend.
type Retriever interface {
	// Search returns at most k documents ranked by relevance to the query.
	Search(ctx context.Context, query string, k int) ([]*document.Document, error)
}

const (
	// DefaultRerankTimeout bounds the second-stage scoring call.
	DefaultRerankTimeout = 10 * time.Second
	// DefaultCandidateMultiplier widens the first-stage fetch so the
	// reranker has more candidates to reorder than the caller asked for.
	DefaultCandidateMultiplier = 3
)

// Pipeline retrieves candidates and reorders them with a reranker.
// A slow or failing reranker degrades to the first-stage order instead of
// failing the query.
type Pipeline struct {
	retriever     Retriever
	reranker      reranker.Reranker
	rerankTimeout time.Duration
	candidateMul  int
}

// Option configures the pipeline.
type Option func(*Pipeline)

// WithReranker sets the second-stage reranker. Nil disables reranking.
func WithReranker(r reranker.Reranker) Option {
	return func(p *Pipeline) {
		p.reranker = r
	}
}

// WithRerankTimeout bounds how long one reranking call may take.
func WithRerankTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.rerankTimeout = d
		}
	}
}

// WithCandidateMultiplier sets how many times k the first stage fetches.
func WithCandidateMultiplier(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.candidateMul = n
		}
	}
}

// New creates a retrieval pipeline over the given backend.
func New(retriever Retriever, opts ...Option) (*Pipeline, error) {
	if retriever == nil {
		return nil, errors.New("retrieval: retriever is required")
	}
	p := &Pipeline{
		retriever:     retriever,
		rerankTimeout: DefaultRerankTimeout,
		candidateMul:  DefaultCandidateMultiplier,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Search retrieves candidates for the query and returns the k best after
// reranking. First-stage errors propagate; reranking errors fall back to the
// first-stage order.
func (p *Pipeline) Search(ctx context.Context, query string, k int) ([]*document.Document, error) {
	if k <= 0 {
		return nil, errors.New("retrieval: k must be positive")
	}
	fetchK := k
	if p.reranker != nil {
		fetchK = k * p.candidateMul
	}
	docs, err := p.retriever.Search(ctx, query, fetchK)
	if err != nil {
		return nil, err
	}
	if p.reranker == nil || len(docs) == 0 {
		return capDocs(docs, k), nil
	}

	candidates := make([]*reranker.Result, 0, len(docs))
	for _, doc := range docs {
		candidates = append(candidates, &reranker.Result{Document: doc})
	}
	rerankCtx, cancel := context.WithTimeout(ctx, p.rerankTimeout)
	defer cancel()
	ranked := reranker.RerankOrFallback(rerankCtx, p.reranker, &reranker.Query{Text: query}, candidates)
	return capDocs(reranker.Documents(ranked), k), nil
}

func capDocs(docs []*document.Document, k int) []*document.Document {
	if len(docs) > k {
		return docs[:k]
	}
	return docs
}
