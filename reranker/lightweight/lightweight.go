//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package lightweight provides the embedding-similarity reranking strategy.
// It trades some accuracy for much lower latency and resource usage than the
// cross-encoder strategy.
package lightweight

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/ragware/kbcore/document"
	"github.com/ragware/kbcore/embedder"
	"github.com/ragware/kbcore/reranker"
)

const (
	// DefaultPrefixLen caps how much of a candidate's text is embedded.
	// Embedding cost grows with input length; the leading text carries most
	// of the topical signal.
	DefaultPrefixLen = 500

	// DefaultFilenameBoost multiplies the similarity score when a query token
	// appears in the candidate's filename.
	DefaultFilenameBoost = 1.5
)

func init() {
	reranker.Register(reranker.StrategyLightweight, func(cfg *reranker.Config) (reranker.Reranker, error) {
		opts := []Option{WithEmbedder(cfg.Embedder)}
		if cfg.TopK > 0 {
			opts = append(opts, WithTopK(cfg.TopK))
		}
		return New(opts...)
	})
}

// Verify that Reranker implements the reranker.Reranker interface.
var _ reranker.Reranker = (*Reranker)(nil)

// Reranker implements reranker.Reranker with embedding cosine similarity and
// a filename-match boost.
type Reranker struct {
	embedder      embedder.Embedder
	topK          int
	prefixLen     int
	filenameBoost float64
}

// Option configures Reranker.
type Option func(*Reranker)

// WithEmbedder sets the embedding capability. Required.
func WithEmbedder(e embedder.Embedder) Option {
	return func(r *Reranker) {
		r.embedder = e
	}
}

// WithTopK sets the number of top results to return. <= 0 means all.
func WithTopK(k int) Option {
	return func(r *Reranker) {
		r.topK = k
	}
}

// WithPrefixLen sets how many characters of the candidate text are embedded.
func WithPrefixLen(n int) Option {
	return func(r *Reranker) {
		if n > 0 {
			r.prefixLen = n
		}
	}
}

// WithFilenameBoost sets the multiplicative boost applied on filename matches.
func WithFilenameBoost(boost float64) Option {
	return func(r *Reranker) {
		if boost > 0 {
			r.filenameBoost = boost
		}
	}
}

// New creates a lightweight reranker.
// The embedding model is required up front: a nil embedder fails at
// construction, not on the first Rerank call.
func New(opts ...Option) (*Reranker, error) {
	r := &Reranker{
		prefixLen:     DefaultPrefixLen,
		filenameBoost: DefaultFilenameBoost,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.embedder == nil {
		return nil, errors.New("lightweight: embedder is required")
	}
	return r, nil
}

// Rerank implements the reranker.Reranker interface.
func (r *Reranker) Rerank(ctx context.Context, query *reranker.Query, results []*reranker.Result) ([]*reranker.Result, error) {
	if len(results) == 0 {
		return results, nil
	}

	queryEmb, err := r.embedder.GetEmbedding(ctx, query.Text)
	if err != nil {
		return nil, err
	}
	queryTokens := strings.Fields(strings.ToLower(query.Text))

	scored := make([]*reranker.Result, len(results))
	for i, res := range results {
		docEmb, err := r.embedder.GetEmbedding(ctx, prefix(res.Document.Content, r.prefixLen))
		if err != nil {
			return nil, err
		}
		score := cosineSimilarity(queryEmb, docEmb)
		if r.matchesFilename(res.Document, queryTokens) {
			score *= r.filenameBoost
		}
		scored[i] = &reranker.Result{Document: res.Document, Score: score}
	}

	reranker.SortByScore(scored)
	return reranker.TopK(scored, r.topK), nil
}

// matchesFilename reports whether any query token appears in the candidate's
// filename metadata, case-insensitively.
func (r *Reranker) matchesFilename(doc *document.Document, queryTokens []string) bool {
	filename := strings.ToLower(doc.MetaString(document.MetaFileName, ""))
	if filename == "" {
		return false
	}
	for _, token := range queryTokens {
		if strings.Contains(filename, token) {
			return true
		}
	}
	return false
}

// prefix returns the first n characters of s. Counting runes rather than
// bytes keeps multibyte text valid after truncation.
func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or a zero-norm vector score 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
