//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package reranker provides result re-ranking for retrieval pipelines.
package reranker

import (
	"context"
	"sort"

	"github.com/ragware/kbcore/document"
)

// Reranker re-orders retrieval candidates by estimated relevance to a query.
type Reranker interface {
	// Rerank re-orders results by non-increasing relevance score.
	// The returned slice carries the scores assigned by the strategy;
	// ties keep their original relative order.
	Rerank(ctx context.Context, query *Query, results []*Result) ([]*Result, error)
}

// Query represents a search query for re-ranking.
type Query struct {
	// Text is the query text.
	Text string
}

// Result represents a rankable search result.
type Result struct {
	// Document is the candidate document.
	Document *document.Document

	// Score is the relevance score.
	Score float64
}

// Pair is a (query, document text) pair submitted to a pairwise scorer.
type Pair struct {
	Query string
	Text  string
}

// Scorer scores (query, document) pairs with one scalar relevance score each.
// Higher means more relevant. Scores are returned in input order.
type Scorer interface {
	Predict(ctx context.Context, pairs []Pair) ([]float64, error)
}

// Documents strips scores from results, keeping order.
func Documents(results []*Result) []*document.Document {
	docs := make([]*document.Document, len(results))
	for i, r := range results {
		docs[i] = r.Document
	}
	return docs
}

// SortByScore sorts results in place by non-increasing score.
// Ties keep their original relative order.
func SortByScore(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// TopK returns the first k results. A k <= 0 means all results.
func TopK(results []*Result, k int) []*Result {
	if k <= 0 || len(results) <= k {
		return results
	}
	return results[:k]
}
