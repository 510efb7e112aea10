//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragware/kbcore/document"
	"github.com/ragware/kbcore/reranker"
)

type fakeRetriever struct {
	docs  []*document.Document
	err   error
	lastK int
}

func (f *fakeRetriever) Search(_ context.Context, _ string, k int) ([]*document.Document, error) {
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	if k < len(f.docs) {
		return f.docs[:k], nil
	}
	return f.docs, nil
}

// reverseReranker reverses the candidate order so reordering is observable.
type reverseReranker struct {
	err error
}

func (r *reverseReranker) Rerank(_ context.Context, _ *reranker.Query, results []*reranker.Result) ([]*reranker.Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*reranker.Result, len(results))
	for i, res := range results {
		out[len(results)-1-i] = res
	}
	return out, nil
}

func docsNamed(names ...string) []*document.Document {
	docs := make([]*document.Document, 0, len(names))
	for _, name := range names {
		docs = append(docs, &document.Document{Name: name})
	}
	return docs
}

func names(docs []*document.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Name)
	}
	return out
}

func TestSearchWithoutReranker(t *testing.T) {
	backend := &fakeRetriever{docs: docsNamed("a", "b", "c")}
	p, err := New(backend)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(got))
	// No reranker means no widened fetch.
	assert.Equal(t, 2, backend.lastK)
}

func TestSearchRerankReorders(t *testing.T) {
	backend := &fakeRetriever{docs: docsNamed("a", "b", "c")}
	p, err := New(backend, WithReranker(&reverseReranker{}))
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, names(got))
	// First stage fetches k times the candidate multiplier.
	assert.Equal(t, 6, backend.lastK)
}

func TestSearchRerankFailureFallsBack(t *testing.T) {
	backend := &fakeRetriever{docs: docsNamed("a", "b", "c")}
	p, err := New(backend, WithReranker(&reverseReranker{err: errors.New("scorer down")}))
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(got))
}

func TestSearchRetrieverErrorPropagates(t *testing.T) {
	backend := &fakeRetriever{err: errors.New("index offline")}
	p, err := New(backend)
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "q", 3)
	assert.ErrorContains(t, err, "index offline")
}

func TestSearchEmptyResults(t *testing.T) {
	backend := &fakeRetriever{}
	p, err := New(backend, WithReranker(&reverseReranker{}))
	require.NoError(t, err)

	got, err := p.Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchInvalidK(t *testing.T) {
	p, err := New(&fakeRetriever{})
	require.NoError(t, err)
	_, err = p.Search(context.Background(), "q", 0)
	assert.Error(t, err)
}

func TestNewRequiresRetriever(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	backend := &fakeRetriever{docs: docsNamed("a", "b")}
	p, err := New(backend,
		WithReranker(&reverseReranker{}),
		WithRerankTimeout(time.Second),
		WithCandidateMultiplier(2))
	require.NoError(t, err)

	_, err = p.Search(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.lastK)
	assert.Equal(t, time.Second, p.rerankTimeout)
}
