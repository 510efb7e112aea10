//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package lightweight

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragware/kbcore/document"
	"github.com/ragware/kbcore/reranker"
)

// fakeEmbedder returns a fixed vector per text, defaulting to the zero key.
type fakeEmbedder struct {
	vectors map[string][]float64
	deflt   []float64
}

func (f *fakeEmbedder) GetEmbedding(_ context.Context, text string) ([]float64, error) {
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return f.deflt, nil
}

func (f *fakeEmbedder) GetDimensions() int { return 2 }

func doc(id, content, filename string) *reranker.Result {
	return &reranker.Result{Document: &document.Document{
		ID:      id,
		Content: content,
		Metadata: map[string]any{
			document.MetaFileName: filename,
		},
	}}
}

func TestNewRequiresEmbedder(t *testing.T) {
	_, err := New()
	require.Error(t, err)

	_, err = New(WithEmbedder(&fakeEmbedder{}))
	assert.NoError(t, err)
}

func TestRerankBySimilarity(t *testing.T) {
	emb := &fakeEmbedder{
		vectors: map[string][]float64{
			"prezzi": {1, 0},
			// "vicino" points the same way as the query, "lontano" is orthogonal.
			"vicino":  {2, 0},
			"lontano": {0, 1},
		},
		deflt: []float64{0, 0},
	}
	r, err := New(WithEmbedder(emb))
	require.NoError(t, err)

	got, err := r.Rerank(context.Background(), &reranker.Query{Text: "prezzi"}, []*reranker.Result{
		doc("far", "lontano", "corpus.md"),
		doc("near", "vicino", "corpus.md"),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "near", got[0].Document.ID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.InDelta(t, 0.0, got[1].Score, 1e-9)
}

func TestRerankFilenameBoost(t *testing.T) {
	// Both candidates embed identically; only the filename match separates them.
	emb := &fakeEmbedder{
		vectors: map[string][]float64{"proposta fis": {1, 1}},
		deflt:   []float64{1, 1},
	}
	r, err := New(WithEmbedder(emb))
	require.NoError(t, err)

	got, err := r.Rerank(context.Background(), &reranker.Query{Text: "proposta fis"}, []*reranker.Result{
		doc("plain", "testo", "corpus.md"),
		doc("boosted", "testo", "proposta.md"),
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "boosted", got[0].Document.ID)
	assert.InDelta(t, DefaultFilenameBoost, got[0].Score/got[1].Score, 1e-9)
}

func TestRerankFilenameMatchIsCaseInsensitive(t *testing.T) {
	emb := &fakeEmbedder{deflt: []float64{1, 0}}
	r, err := New(WithEmbedder(emb))
	require.NoError(t, err)

	got, err := r.Rerank(context.Background(), &reranker.Query{Text: "PROPOSTA"}, []*reranker.Result{
		doc("a", "testo", "corpus.md"),
		doc("b", "testo", "Proposta.md"),
	})
	require.NoError(t, err)
	assert.Equal(t, "b", got[0].Document.ID)
}

func TestRerankPrefixCap(t *testing.T) {
	long := make([]byte, 2*DefaultPrefixLen)
	for i := range long {
		long[i] = 'x'
	}
	seen := ""
	emb := &capturingEmbedder{onText: func(text string) { seen = text }}
	r, err := New(WithEmbedder(emb))
	require.NoError(t, err)

	_, err = r.Rerank(context.Background(), &reranker.Query{Text: "q"}, []*reranker.Result{
		doc("long", string(long), "corpus.md"),
	})
	require.NoError(t, err)
	assert.Len(t, seen, DefaultPrefixLen)
}

func TestRerankPrefixCapCountsRunes(t *testing.T) {
	// Accented text is two bytes per rune; truncation must not split one.
	long := strings.Repeat("è", 2*DefaultPrefixLen)
	seen := ""
	emb := &capturingEmbedder{onText: func(text string) { seen = text }}
	r, err := New(WithEmbedder(emb))
	require.NoError(t, err)

	_, err = r.Rerank(context.Background(), &reranker.Query{Text: "q"}, []*reranker.Result{
		doc("long", long, "corpus.md"),
	})
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(seen))
	assert.Equal(t, DefaultPrefixLen, utf8.RuneCountInString(seen))
}

type capturingEmbedder struct {
	onText func(string)
}

func (c *capturingEmbedder) GetEmbedding(_ context.Context, text string) ([]float64, error) {
	if c.onText != nil {
		c.onText(text)
	}
	return []float64{1, 0}, nil
}

func (c *capturingEmbedder) GetDimensions() int { return 2 }

func TestRerankEmptyAndTopK(t *testing.T) {
	r, err := New(WithEmbedder(&fakeEmbedder{deflt: []float64{1, 0}}), WithTopK(1))
	require.NoError(t, err)

	got, err := r.Rerank(context.Background(), &reranker.Query{Text: "q"}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Rerank(context.Background(), &reranker.Query{Text: "q"}, []*reranker.Result{
		doc("a", "uno", "a.md"),
		doc("b", "due", "b.md"),
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 0}, []float64{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float64{0, 0}, []float64{1, 0}))
	assert.Zero(t, cosineSimilarity([]float64{1}, []float64{1, 0}))
	assert.Zero(t, cosineSimilarity(nil, nil))
}

func TestFactoryRegistration(t *testing.T) {
	r, err := reranker.New(reranker.StrategyLightweight, &reranker.Config{Embedder: &fakeEmbedder{}})
	require.NoError(t, err)
	assert.IsType(t, &Reranker{}, r)

	// A missing embedder is a construction-time failure.
	_, err = reranker.New(reranker.StrategyLightweight, &reranker.Config{})
	assert.Error(t, err)
}
