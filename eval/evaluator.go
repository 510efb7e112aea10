//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package eval

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"

	"github.com/ragware/kbcore/document"
	"github.com/ragware/kbcore/log"
)

// Retriever is the search backend under evaluation.
type Retriever interface {
	// Search returns at most k documents ranked by relevance to the query.
	Search(ctx context.Context, query string, k int) ([]*document.Document, error)
}

var defaultKValues = []int{1, 3, 5, 10}

const defaultMissSampleSize = 3

// Evaluator runs a labeled dataset against a retrieval backend and
// aggregates ranking metrics.
type Evaluator struct {
	retriever      Retriever
	kValues        []int
	missSampleSize int
	concurrency    int
}

// Option configures the evaluator.
type Option func(*Evaluator)

// WithKValues sets the cutoff depths at which precision and recall are
// measured. Values are deduplicated and sorted ascending.
func WithKValues(ks ...int) Option {
	return func(e *Evaluator) {
		if len(ks) > 0 {
			e.kValues = ks
		}
	}
}

// WithMissSampleSize caps how many missed queries the report keeps per run.
func WithMissSampleSize(n int) Option {
	return func(e *Evaluator) {
		if n >= 0 {
			e.missSampleSize = n
		}
	}
}

// WithConcurrency farms cases out to n parallel workers. Use only when the
// retrieval backend is read-only and safe for concurrent calls; the default
// is one case at a time.
func WithConcurrency(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// New creates an evaluator for the given retrieval backend.
func New(retriever Retriever, opts ...Option) (*Evaluator, error) {
	if retriever == nil {
		return nil, errors.New("eval: retriever is required")
	}
	e := &Evaluator{
		retriever:      retriever,
		kValues:        defaultKValues,
		missSampleSize: defaultMissSampleSize,
		concurrency:    1,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.kValues = normalizeKValues(e.kValues)
	return e, nil
}

func normalizeKValues(ks []int) []int {
	seen := make(map[int]struct{}, len(ks))
	out := make([]int, 0, len(ks))
	for _, k := range ks {
		if k <= 0 {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	if len(out) == 0 {
		out = append(out, defaultKValues...)
	}
	sort.Ints(out)
	return out
}

// CaseResult holds the per-query outcome of one evaluation case.
type CaseResult struct {
	Query          string          `json:"query"`
	Client         string          `json:"client,omitempty"`
	Difficulty     Difficulty      `json:"difficulty"`
	ExpectedFiles  []string        `json:"expected_files"`
	RetrievedFiles []string        `json:"retrieved_files"`
	ReciprocalRank float64         `json:"reciprocal_rank"`
	AveragePrec    float64         `json:"average_precision"`
	PrecisionAtK   map[int]float64 `json:"precision_at_k"`
	RecallAtK      map[int]float64 `json:"recall_at_k"`
	Err            string          `json:"error,omitempty"`
}

// Hit reports whether at least one expected file was retrieved.
func (r *CaseResult) Hit() bool {
	return r.ReciprocalRank > 0
}

// MetricSummary aggregates ranking metrics over a group of cases.
type MetricSummary struct {
	Count            int             `json:"count"`
	MRR              float64         `json:"mrr"`
	MAP              float64         `json:"map"`
	MeanPrecisionAtK map[int]float64 `json:"mean_precision_at_k"`
	MeanRecallAtK    map[int]float64 `json:"mean_recall_at_k"`
}

// Miss records a query for which no expected file was retrieved.
type Miss struct {
	Query         string   `json:"query"`
	ExpectedFiles []string `json:"expected_files"`
	Retrieved     []string `json:"retrieved_files"`
}

// Report is the full outcome of one evaluation run.
type Report struct {
	RunID          string                       `json:"run_id"`
	DatasetVersion string                       `json:"dataset_version,omitempty"`
	GeneratedAt    time.Time                    `json:"generated_at"`
	TotalQueries   int                          `json:"total_queries"`
	KValues        []int                        `json:"k_values"`
	Overall        MetricSummary                `json:"overall"`
	ByDifficulty   map[Difficulty]MetricSummary `json:"by_difficulty"`
	Misses         []Miss                       `json:"misses,omitempty"`
	Results        []CaseResult                 `json:"results"`
}

// Evaluate runs every case in the dataset against the retriever and returns
// the aggregated report. Each case issues a single search at the largest
// configured cutoff; failed searches score zero and carry the error in the
// per-case result. Case order in the report matches dataset order.
func (e *Evaluator) Evaluate(ctx context.Context, dataset *Dataset) (*Report, error) {
	if dataset == nil || dataset.Len() == 0 {
		return nil, errors.New("eval: dataset is empty")
	}
	maxK := e.kValues[len(e.kValues)-1]

	results := make([]CaseResult, dataset.Len())
	if e.concurrency > 1 {
		pool, err := ants.NewPool(e.concurrency)
		if err != nil {
			return nil, err
		}
		defer pool.Release()

		var wg sync.WaitGroup
		for i := range dataset.Cases {
			idx := i
			c := dataset.Cases[i]
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				results[idx] = e.evaluateCase(ctx, c, maxK)
			})
			if submitErr != nil {
				wg.Done()
				results[idx] = e.evaluateCase(ctx, c, maxK)
			}
		}
		wg.Wait()
	} else {
		for i := range dataset.Cases {
			results[i] = e.evaluateCase(ctx, dataset.Cases[i], maxK)
		}
	}

	report := &Report{
		RunID:          uuid.NewString(),
		DatasetVersion: dataset.Version,
		GeneratedAt:    time.Now(),
		TotalQueries:   dataset.Len(),
		KValues:        e.kValues,
		Overall:        e.summarize(results),
		ByDifficulty:   make(map[Difficulty]MetricSummary),
		Results:        results,
	}
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		group := make([]CaseResult, 0, len(results))
		for _, r := range results {
			if r.Difficulty == d {
				group = append(group, r)
			}
		}
		if len(group) > 0 {
			report.ByDifficulty[d] = e.summarize(group)
		}
	}
	for _, r := range results {
		if r.Hit() {
			continue
		}
		if len(report.Misses) >= e.missSampleSize {
			break
		}
		report.Misses = append(report.Misses, Miss{
			Query:         r.Query,
			ExpectedFiles: r.ExpectedFiles,
			Retrieved:     r.RetrievedFiles,
		})
	}
	return report, nil
}

func (e *Evaluator) evaluateCase(ctx context.Context, c Case, maxK int) CaseResult {
	result := CaseResult{
		Query:         c.Query,
		Client:        c.Client,
		Difficulty:    c.Difficulty,
		ExpectedFiles: c.ExpectedFiles,
		PrecisionAtK:  make(map[int]float64, len(e.kValues)),
		RecallAtK:     make(map[int]float64, len(e.kValues)),
	}
	docs, err := e.retriever.Search(ctx, c.Query, maxK)
	if err != nil {
		log.Warnf("eval: search failed for query %q: %v", c.Query, err)
		result.Err = err.Error()
		for _, k := range e.kValues {
			result.PrecisionAtK[k] = 0
			result.RecallAtK[k] = 0
		}
		return result
	}
	retrieved := make([]string, 0, len(docs))
	for _, doc := range docs {
		retrieved = append(retrieved, doc.RelPath())
	}
	result.RetrievedFiles = retrieved

	relevant := relevantSet(c.ExpectedFiles)
	result.ReciprocalRank = ReciprocalRank(retrieved, relevant)
	result.AveragePrec = AveragePrecision(retrieved, relevant)
	for _, k := range e.kValues {
		result.PrecisionAtK[k] = PrecisionAtK(retrieved, relevant, k)
		result.RecallAtK[k] = RecallAtK(retrieved, relevant, k)
	}
	return result
}

func (e *Evaluator) summarize(results []CaseResult) MetricSummary {
	summary := MetricSummary{
		Count:            len(results),
		MeanPrecisionAtK: make(map[int]float64, len(e.kValues)),
		MeanRecallAtK:    make(map[int]float64, len(e.kValues)),
	}
	rrs := make([]float64, 0, len(results))
	aps := make([]float64, 0, len(results))
	for _, r := range results {
		rrs = append(rrs, r.ReciprocalRank)
		aps = append(aps, r.AveragePrec)
	}
	summary.MRR = mean(rrs)
	summary.MAP = mean(aps)
	for _, k := range e.kValues {
		ps := make([]float64, 0, len(results))
		rs := make([]float64, 0, len(results))
		for _, r := range results {
			ps = append(ps, r.PrecisionAtK[k])
			rs = append(rs, r.RecallAtK[k])
		}
		summary.MeanPrecisionAtK[k] = mean(ps)
		summary.MeanRecallAtK[k] = mean(rs)
	}
	return summary
}
