//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package eval provides the offline evaluation harness for retrieval quality:
// a labeled ground-truth dataset, textbook ranking metrics and an evaluator
// that scores a retrieval backend against the dataset.
package eval

import (
	"encoding/json"
	"fmt"
	"os"
)

// Difficulty grades how hard a ground-truth query is for retrieval.
type Difficulty string

// Difficulty tags.
const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// genericClientBucket groups cases without a client scope in statistics.
const genericClientBucket = "Generic"

// Case is one labeled ground-truth query: what a user asked and which
// documents a perfect retrieval would return. Cases are read-only fixtures.
type Case struct {
	// Query is the user question.
	Query string `json:"query"`
	// ExpectedFiles lists the relevant documents as "client/filename" keys.
	ExpectedFiles []string `json:"expected_files"`
	// Client scopes the query to one client's corpus. Empty means the query
	// spans clients.
	Client string `json:"client,omitempty"`
	// FileType tags the kind of document the query targets.
	FileType string `json:"file_type,omitempty"`
	// Difficulty grades the query.
	Difficulty Difficulty `json:"difficulty"`
}

// Validate reports whether the case is well formed.
func (c *Case) Validate() error {
	if c.Query == "" {
		return fmt.Errorf("case has empty query")
	}
	if len(c.ExpectedFiles) == 0 {
		return fmt.Errorf("case %q has no expected files", c.Query)
	}
	switch c.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return nil
	default:
		return fmt.Errorf("case %q has invalid difficulty %q", c.Query, c.Difficulty)
	}
}

// Dataset is an ordered, versioned sequence of evaluation cases.
// The only lifecycle event is whole-corpus replacement; there is no runtime
// mutation.
type Dataset struct {
	// Version identifies the labeled corpus revision.
	Version string `json:"version,omitempty"`
	// Cases are the ground-truth fixtures, in label order.
	Cases []Case `json:"cases"`
}

// NewDataset validates the cases and builds a dataset.
// A malformed case is a configuration error and fails immediately.
func NewDataset(version string, cases []Case) (*Dataset, error) {
	for i := range cases {
		if err := cases[i].Validate(); err != nil {
			return nil, fmt.Errorf("dataset case %d: %w", i, err)
		}
	}
	return &Dataset{Version: version, Cases: cases}, nil
}

// LoadDataset reads and validates a dataset from a JSON file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	validated, err := NewDataset(ds.Version, ds.Cases)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return validated, nil
}

// Len returns the number of cases.
func (d *Dataset) Len() int {
	return len(d.Cases)
}

// ByDifficulty returns a read-only view with only the cases tagged with the
// given difficulty.
func (d *Dataset) ByDifficulty(difficulty Difficulty) *Dataset {
	filtered := &Dataset{Version: d.Version}
	for _, c := range d.Cases {
		if c.Difficulty == difficulty {
			filtered.Cases = append(filtered.Cases, c)
		}
	}
	return filtered
}

// ByClient returns a read-only view with only the cases scoped to the given
// client.
func (d *Dataset) ByClient(client string) *Dataset {
	filtered := &Dataset{Version: d.Version}
	for _, c := range d.Cases {
		if c.Client == client {
			filtered.Cases = append(filtered.Cases, c)
		}
	}
	return filtered
}

// DatasetStats summarizes the corpus composition.
type DatasetStats struct {
	TotalQueries int                `json:"total_queries"`
	ByDifficulty map[Difficulty]int `json:"by_difficulty"`
	ByClient     map[string]int     `json:"by_client"`
	ByFileType   map[string]int     `json:"by_file_type"`
}

// Stats returns counts grouped by difficulty, client and file type.
// Cases without a client scope land in the "Generic" bucket.
func (d *Dataset) Stats() DatasetStats {
	stats := DatasetStats{
		TotalQueries: len(d.Cases),
		ByDifficulty: make(map[Difficulty]int),
		ByClient:     make(map[string]int),
		ByFileType:   make(map[string]int),
	}
	for _, c := range d.Cases {
		stats.ByDifficulty[c.Difficulty]++
		client := c.Client
		if client == "" {
			client = genericClientBucket
		}
		stats.ByClient[client]++
		if c.FileType != "" {
			stats.ByFileType[c.FileType]++
		}
	}
	return stats
}
