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
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Summary renders the report as a short human-readable text block.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Retrieval evaluation %s\n", r.RunID)
	if r.DatasetVersion != "" {
		fmt.Fprintf(&b, "Dataset version: %s\n", r.DatasetVersion)
	}
	fmt.Fprintf(&b, "Queries: %d\n", r.TotalQueries)
	fmt.Fprintf(&b, "MRR: %.4f  MAP: %.4f\n", r.Overall.MRR, r.Overall.MAP)
	for _, k := range r.KValues {
		fmt.Fprintf(&b, "P@%d: %.4f  R@%d: %.4f\n",
			k, r.Overall.MeanPrecisionAtK[k], k, r.Overall.MeanRecallAtK[k])
	}
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		s, ok := r.ByDifficulty[d]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "[%s] n=%d MRR=%.4f MAP=%.4f\n", d, s.Count, s.MRR, s.MAP)
	}
	if len(r.Misses) > 0 {
		fmt.Fprintf(&b, "Sample misses (%d):\n", len(r.Misses))
		for _, m := range r.Misses {
			fmt.Fprintf(&b, "  - %s (expected %s)\n", m.Query, strings.Join(m.ExpectedFiles, ", "))
		}
	}
	return b.String()
}

// SaveJSON writes the report to path as indented JSON, replacing any
// existing file.
func (r *Report) SaveJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
