//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package eval

// PrecisionAtK returns the number of relevant keys within the first k
// retrieved, divided by k. The divisor stays k even when fewer than k items
// were retrieved. It returns 0 when k is not positive.
func PrecisionAtK(retrieved []string, relevant map[string]struct{}, k int) float64 {
	if k <= 0 {
		return 0
	}
	cut := retrieved
	if k < len(cut) {
		cut = cut[:k]
	}
	hits := 0
	for _, key := range cut {
		if _, ok := relevant[key]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// RecallAtK returns the fraction of relevant keys found within the first k
// retrieved. It returns 0 when there are no relevant keys.
func RecallAtK(retrieved []string, relevant map[string]struct{}, k int) float64 {
	if k <= 0 || len(relevant) == 0 {
		return 0
	}
	if k > len(retrieved) {
		k = len(retrieved)
	}
	hits := 0
	for _, key := range retrieved[:k] {
		if _, ok := relevant[key]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// ReciprocalRank returns 1/rank of the first relevant key in the retrieved
// list, or 0 when no relevant key appears.
func ReciprocalRank(retrieved []string, relevant map[string]struct{}) float64 {
	for i, key := range retrieved {
		if _, ok := relevant[key]; ok {
			return 1 / float64(i+1)
		}
	}
	return 0
}

// AveragePrecision returns the mean of precision values taken at each rank
// where a relevant key appears, normalized by the number of relevant keys.
func AveragePrecision(retrieved []string, relevant map[string]struct{}) float64 {
	if len(relevant) == 0 {
		return 0
	}
	hits := 0
	sum := 0.0
	for i, key := range retrieved {
		if _, ok := relevant[key]; ok {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	return sum / float64(len(relevant))
}

// relevantSet builds a membership set from expected file keys.
func relevantSet(expected []string) map[string]struct{} {
	set := make(map[string]struct{}, len(expected))
	for _, key := range expected {
		set[key] = struct{}{}
	}
	return set
}

// mean averages a slice, returning 0 for empty input.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
