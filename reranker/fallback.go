//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

package reranker

import (
	"context"

	"github.com/ragware/kbcore/log"
)

// RerankOrFallback reranks results and degrades to the original, unranked
// candidate list when the scoring backend fails or the context deadline
// expires. The query pipeline keeps returning results instead of failing
// outright.
func RerankOrFallback(ctx context.Context, r Reranker, query *Query, results []*Result) []*Result {
	if r == nil || len(results) == 0 {
		return results
	}
	reranked, err := r.Rerank(ctx, query, results)
	if err != nil {
		log.Warnf("reranking failed, falling back to original order: %v", err)
		return results
	}
	return reranked
}
