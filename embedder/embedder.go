//
// Ragware is pleased to support the open source community by making kbcore available.
//
// Copyright (C) 2026 Ragware.  All rights reserved.
//
// kbcore is licensed under the Apache License Version 2.0.
//
//

// Package embedder defines the text embedding capability used by retrieval
// components.
package embedder

import "context"

// Embedder generates embedding vectors for text.
type Embedder interface {
	// GetEmbedding returns the embedding vector for the given text.
	GetEmbedding(ctx context.Context, text string) ([]float64, error)

	// GetDimensions returns the number of dimensions in the embedding vectors.
	GetDimensions() int
}
