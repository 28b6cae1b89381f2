//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package embedder provides interfaces for generating vector embeddings
// from text.
package embedder

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	// GetEmbedding generates an embedding vector for the given text.
	GetEmbedding(ctx context.Context, text string) ([]float64, error)

	// GetEmbeddings generates embedding vectors for a batch of texts,
	// preserving input order in the result.
	GetEmbeddings(ctx context.Context, texts []string) ([][]float64, error)

	// GetDimensions returns the dimensionality of the embedding vectors.
	GetDimensions() int
}
