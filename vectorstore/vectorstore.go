//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package vectorstore defines the storage interface for embedded document
// chunks used during retrieval.
package vectorstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document does not exist in the store.
var ErrNotFound = errors.New("vectorstore: document not found")

// Document is a chunk of retrievable text.
type Document struct {
	// ID uniquely identifies the chunk.
	ID string `json:"id"`
	// Content is the chunk text.
	Content string `json:"content"`
	// Metadata carries arbitrary chunk attributes.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ScoredDocument pairs a document with its similarity to a query vector.
type ScoredDocument struct {
	// Document is the matched chunk.
	Document *Document `json:"document"`
	// Score is the cosine similarity to the query, higher is closer.
	Score float64 `json:"score"`
}

// VectorStore stores embedded documents and retrieves the nearest ones.
type VectorStore interface {
	// Add stores a document with its embedding, replacing any existing
	// document with the same ID.
	Add(ctx context.Context, doc *Document, embedding []float64) error

	// Get returns the document with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Document, error)

	// Delete removes the document with the given ID, or ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Search returns up to limit documents ordered by decreasing
	// similarity to the query embedding.
	Search(ctx context.Context, embedding []float64, limit int) ([]*ScoredDocument, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the store.
	Close() error
}
