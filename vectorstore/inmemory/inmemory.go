//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory vector store implementation,
// suitable for tests and small corpora.
package inmemory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ragmark/ragmark/vectorstore"
)

// Verify that VectorStore implements the vectorstore.VectorStore interface.
var _ vectorstore.VectorStore = (*VectorStore)(nil)

type entry struct {
	doc       *vectorstore.Document
	embedding []float64
}

// VectorStore keeps documents and embeddings in process memory.
// It is safe for concurrent use.
type VectorStore struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty in-memory vector store.
func New() *VectorStore {
	return &VectorStore{entries: make(map[string]entry)}
}

// Add stores a document with its embedding, replacing any existing
// document with the same ID.
func (s *VectorStore) Add(ctx context.Context, doc *vectorstore.Document, embedding []float64) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document and document ID are required")
	}
	if len(embedding) == 0 {
		return fmt.Errorf("embedding is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[doc.ID] = entry{doc: cloneDocument(doc), embedding: embedding}
	return nil
}

// Get returns the document with the given ID.
func (s *VectorStore) Get(ctx context.Context, id string) (*vectorstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, vectorstore.ErrNotFound
	}
	return cloneDocument(e.doc), nil
}

// Delete removes the document with the given ID.
func (s *VectorStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return vectorstore.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// Search returns up to limit documents ordered by decreasing cosine
// similarity to the query embedding.
func (s *VectorStore) Search(ctx context.Context, embedding []float64, limit int) ([]*vectorstore.ScoredDocument, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding is required")
	}
	if limit <= 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]*vectorstore.ScoredDocument, 0, len(s.entries))
	for _, e := range s.entries {
		scored = append(scored, &vectorstore.ScoredDocument{
			Document: cloneDocument(e.doc),
			Score:    cosineSimilarity(embedding, e.embedding),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// Count returns the number of stored documents.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close releases resources held by the store.
func (s *VectorStore) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between a and b.
// Mismatched lengths and zero vectors yield 0.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func cloneDocument(doc *vectorstore.Document) *vectorstore.Document {
	clone := &vectorstore.Document{
		ID:      doc.ID,
		Content: doc.Content,
	}
	if doc.Metadata != nil {
		clone.Metadata = make(map[string]any, len(doc.Metadata))
		for k, v := range doc.Metadata {
			clone.Metadata[k] = v
		}
	}
	return clone
}
