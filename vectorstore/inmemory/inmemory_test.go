//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package inmemory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ragmark/ragmark/vectorstore"
)

func newTestStore(t *testing.T) *VectorStore {
	t.Helper()
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Add(ctx,
		&vectorstore.Document{ID: "x", Content: "x axis"}, []float64{1, 0, 0}))
	require.NoError(t, s.Add(ctx,
		&vectorstore.Document{ID: "y", Content: "y axis"}, []float64{0, 1, 0}))
	require.NoError(t, s.Add(ctx,
		&vectorstore.Document{ID: "xy", Content: "diagonal"}, []float64{1, 1, 0}))
	return s
}

// TestAddGet verifies the add/get round trip and overwrite semantics.
func TestAddGet(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := &vectorstore.Document{
		ID:       "c1",
		Content:  "chunk text",
		Metadata: map[string]any{"source": "doc.md"},
	}
	require.NoError(t, s.Add(ctx, doc, []float64{0.1, 0.2}))

	got, err := s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "chunk text", got.Content)
	assert.Equal(t, "doc.md", got.Metadata["source"])

	require.NoError(t, s.Add(ctx,
		&vectorstore.Document{ID: "c1", Content: "replaced"}, []float64{0.3, 0.4}))
	got, err = s.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "replaced", got.Content)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// TestAddValidation verifies invalid inputs are rejected.
func TestAddValidation(t *testing.T) {
	s := New()
	ctx := context.Background()
	assert.Error(t, s.Add(ctx, nil, []float64{1}))
	assert.Error(t, s.Add(ctx, &vectorstore.Document{}, []float64{1}))
	assert.Error(t, s.Add(ctx, &vectorstore.Document{ID: "a"}, nil))
}

// TestGetNotFound verifies missing IDs return ErrNotFound.
func TestGetNotFound(t *testing.T) {
	s := New()
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, vectorstore.ErrNotFound)
}

// TestDelete verifies delete removes exactly the named document.
func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Delete(ctx, "x"))
	_, err := s.Get(ctx, "x")
	assert.ErrorIs(t, err, vectorstore.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "x"), vectorstore.ErrNotFound)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// TestSearchOrdering verifies results come back by decreasing similarity.
func TestSearchOrdering(t *testing.T) {
	s := newTestStore(t)
	results, err := s.Search(context.Background(), []float64{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "x", results[0].Document.ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "xy", results[1].Document.ID)
	assert.Equal(t, "y", results[2].Document.ID)
}

// TestSearchLimit verifies the limit truncates the result set.
func TestSearchLimit(t *testing.T) {
	s := newTestStore(t)
	results, err := s.Search(context.Background(), []float64{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "x", results[0].Document.ID)

	results, err = s.Search(context.Background(), []float64{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

// TestCosineSimilarity verifies the similarity edge cases.
func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float64{1, 1}, []float64{2, 2}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	assert.Zero(t, cosineSimilarity([]float64{1}, []float64{1, 1}))
}
