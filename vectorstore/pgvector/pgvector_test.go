//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package pgvector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRequiresConnection verifies that New rejects a configuration
// with neither a pool nor a connection string.
func TestNewRequiresConnection(t *testing.T) {
	_, err := New(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection string or pool is required")
}

// TestCreateTableSQL verifies the schema statement carries the configured
// table and dimensionality.
func TestCreateTableSQL(t *testing.T) {
	sql := createTableSQL("rag_chunks", 1536)
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS rag_chunks")
	assert.Contains(t, sql, "embedding vector(1536) NOT NULL")
	assert.Contains(t, sql, "id TEXT PRIMARY KEY")
}

// TestCreateIndexSQL verifies the cosine HNSW index statement.
func TestCreateIndexSQL(t *testing.T) {
	sql := createIndexSQL("rag_chunks")
	assert.Contains(t, sql, "rag_chunks_embedding_idx")
	assert.Contains(t, sql, "hnsw (embedding vector_cosine_ops)")
}

// TestUpsertSQL verifies conflicting IDs overwrite in place.
func TestUpsertSQL(t *testing.T) {
	sql := upsertSQL("rag_chunks")
	assert.Contains(t, sql, "INSERT INTO rag_chunks")
	assert.Contains(t, sql, "ON CONFLICT (id) DO UPDATE")
}

// TestSearchSQL verifies the cosine-distance ordering and score expression.
func TestSearchSQL(t *testing.T) {
	sql := searchSQL("rag_chunks")
	assert.Contains(t, sql, "1 - (embedding <=> $1) AS score")
	assert.Contains(t, sql, "ORDER BY embedding <=> $1")
	assert.Contains(t, sql, "LIMIT $2")
}

// TestToFloat32 verifies the vector conversion preserves order and length.
func TestToFloat32(t *testing.T) {
	out := toFloat32([]float64{0.5, -1, 2})
	assert.Equal(t, []float32{0.5, -1, 2}, out)
	assert.Empty(t, toFloat32(nil))
}
