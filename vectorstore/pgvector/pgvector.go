//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package pgvector provides a PostgreSQL vector store implementation
// backed by the pgvector extension.
package pgvector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgv "github.com/pgvector/pgvector-go"
	pgvpgx "github.com/pgvector/pgvector-go/pgx"

	"github.com/ragmark/ragmark/vectorstore"
)

// Verify that VectorStore implements the vectorstore.VectorStore interface.
var _ vectorstore.VectorStore = (*VectorStore)(nil)

const (
	// defaultTable is the default chunk table name.
	defaultTable = "rag_chunks"
	// defaultDimensions matches text-embedding-3-small.
	defaultDimensions = 1536
)

// options contains configuration options for the store.
type options struct {
	connString string
	pool       *pgxpool.Pool
	table      string
	dimensions int
}

// Option configures the store.
type Option func(*options)

// WithConnString sets the PostgreSQL connection string.
func WithConnString(connString string) Option {
	return func(o *options) {
		o.connString = connString
	}
}

// WithPool sets a pre-built connection pool, taking precedence over the
// connection string. The pool must have pgvector types registered.
func WithPool(pool *pgxpool.Pool) Option {
	return func(o *options) {
		o.pool = pool
	}
}

// WithTable sets the chunk table name.
func WithTable(table string) Option {
	return func(o *options) {
		o.table = table
	}
}

// WithDimensions sets the embedding dimensionality of the table.
func WithDimensions(dimensions int) Option {
	return func(o *options) {
		o.dimensions = dimensions
	}
}

// VectorStore stores embedded chunks in PostgreSQL with pgvector.
type VectorStore struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int
}

// New creates a PostgreSQL vector store and verifies connectivity.
func New(ctx context.Context, opts ...Option) (*VectorStore, error) {
	o := options{
		table:      defaultTable,
		dimensions: defaultDimensions,
	}
	for _, opt := range opts {
		opt(&o)
	}

	pool := o.pool
	if pool == nil {
		if o.connString == "" {
			return nil, fmt.Errorf("pgvector: connection string or pool is required")
		}
		cfg, err := pgxpool.ParseConfig(o.connString)
		if err != nil {
			return nil, fmt.Errorf("pgvector: parse config: %w", err)
		}
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return pgvpgx.RegisterTypes(ctx, conn)
		}
		pool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("pgvector: connect: %w", err)
		}
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pgvector: ping: %w", err)
	}
	return &VectorStore{
		pool:       pool,
		table:      o.table,
		dimensions: o.dimensions,
	}, nil
}

// EnsureSchema creates the pgvector extension, the chunk table, and its
// similarity index if they do not exist.
func (s *VectorStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		createTableSQL(s.table, s.dimensions),
		createIndexSQL(s.table),
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("pgvector: ensure schema: %w", err)
		}
	}
	return nil
}

// Add stores a document with its embedding, replacing any existing
// document with the same ID.
func (s *VectorStore) Add(ctx context.Context, doc *vectorstore.Document, embedding []float64) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("pgvector: document and document ID are required")
	}
	if len(embedding) != s.dimensions {
		return fmt.Errorf("pgvector: embedding has %d dimensions, table expects %d",
			len(embedding), s.dimensions)
	}
	_, err := s.pool.Exec(ctx, upsertSQL(s.table),
		doc.ID, doc.Content, doc.Metadata, pgv.NewVector(toFloat32(embedding)))
	if err != nil {
		return fmt.Errorf("pgvector: add document %s: %w", doc.ID, err)
	}
	return nil
}

// Get returns the document with the given ID.
func (s *VectorStore) Get(ctx context.Context, id string) (*vectorstore.Document, error) {
	doc := &vectorstore.Document{ID: id}
	err := s.pool.QueryRow(ctx, getSQL(s.table), id).Scan(&doc.Content, &doc.Metadata)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, vectorstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pgvector: get document %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes the document with the given ID.
func (s *VectorStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, deleteSQL(s.table), id)
	if err != nil {
		return fmt.Errorf("pgvector: delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return vectorstore.ErrNotFound
	}
	return nil
}

// Search returns up to limit documents ordered by decreasing cosine
// similarity to the query embedding.
func (s *VectorStore) Search(ctx context.Context, embedding []float64, limit int) ([]*vectorstore.ScoredDocument, error) {
	if len(embedding) != s.dimensions {
		return nil, fmt.Errorf("pgvector: query embedding has %d dimensions, table expects %d",
			len(embedding), s.dimensions)
	}
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, searchSQL(s.table),
		pgv.NewVector(toFloat32(embedding)), limit)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	var results []*vectorstore.ScoredDocument
	for rows.Next() {
		doc := &vectorstore.Document{}
		scored := &vectorstore.ScoredDocument{Document: doc}
		if err := rows.Scan(&doc.ID, &doc.Content, &doc.Metadata, &scored.Score); err != nil {
			return nil, fmt.Errorf("pgvector: scan search row: %w", err)
		}
		results = append(results, scored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: search rows: %w", err)
	}
	return results, nil
}

// Count returns the number of stored documents.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, countSQL(s.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgvector: count: %w", err)
	}
	return count, nil
}

// Close releases the connection pool.
func (s *VectorStore) Close() error {
	s.pool.Close()
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
