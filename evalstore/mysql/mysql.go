//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package mysql provides a MySQL-backed evaluation store.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	// MySQL driver registration.
	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/ragmark/ragmark/evalstore"
	"github.com/ragmark/ragmark/log"
)

// Verify that Store implements the evalstore.Manager interface.
var _ evalstore.Manager = (*Store)(nil)

// options contains configuration options for the store.
type options struct {
	dsn string
	db  *sql.DB
}

// Option configures the store.
type Option func(*options)

// WithDSN sets the MySQL data source name.
func WithDSN(dsn string) Option {
	return func(o *options) {
		o.dsn = dsn
	}
}

// WithDB sets a pre-built database handle, taking precedence over the DSN.
func WithDB(db *sql.DB) Option {
	return func(o *options) {
		o.db = db
	}
}

// Store persists evaluation records in MySQL.
type Store struct {
	db *sql.DB
}

// New creates a MySQL evaluation store.
func New(opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	db := o.db
	if db == nil {
		if o.dsn == "" {
			return nil, fmt.Errorf("mysql: DSN or database handle is required")
		}
		var err error
		db, err = sql.Open("mysql", o.dsn)
		if err != nil {
			return nil, fmt.Errorf("mysql: open: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// EnsureSchema creates the evaluation tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("mysql: ensure schema: %w", err)
		}
	}
	return nil
}

// Save stores the record with overwrite semantics. The delete of any prior
// record for the same (test run, QA pair) and the insert of the new one
// share a transaction, so a failed save never clears a previous result.
func (s *Store) Save(ctx context.Context, record *evalstore.EvaluationRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("mysql: record is required")
	}
	if record.TestRunID == "" || record.QAPairID == "" {
		return "", fmt.Errorf("mysql: test run ID and QA pair ID are required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("mysql: begin save: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Errorf("rollback evaluation save: %v", err)
		}
	}()

	// Chunk links cascade with the deleted eval rows.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM evals WHERE test_run_id = ? AND qa_pair_id = ?`,
		record.TestRunID, record.QAPairID); err != nil {
		return "", fmt.Errorf("mysql: delete prior evaluation: %w", err)
	}

	perContext, err := marshalPerContextScores(record.Reasoning.ContextRelevancePerScores)
	if err != nil {
		return "", err
	}

	evalID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, insertEvalSQL,
		evalID,
		record.TestRunID,
		record.QAPairID,
		record.Lexical.BLEU,
		record.Lexical.RougeL,
		record.Lexical.RougeLPrecision,
		record.Lexical.RougeLRecall,
		record.Lexical.SquadEM,
		record.Lexical.SquadTokenF1,
		record.Lexical.ContentF1,
		record.Lexical.LexicalAggregate,
		record.Judged.AnswerRelevance,
		record.Judged.ContextRelevance,
		record.Judged.Groundedness,
		record.Judged.JudgedOverall,
		record.Answer,
		record.Reasoning.AnswerRelevance,
		record.Reasoning.ContextRelevance,
		record.Reasoning.Groundedness,
		perContext,
		record.Reasoning.SupportedClaims,
		record.Reasoning.TotalClaims,
	); err != nil {
		return "", fmt.Errorf("mysql: insert evaluation: %w", err)
	}

	for _, chunkID := range record.ChunkIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO eval_chunks (eval_id, chunk_id) VALUES (?, ?)`,
			evalID, chunkID); err != nil {
			return "", fmt.Errorf("mysql: link chunk %s: %w", chunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("mysql: commit save: %w", err)
	}
	log.Infof("saved evaluation %s for test run %s", evalID, record.TestRunID)
	return evalID, nil
}

// GetByTestRun returns every record of a run in insertion order.
func (s *Store) GetByTestRun(ctx context.Context, testRunID string) ([]*evalstore.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectEvalSQL+
		` WHERE test_run_id = ? ORDER BY created_at ASC, id ASC`, testRunID)
	if err != nil {
		return nil, fmt.Errorf("mysql: query test run %s: %w", testRunID, err)
	}
	defer rows.Close()

	var records []*evalstore.EvaluationRecord
	for rows.Next() {
		record, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: iterate test run %s: %w", testRunID, err)
	}
	return records, nil
}

// GetByRunAndQA returns the record for one QA pair within a run.
func (s *Store) GetByRunAndQA(ctx context.Context, testRunID, qaPairID string) (*evalstore.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectEvalSQL+
		` WHERE test_run_id = ? AND qa_pair_id = ? ORDER BY created_at DESC LIMIT 1`,
		testRunID, qaPairID)
	if err != nil {
		return nil, fmt.Errorf("mysql: query run %s qa %s: %w", testRunID, qaPairID, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("mysql: query run %s qa %s: %w", testRunID, qaPairID, err)
		}
		return nil, evalstore.ErrNotFound
	}
	return scanEvaluation(rows)
}

// GetChunkIDs returns the chunk IDs linked to an evaluation record.
func (s *Store) GetChunkIDs(ctx context.Context, evalID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id FROM eval_chunks WHERE eval_id = ? ORDER BY chunk_id ASC`, evalID)
	if err != nil {
		return nil, fmt.Errorf("mysql: query chunks of %s: %w", evalID, err)
	}
	defer rows.Close()

	var chunkIDs []string
	for rows.Next() {
		var chunkID string
		if err := rows.Scan(&chunkID); err != nil {
			return nil, fmt.Errorf("mysql: scan chunk row: %w", err)
		}
		chunkIDs = append(chunkIDs, chunkID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: iterate chunks of %s: %w", evalID, err)
	}
	return chunkIDs, nil
}

// DeleteByTestRun removes every record of a run. Chunk links cascade.
func (s *Store) DeleteByTestRun(ctx context.Context, testRunID string) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM evals WHERE test_run_id = ?`, testRunID)
	if err != nil {
		return 0, fmt.Errorf("mysql: delete run %s: %w", testRunID, err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mysql: delete run %s: %w", testRunID, err)
	}
	log.Infof("Deleted %d evaluation(s) of test run %s", deleted, testRunID)
	return deleted, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// scanEvaluation reads one evaluation row.
func scanEvaluation(rows *sql.Rows) (*evalstore.EvaluationRecord, error) {
	record := &evalstore.EvaluationRecord{}
	var perContext sql.NullString
	if err := rows.Scan(
		&record.ID,
		&record.TestRunID,
		&record.QAPairID,
		&record.Lexical.BLEU,
		&record.Lexical.RougeL,
		&record.Lexical.RougeLPrecision,
		&record.Lexical.RougeLRecall,
		&record.Lexical.SquadEM,
		&record.Lexical.SquadTokenF1,
		&record.Lexical.ContentF1,
		&record.Lexical.LexicalAggregate,
		&record.Judged.AnswerRelevance,
		&record.Judged.ContextRelevance,
		&record.Judged.Groundedness,
		&record.Judged.JudgedOverall,
		&record.Answer,
		&record.Reasoning.AnswerRelevance,
		&record.Reasoning.ContextRelevance,
		&record.Reasoning.Groundedness,
		&perContext,
		&record.Reasoning.SupportedClaims,
		&record.Reasoning.TotalClaims,
	); err != nil {
		return nil, fmt.Errorf("mysql: scan evaluation row: %w", err)
	}
	if perContext.Valid && perContext.String != "" {
		if err := json.Unmarshal([]byte(perContext.String), &record.Reasoning.ContextRelevancePerScores); err != nil {
			log.Warnf("malformed per-context scores on evaluation %s: %v", record.ID, err)
		}
	}
	return record, nil
}

// marshalPerContextScores serializes per-context scores, mapping an absent
// list to NULL.
func marshalPerContextScores(scores []float64) (any, error) {
	if scores == nil {
		return nil, nil
	}
	payload, err := json.Marshal(scores)
	if err != nil {
		return nil, fmt.Errorf("mysql: marshal per-context scores: %w", err)
	}
	return string(payload), nil
}
