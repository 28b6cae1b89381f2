//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package evalstore defines the persistence types and interface for
// evaluation results.
package evalstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("evalstore: record not found")

// QAPair is a reference question/answer pair under evaluation.
type QAPair struct {
	// ID uniquely identifies the pair.
	ID string `json:"id"`
	// Question is the query posed to the RAG system.
	Question string `json:"question"`
	// Answer is the reference answer.
	Answer string `json:"answer"`
}

// Hash fingerprints the pair for duplicate detection, insensitive to case
// and surrounding whitespace.
func (p QAPair) Hash() string {
	content := fmt.Sprintf("%s||%s",
		strings.ToLower(strings.TrimSpace(p.Question)),
		strings.ToLower(strings.TrimSpace(p.Answer)))
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// LexicalMetrics holds the deterministic text overlap scores.
type LexicalMetrics struct {
	BLEU             float64 `json:"bleu"`
	RougeL           float64 `json:"rouge_l"`
	RougeLPrecision  float64 `json:"rouge_l_precision"`
	RougeLRecall     float64 `json:"rouge_l_recall"`
	SquadEM          float64 `json:"squad_em"`
	SquadTokenF1     float64 `json:"squad_token_f1"`
	ContentF1        float64 `json:"content_f1"`
	LexicalAggregate float64 `json:"lexical_aggregate"`
}

// JudgedMetrics holds the LLM-judged RAG triad scores on the 0-3 scale.
type JudgedMetrics struct {
	AnswerRelevance  float64 `json:"answer_relevance"`
	ContextRelevance float64 `json:"context_relevance"`
	Groundedness     float64 `json:"groundedness"`
	JudgedOverall    float64 `json:"llm_judged_overall"`
}

// JudgeReasoning holds the judge's explanations alongside the scores.
type JudgeReasoning struct {
	AnswerRelevance           string    `json:"answer_relevance,omitempty"`
	ContextRelevance          string    `json:"context_relevance,omitempty"`
	Groundedness              string    `json:"groundedness,omitempty"`
	ContextRelevancePerScores []float64 `json:"context_relevance_per_context,omitempty"`
	SupportedClaims           int       `json:"groundedness_supported_claims"`
	TotalClaims               int       `json:"groundedness_total_claims"`
}

// EvaluationRecord is one persisted evaluation of a QA pair within a run.
type EvaluationRecord struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`
	// TestRunID is the evaluation run this record belongs to.
	TestRunID string `json:"test_run_id"`
	// QAPairID is the evaluated QA pair.
	QAPairID string `json:"qa_pair_id"`
	// Answer is the generated answer that was scored.
	Answer string `json:"answer"`
	// Lexical holds the deterministic overlap metrics.
	Lexical LexicalMetrics `json:"lexical"`
	// Judged holds the LLM-judged metrics.
	Judged JudgedMetrics `json:"judged"`
	// Reasoning holds the judge's explanations.
	Reasoning JudgeReasoning `json:"reasoning"`
	// ChunkIDs lists the retrieved chunks the answer was generated from.
	ChunkIDs []string `json:"chunk_ids,omitempty"`
}

// Manager persists and retrieves evaluation records.
type Manager interface {
	// Save stores the record with overwrite semantics: any prior record for
	// the same (test run, QA pair) is replaced in the same transaction, and
	// the chunk links follow the record. Returns the new record ID.
	Save(ctx context.Context, record *EvaluationRecord) (string, error)

	// GetByTestRun returns every record of a run in insertion order.
	GetByTestRun(ctx context.Context, testRunID string) ([]*EvaluationRecord, error)

	// GetByRunAndQA returns the record for one QA pair within a run,
	// or ErrNotFound.
	GetByRunAndQA(ctx context.Context, testRunID, qaPairID string) (*EvaluationRecord, error)

	// GetChunkIDs returns the chunk IDs linked to an evaluation record.
	GetChunkIDs(ctx context.Context, evalID string) ([]string, error)

	// DeleteByTestRun removes every record of a run, cascading to the
	// chunk links. Returns the number of records removed.
	DeleteByTestRun(ctx context.Context, testRunID string) (int64, error)

	// Close releases resources held by the store.
	Close() error
}
