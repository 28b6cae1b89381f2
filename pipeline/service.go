//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package pipeline orchestrates the full RAG evaluation flow: retrieve
// contexts, generate an answer, score it lexically, grade it with the LLM
// judge, and persist the result. Progress is reported per stage through a
// callback, and an in-flight registry prevents duplicate concurrent
// evaluations of the same run and QA pair.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"

	"github.com/ragmark/ragmark/embedder"
	"github.com/ragmark/ragmark/evalstore"
	"github.com/ragmark/ragmark/judge"
	"github.com/ragmark/ragmark/log"
	"github.com/ragmark/ragmark/model"
	"github.com/ragmark/ragmark/textmetrics"
	"github.com/ragmark/ragmark/vectorstore"
)

var (
	// ErrAlreadyRunning is returned when the same (test run, QA pair) is
	// already being evaluated.
	ErrAlreadyRunning = errors.New("pipeline: evaluation already running for this run and QA pair")
	// ErrNoContexts is returned when retrieval yields nothing to ground
	// the answer on.
	ErrNoContexts = errors.New("pipeline: no contexts retrieved")
)

const (
	// defaultTopK is the default number of contexts to retrieve.
	defaultTopK = 10
	// defaultTemperature is the default generation temperature.
	defaultTemperature = 0.7
	// defaultWorkerPoolSize bounds concurrently triggered evaluations.
	defaultWorkerPoolSize = 8
)

// Context is one retrieved chunk grounding the generated answer.
type Context struct {
	// ChunkID identifies the chunk in the vector store.
	ChunkID string `json:"chunk_id"`
	// Content is the chunk text.
	Content string `json:"content"`
	// Score is the retrieval similarity.
	Score float64 `json:"score"`
	// Metadata carries the chunk's stored attributes.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Request describes one evaluation of a QA pair within a test run.
type Request struct {
	// TestRunID is the evaluation run.
	TestRunID string `json:"test_run_id"`
	// QAPairID is the QA pair under evaluation.
	QAPairID string `json:"qa_pair_id"`
	// Query is the question posed to the RAG system.
	Query string `json:"query"`
	// ReferenceAnswer is the ground truth answer.
	ReferenceAnswer string `json:"reference_answer"`
	// TopK overrides the number of contexts to retrieve when positive.
	TopK int `json:"top_k,omitempty"`
	// PromptTemplate overrides the generation prompt when set.
	PromptTemplate string `json:"prompt_template,omitempty"`
	// Temperature overrides the generation temperature when set.
	Temperature *float64 `json:"temperature,omitempty"`
	// Progress receives per-stage events when set.
	Progress ProgressCallback `json:"-"`
}

// Result is the outcome of one evaluation.
type Result struct {
	// EvalID is the persisted record ID.
	EvalID string `json:"eval_id"`
	// GeneratedAnswer is the answer that was scored.
	GeneratedAnswer string `json:"generated_answer"`
	// Contexts are the retrieved chunks the answer was generated from.
	Contexts []Context `json:"contexts"`
	// Lexical holds the deterministic overlap metrics.
	Lexical evalstore.LexicalMetrics `json:"lexical_metrics"`
	// Judged holds the LLM-judged metrics.
	Judged evalstore.JudgedMetrics `json:"llm_judged_metrics"`
	// Reasoning holds the judge's explanations.
	Reasoning evalstore.JudgeReasoning `json:"llm_judged_reasoning"`
}

// BatchResult is the outcome of one pair within a batch evaluation.
type BatchResult struct {
	// QAPairID is the evaluated pair.
	QAPairID string `json:"qa_pair_id"`
	// Result is set on success.
	Result *Result `json:"result,omitempty"`
	// Err is set on failure.
	Err error `json:"-"`
}

// options contains configuration options for the service.
type options struct {
	topK           int
	temperature    float64
	promptTemplate string
	workerPoolSize int
}

// Option configures the service.
type Option func(*options)

// WithTopK sets the default number of contexts to retrieve.
func WithTopK(topK int) Option {
	return func(o *options) {
		o.topK = topK
	}
}

// WithTemperature sets the default generation temperature.
func WithTemperature(temperature float64) Option {
	return func(o *options) {
		o.temperature = temperature
	}
}

// WithPromptTemplate sets the default generation prompt template.
func WithPromptTemplate(template string) Option {
	return func(o *options) {
		o.promptTemplate = template
	}
}

// WithWorkerPoolSize bounds the number of concurrently triggered
// evaluations.
func WithWorkerPoolSize(size int) Option {
	return func(o *options) {
		o.workerPoolSize = size
	}
}

// Service runs the evaluation pipeline.
type Service struct {
	embedder  embedder.Embedder
	store     vectorstore.VectorStore
	generator model.Model
	judge     *judge.Judge
	evals     evalstore.Manager
	registry  *registry
	pool      *ants.Pool
	opts      options
}

// New creates the evaluation service.
func New(
	emb embedder.Embedder,
	store vectorstore.VectorStore,
	generator model.Model,
	j *judge.Judge,
	evals evalstore.Manager,
	opt ...Option,
) (*Service, error) {
	o := options{
		topK:           defaultTopK,
		temperature:    defaultTemperature,
		workerPoolSize: defaultWorkerPoolSize,
	}
	for _, op := range opt {
		op(&o)
	}
	pool, err := ants.NewPool(o.workerPoolSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline: create worker pool: %w", err)
	}
	return &Service{
		embedder:  emb,
		store:     store,
		generator: generator,
		judge:     j,
		evals:     evals,
		registry:  newRegistry(),
		pool:      pool,
		opts:      o,
	}, nil
}

// Close releases the worker pool.
func (s *Service) Close() {
	s.pool.Release()
}

// Running reports whether the pair is currently being evaluated.
func (s *Service) Running(testRunID, qaPairID string) bool {
	return s.registry.running(testRunID, qaPairID)
}

// RetrieveContexts embeds the query and returns the most similar chunks.
// Chunks with empty content are dropped.
func (s *Service) RetrieveContexts(ctx context.Context, query string, topK int) ([]Context, error) {
	if topK <= 0 {
		topK = s.opts.topK
	}
	queryEmbedding, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pipeline: embed query: %w", err)
	}
	scored, err := s.store.Search(ctx, queryEmbedding, topK)
	if err != nil {
		return nil, fmt.Errorf("pipeline: search contexts: %w", err)
	}
	contexts := make([]Context, 0, len(scored))
	for _, doc := range scored {
		if doc.Document == nil || doc.Document.Content == "" {
			continue
		}
		contexts = append(contexts, Context{
			ChunkID:  doc.Document.ID,
			Content:  doc.Document.Content,
			Score:    doc.Score,
			Metadata: doc.Document.Metadata,
		})
	}
	return contexts, nil
}

// GenerateAnswer renders the prompt over the contexts and asks the
// generator model for an answer.
func (s *Service) GenerateAnswer(ctx context.Context, query string, contexts []Context, template string, temperature *float64) (string, error) {
	if template == "" {
		template = s.opts.promptTemplate
	}
	prompt, err := renderPrompt(template, query, formatContexts(contexts))
	if err != nil {
		return "", fmt.Errorf("pipeline: render prompt: %w", err)
	}
	temp := s.opts.temperature
	if temperature != nil {
		temp = *temperature
	}
	response, err := s.generator.GenerateContent(ctx, &model.Request{
		Messages: []model.Message{
			model.NewSystemMessage(generationSystemPrompt),
			model.NewUserMessage(prompt),
		},
		GenerationConfig: model.GenerationConfig{Temperature: &temp},
	})
	if err != nil {
		return "", fmt.Errorf("pipeline: generate answer: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("pipeline: generator returned no choices")
	}
	return response.Choices[0].Message.Content, nil
}

// Evaluate runs the full pipeline for one QA pair synchronously.
// A second call for the same (test run, QA pair) while the first is in
// flight returns ErrAlreadyRunning.
func (s *Service) Evaluate(ctx context.Context, req *Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if !s.registry.acquire(req.TestRunID, req.QAPairID) {
		return nil, ErrAlreadyRunning
	}
	defer s.registry.release(req.TestRunID, req.QAPairID)
	return s.evaluate(ctx, req)
}

// Trigger queues the evaluation on the worker pool and returns as soon as
// the pair is registered. The registry entry is held until the queued
// evaluation finishes, so a duplicate trigger fails fast with
// ErrAlreadyRunning.
func (s *Service) Trigger(req *Request) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	if !s.registry.acquire(req.TestRunID, req.QAPairID) {
		return ErrAlreadyRunning
	}
	err := s.pool.Submit(func() {
		defer s.registry.release(req.TestRunID, req.QAPairID)
		if _, err := s.evaluate(context.Background(), req); err != nil {
			log.Errorf("triggered evaluation failed for run %s qa %s: %v",
				req.TestRunID, req.QAPairID, err)
		}
	})
	if err != nil {
		s.registry.release(req.TestRunID, req.QAPairID)
		return fmt.Errorf("pipeline: submit evaluation: %w", err)
	}
	return nil
}

// BatchEvaluate runs the pipeline sequentially for every pair of a run.
// Every pair gets a BatchResult; the returned error aggregates the
// individual failures and is nil when all pairs succeed.
func (s *Service) BatchEvaluate(ctx context.Context, testRunID string, pairs []evalstore.QAPair, base *Request) ([]*BatchResult, error) {
	results := make([]*BatchResult, 0, len(pairs))
	var merr *multierror.Error
	for i, pair := range pairs {
		log.Infof("processing QA pair %d/%d: %s", i+1, len(pairs), pair.ID)
		req := &Request{
			TestRunID:       testRunID,
			QAPairID:        pair.ID,
			Query:           pair.Question,
			ReferenceAnswer: pair.Answer,
		}
		if base != nil {
			req.TopK = base.TopK
			req.PromptTemplate = base.PromptTemplate
			req.Temperature = base.Temperature
			req.Progress = base.Progress
		}
		result, err := s.Evaluate(ctx, req)
		if err != nil {
			log.Errorf("error processing QA pair %s: %v", pair.ID, err)
			results = append(results, &BatchResult{QAPairID: pair.ID, Err: err})
			merr = multierror.Append(merr, fmt.Errorf("qa pair %s: %w", pair.ID, err))
			continue
		}
		results = append(results, &BatchResult{QAPairID: pair.ID, Result: result})
	}
	return results, merr.ErrorOrNil()
}

// evaluate runs the pipeline stages, emitting progress along the way.
func (s *Service) evaluate(ctx context.Context, req *Request) (result *Result, err error) {
	emitProgress(req.Progress, ProgressEvent{
		Stage: StageStarted, Status: StatusRunning,
		TestRunID: req.TestRunID, QAPairID: req.QAPairID,
	})
	log.Infof("starting evaluation for QA pair %s", req.QAPairID)

	defer func() {
		if err != nil {
			emitProgress(req.Progress, ProgressEvent{
				Stage: StageFailed, Status: StatusFailed,
				TestRunID: req.TestRunID, QAPairID: req.QAPairID,
				Error: err.Error(),
			})
		}
	}()

	contexts, err := s.RetrieveContexts(ctx, req.Query, req.TopK)
	if err != nil {
		return nil, err
	}
	emitProgress(req.Progress, ProgressEvent{
		Stage: StageContextsRetrieved, Status: StatusRunning,
		TestRunID: req.TestRunID, QAPairID: req.QAPairID,
		Data: map[string]any{"context_count": len(contexts)},
	})
	if len(contexts) == 0 {
		emitProgress(req.Progress, ProgressEvent{
			Stage: StageContextsRetrieved, Status: StatusFailed,
			TestRunID: req.TestRunID, QAPairID: req.QAPairID,
			Error: ErrNoContexts.Error(),
		})
		return nil, ErrNoContexts
	}

	answer, err := s.GenerateAnswer(ctx, req.Query, contexts, req.PromptTemplate, req.Temperature)
	if err != nil {
		return nil, err
	}
	emitProgress(req.Progress, ProgressEvent{
		Stage: StageAnswerGenerated, Status: StatusRunning,
		TestRunID: req.TestRunID, QAPairID: req.QAPairID,
	})

	lexical := lexicalMetrics(answer, req.ReferenceAnswer)
	emitProgress(req.Progress, ProgressEvent{
		Stage: StageLexicalCalculated, Status: StatusRunning,
		TestRunID: req.TestRunID, QAPairID: req.QAPairID,
		Data: lexicalData(lexical),
	})

	contextTexts := make([]string, len(contexts))
	for i, c := range contexts {
		contextTexts[i] = c.Content
	}
	evaluation, err := s.judge.Evaluate(ctx, req.Query, contextTexts, answer)
	if err != nil {
		return nil, err
	}
	judged, reasoning := judgedMetrics(evaluation)
	emitProgress(req.Progress, ProgressEvent{
		Stage: StageLLMCalculated, Status: StatusRunning,
		TestRunID: req.TestRunID, QAPairID: req.QAPairID,
		Data: judgedData(judged),
	})

	chunkIDs := make([]string, len(contexts))
	for i, c := range contexts {
		chunkIDs[i] = c.ChunkID
	}
	evalID, err := s.evals.Save(ctx, &evalstore.EvaluationRecord{
		TestRunID: req.TestRunID,
		QAPairID:  req.QAPairID,
		Answer:    answer,
		Lexical:   lexical,
		Judged:    judged,
		Reasoning: reasoning,
		ChunkIDs:  chunkIDs,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("evaluation complete, eval ID %s", evalID)
	emitProgress(req.Progress, ProgressEvent{
		Stage: StageSaved, Status: StatusCompleted,
		TestRunID: req.TestRunID, QAPairID: req.QAPairID,
		Data: map[string]any{"eval_id": evalID},
	})

	return &Result{
		EvalID:          evalID,
		GeneratedAnswer: answer,
		Contexts:        contexts,
		Lexical:         lexical,
		Judged:          judged,
		Reasoning:       reasoning,
	}, nil
}

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("pipeline: request is required")
	}
	if req.TestRunID == "" || req.QAPairID == "" {
		return fmt.Errorf("pipeline: test run ID and QA pair ID are required")
	}
	if req.Query == "" {
		return fmt.Errorf("pipeline: query is required")
	}
	return nil
}

// lexicalMetrics scores the answer against the reference.
func lexicalMetrics(answer, reference string) evalstore.LexicalMetrics {
	scored := textmetrics.Score(answer, []string{reference})
	return evalstore.LexicalMetrics{
		BLEU:             scored.BLEU.Score,
		RougeL:           scored.RougeL.F1,
		RougeLPrecision:  scored.RougeL.Precision,
		RougeLRecall:     scored.RougeL.Recall,
		SquadEM:          scored.ExactMatch,
		SquadTokenF1:     scored.TokenF1,
		ContentF1:        scored.ContentF1.F1,
		LexicalAggregate: scored.Aggregate,
	}
}

// judgedMetrics converts the judge's verdict into storable metrics.
func judgedMetrics(evaluation *judge.Evaluation) (evalstore.JudgedMetrics, evalstore.JudgeReasoning) {
	judged := evalstore.JudgedMetrics{
		AnswerRelevance:  evaluation.AnswerRelevance.Grade.Numeric(),
		ContextRelevance: evaluation.ContextRelevance.Grade.Numeric(),
		Groundedness:     evaluation.Groundedness.Grade.Numeric(),
		JudgedOverall:    evaluation.OverallScore,
	}
	reasoning := evalstore.JudgeReasoning{
		AnswerRelevance:           evaluation.AnswerRelevance.Explanation,
		ContextRelevance:          evaluation.ContextRelevance.Explanation,
		Groundedness:              evaluation.Groundedness.Explanation,
		ContextRelevancePerScores: evaluation.ContextRelevance.PerContextScores,
		SupportedClaims:           evaluation.Groundedness.SupportedClaims,
		TotalClaims:               evaluation.Groundedness.TotalClaims,
	}
	if reasoning.ContextRelevancePerScores == nil {
		reasoning.ContextRelevancePerScores = []float64{}
	}
	return judged, reasoning
}

func lexicalData(m evalstore.LexicalMetrics) map[string]any {
	return map[string]any{
		"bleu":              m.BLEU,
		"rouge_l":           m.RougeL,
		"rouge_l_precision": m.RougeLPrecision,
		"rouge_l_recall":    m.RougeLRecall,
		"squad_em":          m.SquadEM,
		"squad_token_f1":    m.SquadTokenF1,
		"content_f1":        m.ContentF1,
		"lexical_aggregate": m.LexicalAggregate,
	}
}

func judgedData(m evalstore.JudgedMetrics) map[string]any {
	return map[string]any{
		"answer_relevance":   m.AnswerRelevance,
		"context_relevance":  m.ContextRelevance,
		"groundedness":       m.Groundedness,
		"llm_judged_overall": m.JudgedOverall,
	}
}
