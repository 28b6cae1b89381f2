//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package pipeline

import "github.com/ragmark/ragmark/log"

// Stage identifies a step of the evaluation pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageStarted           Stage = "started"
	StageContextsRetrieved Stage = "contexts_retrieved"
	StageAnswerGenerated   Stage = "answer_generated"
	StageLexicalCalculated Stage = "lexical_metrics_calculated"
	StageLLMCalculated     Stage = "llm_metrics_calculated"
	StageSaved             Stage = "saved"
	StageFailed            Stage = "failed"
)

// Status is the run state reported with a progress event.
type Status string

// Progress statuses.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ProgressEvent reports pipeline progress for one QA pair.
type ProgressEvent struct {
	// Stage is the pipeline step that produced the event.
	Stage Stage `json:"stage"`
	// Status is the run state at that step.
	Status Status `json:"status"`
	// TestRunID is the evaluation run.
	TestRunID string `json:"test_run_id"`
	// QAPairID is the QA pair under evaluation.
	QAPairID string `json:"qa_pair_id"`
	// Data carries stage-specific payload, such as metric values.
	Data map[string]any `json:"data,omitempty"`
	// Error describes the failure on failed events.
	Error string `json:"error,omitempty"`
}

// ProgressCallback receives pipeline progress events.
type ProgressCallback func(event ProgressEvent)

// emitProgress invokes the callback if provided. A panicking callback is
// logged and never aborts the pipeline.
func emitProgress(callback ProgressCallback, event ProgressEvent) {
	if callback == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("progress callback panicked on stage %s: %v", event.Stage, r)
		}
	}()
	callback(event)
}
