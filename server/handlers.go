//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ragmark/ragmark/evalstore"
	"github.com/ragmark/ragmark/log"
	"github.com/ragmark/ragmark/pipeline"
)

// triggerRequest is the payload of POST /evals/trigger.
type triggerRequest struct {
	TestRunID       string   `json:"test_run_id"`
	QAPairID        string   `json:"qa_pair_id"`
	Query           string   `json:"query"`
	ReferenceAnswer string   `json:"reference_answer"`
	TopK            int      `json:"top_k,omitempty"`
	PromptOverride  string   `json:"prompt_override,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.TestRunID == "" || req.QAPairID == "" || req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "test_run_id, qa_pair_id and query are required")
		return
	}
	if req.TopK < 0 {
		s.writeError(w, http.StatusBadRequest, "top_k must not be negative")
		return
	}

	err := s.service.Trigger(&pipeline.Request{
		TestRunID:       req.TestRunID,
		QAPairID:        req.QAPairID,
		Query:           req.Query,
		ReferenceAnswer: req.ReferenceAnswer,
		TopK:            req.TopK,
		PromptTemplate:  req.PromptOverride,
		Temperature:     req.Temperature,
		Progress:        s.hub.Publish,
	})
	if err != nil {
		if errors.Is(err, pipeline.ErrAlreadyRunning) {
			s.writeError(w, http.StatusConflict, "evaluation already running for this qa pair")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Infof("Queued evaluation for run %s qa pair %s", req.TestRunID, req.QAPairID)
	s.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":      "queued",
		"test_run_id": req.TestRunID,
		"qa_pair_id":  req.QAPairID,
	})
}

func (s *Server) handleGetByTestRun(w http.ResponseWriter, r *http.Request) {
	testRunID := mux.Vars(r)["testRunID"]
	records, err := s.evals.GetByTestRun(r.Context(), testRunID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*evalstore.EvaluationRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleDeleteByTestRun(w http.ResponseWriter, r *http.Request) {
	testRunID := mux.Vars(r)["testRunID"]
	deleted, err := s.evals.DeleteByTestRun(r.Context(), testRunID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"test_run_id": testRunID,
		"deleted":     deleted,
	})
}

func (s *Server) handleGetByRunAndQA(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	record, err := s.evals.GetByRunAndQA(r.Context(), vars["testRunID"], vars["qaPairID"])
	if err != nil {
		if errors.Is(err, evalstore.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "evaluation not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleGetChunks(w http.ResponseWriter, r *http.Request) {
	evalID := mux.Vars(r)["evalID"]
	chunkIDs, err := s.evals.GetChunkIDs(r.Context(), evalID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if chunkIDs == nil {
		chunkIDs = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"eval_id":   evalID,
		"chunk_ids": chunkIDs,
	})
}
