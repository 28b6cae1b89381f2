//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package server exposes the evaluation pipeline over HTTP and streams
// per-run progress events over websockets.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/ragmark/ragmark/evalstore"
	"github.com/ragmark/ragmark/log"
	"github.com/ragmark/ragmark/pipeline"
)

const defaultReadHeaderTimeout = 10 * time.Second

// Server wires evaluation trigger and query endpoints onto a mux router.
type Server struct {
	router  *mux.Router
	service *pipeline.Service
	evals   evalstore.Manager
	hub     *progressHub
}

// Option configures the server.
type Option func(*Server)

// New creates a Server around the given pipeline service and evaluation
// store.
func New(service *pipeline.Service, evals evalstore.Manager, opts ...Option) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		evals:   evals,
		hub:     newProgressHub(),
	}
	for _, opt := range opts {
		opt(s)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
	})
	s.router.Use(c.Handler)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/evals/trigger", s.handleTrigger).Methods(http.MethodPost)
	s.router.HandleFunc("/evals/run/{testRunID}", s.handleGetByTestRun).Methods(http.MethodGet)
	s.router.HandleFunc("/evals/run/{testRunID}", s.handleDeleteByTestRun).Methods(http.MethodDelete)
	s.router.HandleFunc("/evals/run/{testRunID}/qa/{qaPairID}", s.handleGetByRunAndQA).Methods(http.MethodGet)
	s.router.HandleFunc("/evals/{evalID}/chunks", s.handleGetChunks).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/progress/run/{testRunID}", s.handleProgressSocket).Methods(http.MethodGet)
}

// Handler returns the http.Handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on the given address until it fails.
func (s *Server) Start(addr string) error {
	log.Infof("Starting ragmark server on %s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}
	return srv.ListenAndServe()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
