//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package main runs the ragmark evaluation service: an HTTP API that
// retrieves contexts, generates answers, scores them lexically and with an
// LLM judge, and persists the results.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/ragmark/ragmark/embedder"
	embedderopenai "github.com/ragmark/ragmark/embedder/openai"
	"github.com/ragmark/ragmark/evalstore/mysql"
	"github.com/ragmark/ragmark/judge"
	"github.com/ragmark/ragmark/log"
	modelopenai "github.com/ragmark/ragmark/model/openai"
	"github.com/ragmark/ragmark/pipeline"
	"github.com/ragmark/ragmark/server"
	"github.com/ragmark/ragmark/vectorstore"
	"github.com/ragmark/ragmark/vectorstore/inmemory"
	"github.com/ragmark/ragmark/vectorstore/pgvector"
)

var (
	addr       = flag.String("addr", ":8080", "Address the HTTP server listens on")
	genModel   = flag.String("gen-model", "gpt-4o-mini", "Model used to generate answers")
	judgeModel = flag.String("judge-model", "gpt-4o-mini", "Model used to judge answers")
	embedModel = flag.String("embed-model", "text-embedding-3-small", "Model used to embed queries")
	dimensions = flag.Int("dimensions", 1536, "Embedding dimensions")
	chunkTable = flag.String("chunk-table", "rag_chunks", "pgvector chunk table name")
	topK       = flag.Int("top-k", 10, "Default number of contexts to retrieve")
	workers    = flag.Int("workers", 8, "Size of the evaluation worker pool")
	logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
)

func main() {
	flag.Parse()
	log.SetLevel(*logLevel)

	mysqlDSN := os.Getenv("RAGMARK_MYSQL_DSN")
	if mysqlDSN == "" {
		log.Fatalf("RAGMARK_MYSQL_DSN is required")
	}

	ctx := context.Background()

	emb := embedderopenai.New(
		embedderopenai.WithModel(*embedModel),
		embedderopenai.WithDimensions(*dimensions),
	)
	store, err := newVectorStore(ctx, emb)
	if err != nil {
		log.Fatalf("Failed to create vector store: %v", err)
	}
	defer store.Close()

	evals, err := mysql.New(mysql.WithDSN(mysqlDSN))
	if err != nil {
		log.Fatalf("Failed to connect to evaluation store: %v", err)
	}
	defer evals.Close()
	if err := evals.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure evaluation schema: %v", err)
	}

	service, err := pipeline.New(
		emb,
		store,
		modelopenai.New(*genModel),
		judge.New(modelopenai.New(*judgeModel)),
		evals,
		pipeline.WithTopK(*topK),
		pipeline.WithWorkerPoolSize(*workers),
	)
	if err != nil {
		log.Fatalf("Failed to create evaluation service: %v", err)
	}
	defer service.Close()

	if err := server.New(service, evals).Start(*addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// newVectorStore connects to pgvector when RAGMARK_PG_CONN is set and falls
// back to the in-memory store for local development.
func newVectorStore(ctx context.Context, emb embedder.Embedder) (vectorstore.VectorStore, error) {
	connString := os.Getenv("RAGMARK_PG_CONN")
	if connString == "" {
		log.Warnf("RAGMARK_PG_CONN not set, using in-memory vector store")
		return inmemory.New(), nil
	}
	store, err := pgvector.New(ctx,
		pgvector.WithConnString(connString),
		pgvector.WithTable(*chunkTable),
		pgvector.WithDimensions(emb.GetDimensions()),
	)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
