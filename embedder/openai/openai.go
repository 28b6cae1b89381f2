//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI embedder implementation.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ragmark/ragmark/embedder"
	"github.com/ragmark/ragmark/log"
	"github.com/ragmark/ragmark/model"
	"github.com/ragmark/ragmark/transport"
)

// Verify that Embedder implements the embedder.Embedder interface.
var _ embedder.Embedder = (*Embedder)(nil)

const (
	// DefaultModel is the default OpenAI embedding model.
	DefaultModel = "text-embedding-3-small"
	// DefaultDimensions is the default embedding dimension for text-embedding-3-small.
	DefaultDimensions = 1536
	// DefaultEncodingFormat is the default encoding format for embeddings.
	DefaultEncodingFormat = "float"
	// DefaultRequestTimeout is the total per-request budget, retries included.
	DefaultRequestTimeout = 300 * time.Second
)

// Embedder implements the embedder.Embedder interface for the OpenAI API.
// Transient failures are retried by the HTTP transport, so the SDK's own
// retry layer is disabled.
type Embedder struct {
	client         openai.Client
	model          string
	dimensions     int
	encodingFormat string
	apiKey         string
	baseURL        string
	requestTimeout time.Duration
	retryBackoff   []time.Duration
	requestOptions []option.RequestOption
}

// Option represents a functional option for configuring the Embedder.
type Option func(*Embedder)

// WithModel sets the embedding model to use.
func WithModel(model string) Option {
	return func(e *Embedder) {
		e.model = model
	}
}

// WithDimensions sets the number of dimensions for the embedding.
// Only works with text-embedding-3 and later models.
func WithDimensions(dimensions int) Option {
	return func(e *Embedder) {
		e.dimensions = dimensions
	}
}

// WithEncodingFormat sets the format for the embeddings.
// Supported formats: "float", "base64".
func WithEncodingFormat(format string) Option {
	return func(e *Embedder) {
		e.encodingFormat = format
	}
}

// WithAPIKey sets the OpenAI API key.
// If not provided, will use OPENAI_API_KEY environment variable.
func WithAPIKey(apiKey string) Option {
	return func(e *Embedder) {
		e.apiKey = apiKey
	}
}

// WithBaseURL sets the base URL for OpenAI API.
// Optional, for OpenAI-compatible APIs.
func WithBaseURL(baseURL string) Option {
	return func(e *Embedder) {
		e.baseURL = baseURL
	}
}

// WithRequestTimeout sets the total per-request budget, retries included.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(e *Embedder) {
		e.requestTimeout = timeout
	}
}

// WithRetryBackoff sets the backoff schedule of the retrying transport.
// The schedule length determines the number of retries.
func WithRetryBackoff(backoff []time.Duration) Option {
	return func(e *Embedder) {
		e.retryBackoff = backoff
	}
}

// WithRequestOptions sets additional options for the OpenAI client requests.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(e *Embedder) {
		e.requestOptions = append(e.requestOptions, opts...)
	}
}

// New creates a new OpenAI embedder with the given options.
func New(opts ...Option) *Embedder {
	e := &Embedder{
		model:          DefaultModel,
		dimensions:     DefaultDimensions,
		encodingFormat: DefaultEncodingFormat,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}

	var clientOpts []option.RequestOption
	if e.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(e.apiKey))
	}
	if e.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(e.baseURL))
	}

	var retryOpts []transport.Option
	if e.retryBackoff != nil {
		retryOpts = append(retryOpts, transport.WithBackoff(e.retryBackoff))
	}
	clientOpts = append(clientOpts,
		option.WithHTTPClient(model.DefaultNewHTTPClient(
			model.WithHTTPClientTransport(transport.New(retryOpts...)),
			model.WithHTTPClientTimeout(e.requestTimeout),
		)),
		option.WithMaxRetries(0),
	)
	clientOpts = append(clientOpts, e.requestOptions...)

	e.client = openai.NewClient(clientOpts...)
	return e
}

// GetEmbedding implements the embedder.Embedder interface.
// Blank text gets a zero vector without touching the API.
func (e *Embedder) GetEmbedding(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return e.zeroVector(), nil
	}
	response, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormat(e.encodingFormat),
		Dimensions:     openai.Int(int64(e.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding: %w", err)
	}
	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		log.Warnf("received empty embedding response for model %s", e.model)
		return e.zeroVector(), nil
	}
	return response.Data[0].Embedding, nil
}

// GetEmbeddings implements the embedder.Embedder interface.
// Blank entries get zero vectors; the rest are embedded in one batch call
// and the result preserves input order.
func (e *Embedder) GetEmbeddings(ctx context.Context, texts []string) ([][]float64, error) {
	result := make([][]float64, len(texts))
	nonBlank := make([]string, 0, len(texts))
	positions := make([]int, 0, len(texts))
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			result[i] = e.zeroVector()
			continue
		}
		nonBlank = append(nonBlank, text)
		positions = append(positions, i)
	}
	if len(nonBlank) == 0 {
		return result, nil
	}

	response, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: nonBlank,
		},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormat(e.encodingFormat),
		Dimensions:     openai.Int(int64(e.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(response.Data) != len(nonBlank) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d texts, got %d vectors",
			len(nonBlank), len(response.Data))
	}
	for _, item := range response.Data {
		if int(item.Index) >= len(positions) {
			return nil, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		result[positions[item.Index]] = item.Embedding
	}
	return result, nil
}

// GetDimensions returns the dimensionality of the embedding vectors.
func (e *Embedder) GetDimensions() int {
	return e.dimensions
}

func (e *Embedder) zeroVector() []float64 {
	return make([]float64, e.dimensions)
}
