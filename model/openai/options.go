//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package openai provides an OpenAI-compatible model implementation.
package openai

import (
	"context"
	"time"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"

	"github.com/ragmark/ragmark/model"
)

// defaultRequestTimeout bounds a single chat completion including every
// retry attempt and its backoff.
const defaultRequestTimeout = 300 * time.Second

// ChatRequestCallbackFunc is the function type for the chat request callback.
type ChatRequestCallbackFunc func(
	ctx context.Context,
	chatRequest *openai.ChatCompletionNewParams,
)

// ChatResponseCallbackFunc is the function type for the chat response callback.
type ChatResponseCallbackFunc func(
	ctx context.Context,
	chatRequest *openai.ChatCompletionNewParams,
	chatResponse *openai.ChatCompletion,
)

// options contains configuration options for creating a Model.
type options struct {
	// API key for the OpenAI client.
	APIKey string
	// Base URL for the OpenAI client. It is optional for OpenAI-compatible APIs.
	BaseURL string
	// Total wall-clock budget per request, retries included.
	RequestTimeout time.Duration
	// Backoff schedule for the retrying transport. Nil keeps the default.
	RetryBackoff []time.Duration
	// Options for the HTTP client.
	HTTPClientOptions []model.HTTPClientOption
	// Callback for the chat request.
	ChatRequestCallback ChatRequestCallbackFunc
	// Callback for the chat response.
	ChatResponseCallback ChatResponseCallbackFunc
	// Options for the OpenAI client.
	OpenAIOptions []openaiopt.RequestOption
}

var defaultOptions = options{
	RequestTimeout: defaultRequestTimeout,
}

// Option is a function that configures the model options.
type Option func(*options)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(opts *options) {
		opts.APIKey = key
	}
}

// WithBaseURL sets the base URL for an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(opts *options) {
		opts.BaseURL = url
	}
}

// WithRequestTimeout sets the total per-request budget, retries included.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.RequestTimeout = timeout
	}
}

// WithRetryBackoff sets the backoff schedule of the retrying transport.
// The schedule length determines the number of retries.
func WithRetryBackoff(backoff []time.Duration) Option {
	return func(opts *options) {
		opts.RetryBackoff = backoff
	}
}

// WithHTTPClientOptions sets extra options for the underlying HTTP client.
func WithHTTPClientOptions(httpOpts ...model.HTTPClientOption) Option {
	return func(opts *options) {
		opts.HTTPClientOptions = append(opts.HTTPClientOptions, httpOpts...)
	}
}

// WithChatRequestCallback sets the callback invoked before each request.
func WithChatRequestCallback(callback ChatRequestCallbackFunc) Option {
	return func(opts *options) {
		opts.ChatRequestCallback = callback
	}
}

// WithChatResponseCallback sets the callback invoked on each response.
func WithChatResponseCallback(callback ChatResponseCallbackFunc) Option {
	return func(opts *options) {
		opts.ChatResponseCallback = callback
	}
}

// WithOpenAIOptions sets extra request options for the OpenAI client.
func WithOpenAIOptions(openaiOpts ...openaiopt.RequestOption) Option {
	return func(opts *options) {
		opts.OpenAIOptions = append(opts.OpenAIOptions, openaiOpts...)
	}
}
