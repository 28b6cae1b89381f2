//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

// Package transport provides a retrying HTTP transport for model service calls.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ragmark/ragmark/log"
)

// defaultRetryBackoff is the progressive backoff schedule between attempts.
// The schedule length bounds the retry count: one retry per entry.
var defaultRetryBackoff = []time.Duration{
	2 * time.Second,
	5 * time.Second,
	15 * time.Second,
	30 * time.Second,
	70 * time.Second,
}

// Retry wraps an HTTP transport with bounded, progressively-delayed retries.
//
// A request is retried on rate-limit responses (429), server errors (>=500),
// and connect/read timeouts. Any other response or error is returned
// unchanged, as is the final outcome once the schedule is exhausted.
type Retry struct {
	base    http.RoundTripper
	backoff []time.Duration
}

// Option configures the retry transport.
type Option func(*Retry)

// WithBase sets the underlying transport. Defaults to http.DefaultTransport.
func WithBase(base http.RoundTripper) Option {
	return func(t *Retry) {
		t.base = base
	}
}

// WithBackoff sets the backoff schedule. One retry is attempted per entry,
// in order. An empty schedule disables retries.
func WithBackoff(backoff []time.Duration) Option {
	return func(t *Retry) {
		t.backoff = append([]time.Duration(nil), backoff...)
	}
}

// New creates a retry transport with the given options.
func New(opts ...Option) *Retry {
	t := &Retry{
		base:    http.DefaultTransport,
		backoff: defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// MaxAttempts returns the total number of attempts the transport will make.
func (t *Retry) MaxAttempts() int {
	return len(t.backoff) + 1
}

// RoundTrip implements http.RoundTripper.
func (t *Retry) RoundTrip(req *http.Request) (*http.Response, error) {
	maxRetries := len(t.backoff)
	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if req, err = rewindRequest(req); err != nil {
				return resp, err
			}
		}
		resp, err = t.base.RoundTrip(req)

		if err != nil {
			if !isRetryableError(err) || attempt >= maxRetries {
				return nil, err
			}
		} else if !isRetryableStatus(resp.StatusCode) || attempt >= maxRetries {
			// Success, non-retryable status, or schedule exhausted.
			return resp, nil
		}

		// Retries need a replayable body.
		if req.Body != nil && req.GetBody == nil {
			return resp, err
		}
		// Drop the retryable response before re-sending.
		drainBody(resp)

		backoff := t.backoff[attempt]
		log.Warnf("request to %s failed (attempt %d/%d), retrying in %v: %v",
			req.URL.Path, attempt+1, maxRetries, backoff, describeFailure(resp, err))
		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(backoff):
		}
	}
	return resp, err
}

// rewindRequest clones the request with a fresh body for the next attempt.
func rewindRequest(req *http.Request) (*http.Request, error) {
	if req.Body == nil || req.GetBody == nil {
		return req, nil
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("rewind request body: %w", err)
	}
	clone := req.Clone(req.Context())
	clone.Body = body
	return clone, nil
}

// isRetryableStatus reports whether the response status warrants a retry.
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// isRetryableError reports whether the transport error warrants a retry.
// Only connect/read timeouts and connection failures are retried; anything
// else (TLS failures, malformed URLs, canceled contexts) propagates as-is.
func isRetryableError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// drainBody consumes and closes a response body so the connection can be reused.
func drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}

// describeFailure renders the retry cause for logging.
func describeFailure(resp *http.Response, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}
