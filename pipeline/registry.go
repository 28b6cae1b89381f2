//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package pipeline

import "sync"

// registry tracks in-flight evaluations so that the same (test run, QA
// pair) is never evaluated twice concurrently.
type registry struct {
	mu       sync.Mutex
	inFlight map[registryKey]struct{}
}

type registryKey struct {
	testRunID string
	qaPairID  string
}

func newRegistry() *registry {
	return &registry{inFlight: make(map[registryKey]struct{})}
}

// acquire marks the pair as in flight. It reports false when the pair is
// already being evaluated.
func (r *registry) acquire(testRunID, qaPairID string) bool {
	key := registryKey{testRunID: testRunID, qaPairID: qaPairID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inFlight[key]; ok {
		return false
	}
	r.inFlight[key] = struct{}{}
	return true
}

// release clears the in-flight mark.
func (r *registry) release(testRunID, qaPairID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, registryKey{testRunID: testRunID, qaPairID: qaPairID})
}

// running reports whether the pair is currently being evaluated.
func (r *registry) running(testRunID, qaPairID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[registryKey{testRunID: testRunID, qaPairID: qaPairID}]
	return ok
}
