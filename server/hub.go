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
	"sync"

	"github.com/ragmark/ragmark/pipeline"
)

const subscriberBuffer = 64

// progressHub fans evaluation progress events out to websocket subscribers.
// Subscriptions are keyed by test run ID so a client only receives events
// for the run it is watching.
type progressHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan pipeline.ProgressEvent]struct{}
}

func newProgressHub() *progressHub {
	return &progressHub{subs: make(map[string]map[chan pipeline.ProgressEvent]struct{})}
}

// Publish delivers the event to every subscriber of its test run. Slow
// subscribers whose buffers are full are skipped rather than blocking the
// evaluation pipeline.
func (h *progressHub) Publish(event pipeline.ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[event.TestRunID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a subscriber for the given test run and returns the
// event channel plus a cancel function. The cancel function is idempotent.
func (h *progressHub) Subscribe(testRunID string) (<-chan pipeline.ProgressEvent, func()) {
	ch := make(chan pipeline.ProgressEvent, subscriberBuffer)

	h.mu.Lock()
	set, ok := h.subs[testRunID]
	if !ok {
		set = make(map[chan pipeline.ProgressEvent]struct{})
		h.subs[testRunID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[testRunID], ch)
			if len(h.subs[testRunID]) == 0 {
				delete(h.subs, testRunID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (h *progressHub) subscriberCount(testRunID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[testRunID])
}
