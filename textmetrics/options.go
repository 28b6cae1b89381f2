//
// Tencent is pleased to support the open source community by making ragmark available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// ragmark is licensed under the Apache License Version 2.0.
//
//

package textmetrics

// AggregateWeights holds the contribution of each component metric to the
// aggregate score. The weights are applied as given and are not required to
// sum to one; keeping them normalized is the caller's responsibility.
type AggregateWeights struct {
	// BLEU is the weight of the BLEU score.
	BLEU float64
	// RougeL is the weight of the ROUGE-L F1 score.
	RougeL float64
	// ContentF1 is the weight of the content-token F1 score.
	ContentF1 float64
	// ExactMatch is the weight of the SQuAD exact-match score.
	ExactMatch float64
}

// DefaultAggregateWeights favors recall-oriented overlap, the usual choice
// for grading generated answers against references.
var DefaultAggregateWeights = AggregateWeights{
	BLEU:       0.30,
	RougeL:     0.40,
	ContentF1:  0.20,
	ExactMatch: 0.10,
}

// options holds the tunables for the metric calculations.
type options struct {
	maxN      int
	smooth    bool
	ngramWts  []float64
	beta      float64
	aggregate AggregateWeights
}

// Option configures the metric calculations.
type Option func(*options)

// newOptions applies opts over the defaults.
func newOptions(opt ...Option) *options {
	opts := &options{
		maxN:      4,
		smooth:    true,
		beta:      1,
		aggregate: DefaultAggregateWeights,
	}
	for _, o := range opt {
		o(opts)
	}
	if opts.maxN < 1 {
		opts.maxN = 1
	}
	return opts
}

// WithMaxN sets the maximum n-gram order considered by BLEU. Defaults to 4.
func WithMaxN(n int) Option {
	return func(opts *options) {
		opts.maxN = n
	}
}

// WithSmoothing toggles exponential smoothing of zero n-gram precisions.
// Enabled by default; without it any missing n-gram order zeroes the score.
func WithSmoothing(smooth bool) Option {
	return func(opts *options) {
		opts.smooth = smooth
	}
}

// WithNgramWeights sets per-order BLEU weights. The slice length must equal
// the maximum n-gram order; otherwise uniform weights are used.
func WithNgramWeights(weights []float64) Option {
	return func(opts *options) {
		opts.ngramWts = weights
	}
}

// WithBeta sets the recall bias of the ROUGE-L F-measure. Defaults to 1,
// the balanced F1.
func WithBeta(beta float64) Option {
	return func(opts *options) {
		opts.beta = beta
	}
}

// WithAggregateWeights overrides the aggregate blend.
func WithAggregateWeights(weights AggregateWeights) Option {
	return func(opts *options) {
		opts.aggregate = weights
	}
}
