// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package intent classifies natural-language queries into hybrid search
// shapes and assembles StructuredQuery drafts for the downstream executor.
//
// The analyzer delegates first-pass structural extraction to an external
// pattern matcher. Only when that pass yields no field or graph constraints
// does the lexical classifier run, and only a field-classified query with at
// least one extracted field term enriches the draft. Every interaction is
// recorded in a bounded FIFO history for future learning.
package intent

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/queryintent/services/query/config"
	"github.com/AleutianAI/queryintent/services/query/datatypes"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	analyzeQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "queryintent",
		Subsystem: "analyzer",
		Name:      "queries_total",
		Help:      "Total queries processed by classified intent type",
	}, []string{"intent_type"})

	analyzeEnrichedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "queryintent",
		Subsystem: "analyzer",
		Name:      "enriched_total",
		Help:      "Drafts enriched with synthesized field constraints",
	})

	analyzePassthroughTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "queryintent",
		Subsystem: "analyzer",
		Name:      "passthrough_total",
		Help:      "Drafts returned unchanged because the matcher already set constraints",
	})

	analyzeHistorySize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "queryintent",
		Subsystem: "analyzer",
		Name:      "history_size",
		Help:      "Current bounded interaction history length",
	})

	analyzeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "queryintent",
		Subsystem: "analyzer",
		Name:      "latency_seconds",
		Help:      "Query analysis latency",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
	})
)

// =============================================================================
// OTel Tracer
// =============================================================================

var analyzerTracer = otel.Tracer("queryintent.intent")

// =============================================================================
// Matcher Collaborator
// =============================================================================

// Matcher is the narrow contract for the external pattern matcher.
//
// Description:
//
//	A pure function from (text, embedding?) to a StructuredQuery draft.
//	The analyzer only reads presence/absence of the draft's Where and
//	Connected sections to decide whether enrichment is needed; the matching
//	strategy is opaque. Implementations must return a non-nil draft when
//	error is nil.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Matcher interface {
	Match(ctx context.Context, text string, embedding []float32) (*datatypes.StructuredQuery, error)
}

// =============================================================================
// Analyzer
// =============================================================================

// Analyzer translates natural-language queries into StructuredQuery objects.
//
// Description:
//
//	Holds the lexical classification vocabularies (pre-indexed from config),
//	the matcher collaborator, and the bounded interaction history. One
//	instance per logical session; the history is the only mutable state.
//
// Thread Safety: NOT safe for concurrent use. The design assumes a single
// writer per instance; callers that share an instance across goroutines must
// serialize access themselves (see query.Service).
type Analyzer struct {
	matcher Matcher
	cfg     *config.IntentConfig
	logger  *slog.Logger

	// Pre-indexed vocabularies for O(1) token membership tests.
	fieldVocab    map[string]struct{}
	relationVocab map[string]struct{}

	history *historyRing
}

// NewAnalyzer creates an Analyzer bound to a matcher collaborator.
//
// Description:
//
//	Indexes the configured extraction vocabularies and allocates the empty
//	bounded history. No other setup is required.
//
// Inputs:
//
//	matcher - Pattern matcher collaborator. Must not be nil.
//	cfg - Intent configuration. Must not be nil.
//	logger - Logger instance. May be nil (defaults applied).
//
// Outputs:
//
//	*Analyzer - The constructed analyzer. Never nil.
func NewAnalyzer(matcher Matcher, cfg *config.IntentConfig, logger *slog.Logger) *Analyzer {
	if matcher == nil {
		panic("NewAnalyzer: matcher must not be nil")
	}
	if cfg == nil {
		panic("NewAnalyzer: cfg must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Analyzer{
		matcher:       matcher,
		cfg:           cfg,
		logger:        logger,
		fieldVocab:    indexVocabulary(cfg.FieldVocabulary),
		relationVocab: indexVocabulary(cfg.RelationshipVocabulary),
		history:       newHistoryRing(cfg.HistoryCapacity),
	}
}

// Init prepares the analyzer for use.
//
// Description:
//
//	A no-op retained for interface symmetry with components that do require
//	setup (embedding warmup, schema loading). Completes immediately.
//
// Outputs:
//
//	error - Always nil.
func (a *Analyzer) Init(ctx context.Context) error {
	_ = ctx
	return nil
}

// ProcessQuery translates a query string into a StructuredQuery.
//
// Description:
//
//	Invokes the pattern matcher for the first-pass draft. If the draft has
//	neither a field-constraint nor a graph-connection section, classifies
//	the query lexically; a field-classified query with at least one
//	extracted field term gets a synthesized existence-constraint map
//	attached as Where. The interaction is appended to the bounded history
//	(success=false until marked) and the draft returned.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil. No suspension occurs.
//	text - Raw query text. Empty text degrades to a vector classification.
//	embedding - Optional precomputed embedding. May be nil; this component
//	            never computes embeddings itself.
//
// Outputs:
//
//	*datatypes.StructuredQuery - The (possibly enriched) draft.
//	error - Matcher failures, propagated unmodified. This core raises no
//	        errors of its own.
//
// Thread Safety: NOT safe for concurrent use (mutates the history).
func (a *Analyzer) ProcessQuery(ctx context.Context, text string, embedding []float32) (*datatypes.StructuredQuery, error) {
	start := time.Now()

	ctx, span := analyzerTracer.Start(ctx, "intent.Analyzer.ProcessQuery")
	defer span.End()

	draft, err := a.matcher.Match(ctx, text, embedding)
	if err != nil {
		// Collaborator failure propagates unmodified; no local recovery.
		return nil, err
	}
	if draft == nil {
		a.logger.Warn("pattern matcher returned nil draft, substituting empty draft")
		draft = &datatypes.StructuredQuery{}
	}

	intentType := IntentVector
	if !draft.HasWhere() && !draft.HasConnected() {
		qi := a.Classify(text)
		intentType = qi.Type

		if qi.Type == IntentField && len(qi.ExtractedTerms.Fields) > 0 {
			draft.Where = synthesizeWhere(qi.ExtractedTerms.Fields)
			analyzeEnrichedTotal.Inc()
			a.logger.Debug("draft enriched with field constraints",
				slog.Int("fields", len(draft.Where)),
				slog.String("intent_type", string(qi.Type)),
			)
		}
	} else {
		analyzePassthroughTotal.Inc()
	}

	a.history.append(HistoryEntry{
		ID:        uuid.NewString(),
		Query:     text,
		Result:    draft,
		Success:   false,
		Timestamp: time.Now(),
	})
	analyzeHistorySize.Set(float64(a.history.len()))

	analyzeQueriesTotal.WithLabelValues(string(intentType)).Inc()
	analyzeLatency.Observe(time.Since(start).Seconds())

	span.SetAttributes(
		attribute.String("intent_type", string(intentType)),
		attribute.Bool("has_where", draft.HasWhere()),
		attribute.Bool("has_connected", draft.HasConnected()),
		attribute.Int("history_size", a.history.len()),
	)

	return draft, nil
}

// synthesizeWhere maps each extracted field term to a generic existence
// predicate. Duplicate terms overwrite (map key semantics); no value
// extraction is attempted.
func synthesizeWhere(fields []string) map[string]datatypes.FieldConstraint {
	where := make(map[string]datatypes.FieldConstraint, len(fields))
	for _, field := range fields {
		where[field] = datatypes.FieldConstraint{Exists: true}
	}
	return where
}

// indexVocabulary builds a membership set from a vocabulary list.
func indexVocabulary(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		set[term] = struct{}{}
	}
	return set
}
