// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package query exposes the intent analysis core over HTTP. The core itself
// is wire-free; this package owns the serialization, routing, and the
// serialization of concurrent callers onto the single-writer analyzer.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/AleutianAI/queryintent/services/query/config"
	"github.com/AleutianAI/queryintent/services/query/datatypes"
	"github.com/AleutianAI/queryintent/services/query/intent"
	"github.com/AleutianAI/queryintent/services/query/pattern"
)

// Service wraps a single Analyzer instance for multi-caller HTTP access.
//
// Description:
//
//	The analyzer is single-writer by design; the service serializes all
//	access behind a mutex so the HTTP layer can share one instance. One
//	service (and so one history) per server process.
//
// Thread Safety: Safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	analyzer *intent.Analyzer
	logger   *slog.Logger
}

// NewService builds a Service with the default rule matcher.
//
// Description:
//
//	Loads the intent configuration (embedded defaults), constructs the
//	RuleMatcher collaborator and the analyzer, and runs the analyzer's
//	Init.
//
// Inputs:
//
//	ctx - Context for config loading and tracing. Must not be nil.
//	logger - Logger instance. May be nil (defaults applied).
//
// Outputs:
//
//	*Service - The ready service.
//	error - Non-nil if configuration loading fails.
func NewService(ctx context.Context, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.GetIntentConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewService: loading intent config: %w", err)
	}

	matcher := pattern.NewRuleMatcher(cfg, logger)
	analyzer := intent.NewAnalyzer(matcher, cfg, logger)
	if err := analyzer.Init(ctx); err != nil {
		return nil, fmt.Errorf("NewService: analyzer init: %w", err)
	}

	return &Service{analyzer: analyzer, logger: logger}, nil
}

// NewServiceWithAnalyzer wraps an existing analyzer. Used by tests and by
// callers that supply their own matcher.
func NewServiceWithAnalyzer(analyzer *intent.Analyzer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{analyzer: analyzer, logger: logger}
}

// Analyze translates a query into a StructuredQuery.
//
// Thread Safety: Safe for concurrent use (serialized onto the analyzer).
func (s *Service) Analyze(ctx context.Context, text string, embedding []float32) (*datatypes.StructuredQuery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.ProcessQuery(ctx, text, embedding)
}

// History returns an insertion-ordered snapshot of the interaction history.
func (s *Service) History() []intent.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.HistoryEntries()
}

// MarkOutcome records the observed outcome of a past interaction.
//
// Outputs:
//
//	error - intent.ErrHistoryIndexOutOfRange (wrapped) for a bad index.
func (s *Service) MarkOutcome(index int, success bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.MarkOutcome(index, success)
}
