// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the intent analysis configuration: lexical keyword
// sets, extraction vocabularies, history bounds, and the first-pass matcher
// rule table. Defaults are embedded so the analyzer works with zero setup.
package config

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Default Intent Rules
// =============================================================================

//go:embed intent_rules.yaml
var defaultIntentRulesYAML []byte

// MaxYAMLFileSize caps rule files at 1MB. Anything larger is a config error,
// not a rule table.
const MaxYAMLFileSize = 1 << 20

var intentConfigTracer = otel.Tracer("queryintent.config")

// =============================================================================
// Intent Configuration Types
// =============================================================================

// IntentConfig defines the lexical classification and extraction behavior of
// the query intent analyzer.
//
// Description:
//
//	Contains the fixed keyword sets that signal field and graph intent, the
//	vocabularies used for term extraction, the history bound, the constant
//	classification confidence, and the matcher rule table.
//
// Thread Safety: Immutable after loading; safe for concurrent use.
type IntentConfig struct {
	// FieldKeywords signal a field-filter intent when present in the query.
	FieldKeywords []string `yaml:"field_keywords"`

	// GraphKeywords signal a graph-traversal intent when present in the query.
	GraphKeywords []string `yaml:"graph_keywords"`

	// FieldVocabulary lists tokens interpreted as field names.
	FieldVocabulary []string `yaml:"field_vocabulary"`

	// RelationshipVocabulary lists tokens interpreted as relationship names.
	RelationshipVocabulary []string `yaml:"relationship_vocabulary"`

	// HistoryCapacity bounds the analyzer's interaction history.
	HistoryCapacity int `yaml:"history_capacity"`

	// Confidence is the constant score assigned on successful classification.
	Confidence float64 `yaml:"confidence"`

	// DefaultLimit is attached to matcher drafts that carry no explicit limit.
	DefaultLimit int `yaml:"default_limit"`

	// MatcherRules is the first-pass structural extraction rule table.
	MatcherRules []MatcherRule `yaml:"matcher_rules"`
}

// MatcherRule maps query patterns to a structural query shape.
//
// Description:
//
//	The first rule whose pattern matches the query (ascending Priority,
//	then declaration order) produces the structured draft. Patterns
//	containing ".*" are treated as case-insensitive regex, otherwise as
//	substring matches against the lower-cased query.
type MatcherRule struct {
	// Name identifies the rule in logs and traces.
	Name string `yaml:"name"`

	// Kind is "where" (field constraint), "connected" (graph traversal),
	// or "like" (similarity-only draft).
	Kind string `yaml:"kind"`

	// Field is the constrained field name. Required when Kind is "where".
	Field string `yaml:"field"`

	// Relation is the traversed relationship. Required when Kind is "connected".
	Relation string `yaml:"relation"`

	// Priority orders rule evaluation (lower fires first).
	Priority int `yaml:"priority"`

	// Patterns are substring or regex patterns matched against the query.
	Patterns []string `yaml:"patterns"`
}

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultHistoryCapacity is the default interaction history bound.
	DefaultHistoryCapacity = 100

	// DefaultConfidence is the default constant classification confidence.
	DefaultConfidence = 0.8

	// DefaultQueryLimit is the default result limit for matcher drafts.
	DefaultQueryLimit = 10
)

// =============================================================================
// Singleton Intent Config
// =============================================================================

var (
	intentConfigMu      sync.RWMutex
	cachedIntentConfig  *IntentConfig
	intentConfigLoadErr error
)

// GetIntentConfig returns the cached intent configuration.
//
// Description:
//
//	Loads the embedded default rules on first call and caches the result
//	for subsequent calls.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//
// Outputs:
//
//	*IntentConfig - The loaded configuration. Never nil on success.
//	error - Non-nil if loading or validation failed.
//
// Thread Safety: Safe for concurrent use.
func GetIntentConfig(ctx context.Context) (*IntentConfig, error) {
	if ctx == nil {
		return nil, fmt.Errorf("GetIntentConfig: ctx must not be nil")
	}

	intentConfigMu.RLock()
	if cachedIntentConfig != nil || intentConfigLoadErr != nil {
		cfg, err := cachedIntentConfig, intentConfigLoadErr
		intentConfigMu.RUnlock()
		return cfg, err
	}
	intentConfigMu.RUnlock()

	intentConfigMu.Lock()
	defer intentConfigMu.Unlock()

	if cachedIntentConfig == nil && intentConfigLoadErr == nil {
		cachedIntentConfig, intentConfigLoadErr = LoadIntentConfig(ctx, defaultIntentRulesYAML)
	}

	return cachedIntentConfig, intentConfigLoadErr
}

// ResetIntentConfig resets the cached config for testing.
//
// Thread Safety: Safe for concurrent use.
func ResetIntentConfig() {
	intentConfigMu.Lock()
	defer intentConfigMu.Unlock()
	cachedIntentConfig = nil
	intentConfigLoadErr = nil
}

// LoadIntentConfig loads and validates an IntentConfig from YAML bytes.
//
// Description:
//
//	Parses the YAML, applies defaults for missing numeric fields, and
//	validates the matcher rule table for consistency.
//
// Inputs:
//
//	ctx - Context for tracing.
//	data - Raw YAML bytes to parse.
//
// Outputs:
//
//	*IntentConfig - The validated configuration.
//	error - Non-nil if parsing or validation fails.
func LoadIntentConfig(ctx context.Context, data []byte) (*IntentConfig, error) {
	_, span := intentConfigTracer.Start(ctx, "config.LoadIntentConfig")
	defer span.End()

	if len(data) == 0 {
		return nil, fmt.Errorf("LoadIntentConfig: empty YAML data")
	}
	if len(data) > MaxYAMLFileSize {
		return nil, fmt.Errorf("LoadIntentConfig: YAML data exceeds maximum size (%d > %d)", len(data), MaxYAMLFileSize)
	}

	var cfg IntentConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("LoadIntentConfig: parsing YAML: %w", err)
	}

	// Apply defaults for missing fields
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.Confidence <= 0 {
		cfg.Confidence = DefaultConfidence
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultQueryLimit
	}

	if err := validateIntentConfig(&cfg); err != nil {
		return nil, fmt.Errorf("LoadIntentConfig: validation: %w", err)
	}

	span.SetAttributes(
		attribute.Int("field_keywords", len(cfg.FieldKeywords)),
		attribute.Int("graph_keywords", len(cfg.GraphKeywords)),
		attribute.Int("matcher_rules", len(cfg.MatcherRules)),
		attribute.Int("history_capacity", cfg.HistoryCapacity),
	)

	slog.Info("intent config loaded",
		slog.Int("field_keywords", len(cfg.FieldKeywords)),
		slog.Int("graph_keywords", len(cfg.GraphKeywords)),
		slog.Int("matcher_rules", len(cfg.MatcherRules)),
		slog.Int("history_capacity", cfg.HistoryCapacity),
	)

	return &cfg, nil
}

// validateIntentConfig checks keyword sets and matcher rules for consistency.
func validateIntentConfig(cfg *IntentConfig) error {
	if len(cfg.FieldKeywords) == 0 {
		return fmt.Errorf("field_keywords must not be empty")
	}
	if len(cfg.GraphKeywords) == 0 {
		return fmt.Errorf("graph_keywords must not be empty")
	}
	if cfg.Confidence > 1.0 {
		return fmt.Errorf("confidence must be in [0,1], got %v", cfg.Confidence)
	}

	for i, rule := range cfg.MatcherRules {
		if rule.Name == "" {
			return fmt.Errorf("matcher_rule[%d]: name must not be empty", i)
		}
		if len(rule.Patterns) == 0 {
			return fmt.Errorf("matcher_rule[%d] (%s): patterns must not be empty", i, rule.Name)
		}
		switch rule.Kind {
		case "where":
			if rule.Field == "" {
				return fmt.Errorf("matcher_rule[%d] (%s): field must not be empty for kind 'where'", i, rule.Name)
			}
		case "connected":
			if rule.Relation == "" {
				return fmt.Errorf("matcher_rule[%d] (%s): relation must not be empty for kind 'connected'", i, rule.Name)
			}
		case "like":
			// No extra fields required.
		default:
			return fmt.Errorf("matcher_rule[%d] (%s): kind must be 'where', 'connected', or 'like', got %q", i, rule.Name, rule.Kind)
		}
	}

	return nil
}
