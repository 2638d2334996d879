// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pattern implements the first-pass structural extraction
// collaborator: a rule table compiled to substring/regex patterns that maps
// raw query text to a StructuredQuery draft. The intent analyzer treats it
// as an opaque pure function and never inspects the table.
package pattern

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/queryintent/services/query/config"
	"github.com/AleutianAI/queryintent/services/query/datatypes"
)

var matcherTracer = otel.Tracer("queryintent.pattern")

// =============================================================================
// Compiled Patterns
// =============================================================================

// compiledPattern holds a pattern string alongside its pre-compiled regex
// (nil for substring-only patterns).
type compiledPattern struct {
	raw   string
	regex *regexp.Regexp
}

// compilePatterns pre-compiles a list of patterns, treating ".*" patterns as regex.
func compilePatterns(patterns []string, logger *slog.Logger) []compiledPattern {
	result := make([]compiledPattern, len(patterns))
	for i, pattern := range patterns {
		patternLower := strings.ToLower(pattern)
		cp := compiledPattern{raw: patternLower}
		if strings.Contains(patternLower, ".*") || strings.Contains(patternLower, "\\d") {
			re, err := regexp.Compile("(?i)" + patternLower)
			if err != nil {
				logger.Warn("pattern matcher: invalid regex pattern, will skip",
					slog.String("pattern", pattern),
					slog.String("error", err.Error()),
				)
			} else {
				cp.regex = re
			}
		}
		result[i] = cp
	}
	return result
}

// matchCompiledPattern checks if a query matches a pre-compiled pattern.
func matchCompiledPattern(queryLower string, cp compiledPattern) bool {
	if cp.regex != nil {
		return cp.regex.MatchString(queryLower)
	}
	return strings.Contains(queryLower, cp.raw)
}

// =============================================================================
// RuleMatcher
// =============================================================================

// RuleMatcher produces a StructuredQuery draft from raw query text using a
// fixed rule table.
//
// Description:
//
//	Rules are evaluated in ascending priority (then declaration order); the
//	first rule with a matching pattern determines the draft's structural
//	section (where / connected). Every draft carries the raw text as its
//	Like clause, the caller-supplied embedding as its Vector, and the
//	configured default limit. When no rule matches, the draft is
//	similarity-only.
//
// Inputs (construction):
//
//	cfg - Intent configuration carrying the rule table. Must not be nil.
//	logger - Logger for structured output. May be nil (defaults applied).
//
// Thread Safety: Safe for concurrent use (all state is read-only after
// construction).
type RuleMatcher struct {
	rules        []config.MatcherRule
	compiled     [][]compiledPattern
	defaultLimit int
	logger       *slog.Logger
}

// NewRuleMatcher creates a RuleMatcher from the configured rule table.
//
// Description:
//
//	Copies the rule table, sorts it by priority (stable, preserving
//	declaration order within equal priorities), and pre-compiles all
//	patterns.
//
// Inputs:
//
//	cfg - Intent configuration. Must not be nil.
//	logger - Logger instance. May be nil.
//
// Outputs:
//
//	*RuleMatcher - The constructed matcher. Never nil.
//
// Thread Safety: The returned matcher is safe for concurrent use.
func NewRuleMatcher(cfg *config.IntentConfig, logger *slog.Logger) *RuleMatcher {
	if logger == nil {
		logger = slog.Default()
	}

	rules := make([]config.MatcherRule, len(cfg.MatcherRules))
	copy(rules, cfg.MatcherRules)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})

	compiled := make([][]compiledPattern, len(rules))
	for i, rule := range rules {
		compiled[i] = compilePatterns(rule.Patterns, logger)
	}

	return &RuleMatcher{
		rules:        rules,
		compiled:     compiled,
		defaultLimit: cfg.DefaultLimit,
		logger:       logger,
	}
}

// Match produces a StructuredQuery draft for the given query text.
//
// Description:
//
//	Pure function of (text, embedding): no state is read or written. The
//	first matching rule shapes the draft; otherwise the draft is
//	similarity-only. Never returns an error from the rule path; the error
//	return exists for interface compatibility with remote matcher
//	implementations.
//
// Inputs:
//
//	ctx - Context for tracing. Must not be nil.
//	text - Raw query text. May be empty.
//	embedding - Optional precomputed embedding. May be nil.
//
// Outputs:
//
//	*datatypes.StructuredQuery - The draft. Never nil on nil error.
//	error - Always nil for this implementation.
//
// Thread Safety: Safe for concurrent use.
func (m *RuleMatcher) Match(ctx context.Context, text string, embedding []float32) (*datatypes.StructuredQuery, error) {
	_, span := matcherTracer.Start(ctx, "pattern.RuleMatcher.Match")
	defer span.End()

	draft := &datatypes.StructuredQuery{
		Like:   text,
		Vector: embedding,
		Limit:  m.defaultLimit,
	}

	queryLower := strings.ToLower(text)
	for i, rule := range m.rules {
		if !matchAnyPattern(queryLower, m.compiled[i]) {
			continue
		}

		switch rule.Kind {
		case "where":
			draft.Where = map[string]datatypes.FieldConstraint{
				rule.Field: {Exists: true},
			}
		case "connected":
			draft.Connected = &datatypes.GraphConnection{Relation: rule.Relation}
		case "like":
			// Similarity-only draft; nothing further to set.
		}

		span.SetAttributes(
			attribute.String("rule", rule.Name),
			attribute.String("kind", rule.Kind),
		)
		m.logger.Debug("pattern matcher: rule fired",
			slog.String("rule", rule.Name),
			slog.String("kind", rule.Kind),
		)
		return draft, nil
	}

	span.SetAttributes(attribute.Bool("fallthrough", true))
	return draft, nil
}

// matchAnyPattern checks if any pre-compiled pattern matches the query.
func matchAnyPattern(queryLower string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if matchCompiledPattern(queryLower, cp) {
			return true
		}
	}
	return false
}
