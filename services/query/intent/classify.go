// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package intent

import "strings"

// =============================================================================
// Intent Types
// =============================================================================

// IntentType is the inferred shape of a natural-language query.
type IntentType string

const (
	// IntentVector is the default: pure similarity search, no structure.
	IntentVector IntentType = "vector"

	// IntentField indicates a field-filter query.
	IntentField IntentType = "field"

	// IntentGraph indicates a graph-relationship traversal query.
	IntentGraph IntentType = "graph"

	// IntentCombined indicates both field and graph signals are present.
	IntentCombined IntentType = "combined"
)

// ExtractedTerms carries the lexical tokens recognized during classification.
//
// Description:
//
//	A nil slice means that extraction branch was not attempted; an empty
//	non-nil slice means it was attempted and found nothing. Entities and
//	Modifiers are reserved for future extraction passes and are never
//	populated by the current logic.
type ExtractedTerms struct {
	// Fields are tokens matching the field-indicator vocabulary, in
	// traversal order, duplicates preserved.
	Fields []string `json:"fields,omitempty"`

	// Relationships are tokens matching the relationship vocabulary, in
	// traversal order.
	Relationships []string `json:"relationships,omitempty"`

	// Entities is reserved; always nil.
	Entities []string `json:"entities,omitempty"`

	// Modifiers is reserved; always nil.
	Modifiers []string `json:"modifiers,omitempty"`
}

// QueryIntent is the ephemeral result of lexical classification, created per
// call and discarded after the draft merge.
type QueryIntent struct {
	// Type is the mutually exclusive query-shape classification.
	Type IntentType `json:"type"`

	// Confidence is a fixed heuristic constant whenever classification
	// succeeds. A computed score is a known simplification left for a
	// learned model.
	Confidence float64 `json:"confidence"`

	// ExtractedTerms holds the lexical tokens behind the classification.
	ExtractedTerms ExtractedTerms `json:"extracted_terms"`
}

// =============================================================================
// Lexical Classification
// =============================================================================

// Classify performs lexical intent classification on the query text.
//
// Description:
//
//	Field intent is signaled by any configured field keyword appearing in
//	the lower-cased query; graph intent by any graph keyword. Both signals
//	present classifies as combined, exactly one as field or graph, neither
//	as vector. Confidence is the configured constant regardless of branch.
//	The extraction for a branch only runs when that branch's signal is
//	present; the opposite branch's term list stays nil to mark "not
//	attempted".
//
// Inputs:
//
//	text - Raw query text. Empty text yields the vector classification.
//
// Outputs:
//
//	*QueryIntent - The classification. Never nil.
//
// Thread Safety: Read-only on the analyzer; safe to call concurrently with
// other Classify calls (but not with ProcessQuery, which mutates history).
func (a *Analyzer) Classify(text string) *QueryIntent {
	queryLower := strings.ToLower(text)

	hasField := containsAny(queryLower, a.cfg.FieldKeywords)
	hasGraph := containsAny(queryLower, a.cfg.GraphKeywords)

	qi := &QueryIntent{Confidence: a.cfg.Confidence}

	switch {
	case hasField && hasGraph:
		qi.Type = IntentCombined
	case hasField:
		qi.Type = IntentField
	case hasGraph:
		qi.Type = IntentGraph
	default:
		qi.Type = IntentVector
	}

	if hasField {
		qi.ExtractedTerms.Fields = extractFieldTerms(text, a.fieldVocab)
	}
	if hasGraph {
		qi.ExtractedTerms.Relationships = extractRelationshipTerms(text, a.relationVocab)
	}

	return qi
}

// =============================================================================
// Term Extraction (pure)
// =============================================================================

// extractFieldTerms collects whitespace-separated tokens whose lower-cased
// form is in the field-indicator vocabulary.
//
// Description:
//
//	Splits the original-case query on whitespace, lower-cases each token
//	individually, and keeps matches in traversal order with duplicates
//	preserved. Pure function of the inputs.
func extractFieldTerms(text string, vocab map[string]struct{}) []string {
	terms := []string{}
	for _, token := range strings.Fields(text) {
		lowered := strings.ToLower(token)
		if _, ok := vocab[lowered]; ok {
			terms = append(terms, lowered)
		}
	}
	return terms
}

// extractRelationshipTerms collects tokens from the lower-cased query that
// are in the relationship vocabulary.
//
// Description:
//
//	Lower-cases the whole query first, then splits on whitespace and keeps
//	matches in traversal order. Pure function of the inputs.
func extractRelationshipTerms(text string, vocab map[string]struct{}) []string {
	terms := []string{}
	for _, token := range strings.Fields(strings.ToLower(text)) {
		if _, ok := vocab[token]; ok {
			terms = append(terms, token)
		}
	}
	return terms
}

// containsAny checks whether any keyword appears in the query.
func containsAny(queryLower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(queryLower, kw) {
			return true
		}
	}
	return false
}
