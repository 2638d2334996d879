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

// Extension seams. None of these are reachable from ProcessQuery today;
// they are typed, callable commitments to planned features (similarity
// search over the history, query reuse, entity recognition, and a
// matcher-free assembly path), kept so the integration points stay stable
// while the implementations land.

import (
	"context"

	"github.com/AleutianAI/queryintent/services/query/datatypes"
)

// directQueryLimit is the result cap for matcher-free direct assembly.
const directQueryLimit = 10

// SimilarQueries retrieves prior interactions similar to the given embedding.
//
// Description:
//
//	Stub: the similarity function over history entries is not implemented
//	yet, so the result is always empty. The signature commits to
//	similarity-based history lookup as the retrieval contract.
//
// Inputs:
//
//	ctx - Context. Unused today.
//	embedding - Query embedding to compare against. May be nil.
//	k - Maximum results once implemented.
//
// Outputs:
//
//	[]HistoryEntry - Always empty today.
//	error - Always nil today.
func (a *Analyzer) SimilarQueries(ctx context.Context, embedding []float32, k int) ([]HistoryEntry, error) {
	_, _, _ = ctx, embedding, k
	return []HistoryEntry{}, nil
}

// AdaptQuery reshapes a previous structured query for a new input string.
//
// Description:
//
//	Stub for query-reuse/caching strategies: currently the identity
//	function over the previous result. The new text is accepted but not
//	yet consulted.
//
// Inputs:
//
//	ctx - Context. Unused today.
//	previous - The structured query to adapt. Returned as-is.
//	newText - The new query text. Ignored today.
//
// Outputs:
//
//	*datatypes.StructuredQuery - previous, unmodified.
//	error - Always nil today.
func (a *Analyzer) AdaptQuery(ctx context.Context, previous *datatypes.StructuredQuery, newText string) (*datatypes.StructuredQuery, error) {
	_, _ = ctx, newText
	return previous, nil
}

// ExtractEntities recognizes named entities in the query text.
//
// Description:
//
//	Stub for integration with an external entity-recognition collaborator;
//	always returns an empty sequence today.
//
// Inputs:
//
//	ctx - Context. Unused today.
//	text - Query text. Ignored today.
//
// Outputs:
//
//	[]string - Always empty today.
//	error - Always nil today.
func (a *Analyzer) ExtractEntities(ctx context.Context, text string) ([]string, error) {
	_, _ = ctx, text
	return []string{}, nil
}

// BuildDirectQuery assembles a minimal StructuredQuery without the matcher.
//
// Description:
//
//	Fallback construction strategy bypassing the pattern-matcher path:
//	produces a similarity-only draft from the raw text. The intent and
//	entity arguments are accepted for the eventual richer assembly but do
//	not shape the draft today. Not wired into ProcessQuery.
//
// Inputs:
//
//	text - Raw query text.
//	qi - Classification result. Ignored today.
//	entities - Recognized entities. Ignored today.
//
// Outputs:
//
//	*datatypes.StructuredQuery - {Like: text, Limit: 10}. Never nil.
func (a *Analyzer) BuildDirectQuery(text string, qi *QueryIntent, entities []string) *datatypes.StructuredQuery {
	_, _ = qi, entities
	return &datatypes.StructuredQuery{
		Like:  text,
		Limit: directQueryLimit,
	}
}
