// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes holds the StructuredQuery contract shared between the
// intent analysis core, the pattern matcher, and the downstream hybrid
// search executor. It has no dependencies on either side so both can import
// it without cycles.
package datatypes

// FieldConstraint restricts matching records on a single field.
//
// Description:
//
//	The only predicate currently produced by the analysis layer is an
//	existence check: the field must be present on a record for it to match.
//	Value comparison operators are a downstream concern.
type FieldConstraint struct {
	// Exists requires the field to be present (non-null) on matching records.
	Exists bool `json:"exists"`
}

// GraphConnection marks a query as requiring graph-relationship traversal.
//
// Description:
//
//	Set by the pattern matcher when the query text names a relationship
//	between records (citations, references, links). The analysis core only
//	reads presence/absence of this marker; it never populates it.
type GraphConnection struct {
	// Relation is the reference property to traverse (e.g. "cites").
	Relation string `json:"relation,omitempty"`

	// Direction is "out" (default), "in", or "both".
	Direction string `json:"direction,omitempty"`

	// Depth is the maximum traversal depth. 0 means executor default.
	Depth int `json:"depth,omitempty"`
}

// StructuredQuery is the target output format for the downstream hybrid
// search executor.
//
// Description:
//
//	Encodes vector-similarity, field-filter, and graph-relationship search
//	parameters. The shape is owned by the executor; the intent analysis core
//	guarantees it never removes fields set by the pattern matcher and only
//	additively sets Where when absent.
type StructuredQuery struct {
	// Like is the free-text similarity clause (usually the raw query).
	Like string `json:"like,omitempty"`

	// Vector is the caller-supplied embedding for vector similarity search.
	// Nil when the caller did not precompute one.
	Vector []float32 `json:"vector,omitempty"`

	// Where maps field names to constraints. Nil when no field filtering
	// is requested.
	Where map[string]FieldConstraint `json:"where,omitempty"`

	// Connected is the graph traversal marker. Nil when no relationship
	// traversal is requested.
	Connected *GraphConnection `json:"connected,omitempty"`

	// Collection is the target collection/class name. Empty means the
	// executor default.
	Collection string `json:"collection,omitempty"`

	// Limit caps the result count. 0 means the executor default.
	Limit int `json:"limit,omitempty"`
}

// HasWhere reports whether a field-constraint section is set.
func (q *StructuredQuery) HasWhere() bool {
	return q != nil && len(q.Where) > 0
}

// HasConnected reports whether a graph-connection section is set.
func (q *StructuredQuery) HasConnected() bool {
	return q != nil && q.Connected != nil
}
