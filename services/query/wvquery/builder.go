// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package wvquery compiles StructuredQuery objects into Weaviate GraphQL
// builder arguments. It only builds; execution stays with the downstream
// query layer that owns the client connection.
package wvquery

import (
	"sort"

	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"github.com/AleutianAI/queryintent/services/query/datatypes"
)

// DefaultLimit is applied when the structured query carries no limit.
const DefaultLimit = 10

// CompiledQuery holds the Weaviate builder arguments for one structured query.
//
// Description:
//
//	Produced by Compile. The caller feeds the parts into a GetBuilder
//	obtained from its own client (see Into), then executes. Where is nil
//	when the query has no field constraints; NearVector is nil when no
//	embedding was supplied.
type CompiledQuery struct {
	// Class is the target Weaviate class name.
	Class string

	// Where is the compiled field-constraint filter, or nil.
	Where *filters.WhereBuilder

	// NearVector is the vector-similarity argument, or nil.
	NearVector *graphql.NearVectorArgumentBuilder

	// Fields is the result field selection, including reference expansions
	// for graph traversal.
	Fields []graphql.Field

	// Limit caps the result count.
	Limit int
}

// Compile translates a StructuredQuery into Weaviate builder arguments.
//
// Description:
//
//	Field constraints become IsNull=false filters (existence checks),
//	combined under an And operator when there is more than one. A graph
//	connection becomes a reference-expansion field on the traversed
//	relation. The embedding, when present, becomes a nearVector argument.
//	Field names are sorted so the compiled filter is deterministic.
//
// Inputs:
//
//	q - The structured query. Must not be nil.
//	class - Target class name. Used when q.Collection is empty.
//	resultFields - Scalar result properties to select. May be empty.
//
// Outputs:
//
//	*CompiledQuery - The builder arguments. Never nil.
//
// Thread Safety: Stateless. Safe for concurrent use.
func Compile(q *datatypes.StructuredQuery, class string, resultFields []string) *CompiledQuery {
	if q.Collection != "" {
		class = q.Collection
	}

	compiled := &CompiledQuery{
		Class: class,
		Limit: q.Limit,
	}
	if compiled.Limit <= 0 {
		compiled.Limit = DefaultLimit
	}

	compiled.Where = compileWhere(q.Where)

	if len(q.Vector) > 0 {
		compiled.NearVector = (&graphql.NearVectorArgumentBuilder{}).WithVector(q.Vector)
	}

	for _, name := range resultFields {
		compiled.Fields = append(compiled.Fields, graphql.Field{Name: name})
	}
	if q.Connected != nil && q.Connected.Relation != "" {
		// Reference expansion stands in for the traversal: the executor
		// resolves the related objects through the cross-reference property.
		compiled.Fields = append(compiled.Fields, graphql.Field{
			Name:   q.Connected.Relation,
			Fields: []graphql.Field{{Name: "__typename"}},
		})
	}

	return compiled
}

// compileWhere builds the existence filter for the constraint map.
//
// Description:
//
//	A single constraint compiles to path=[field] IsNull=false. Multiple
//	constraints compile to And over one such operand per field, in sorted
//	field order. Nil/empty input compiles to nil.
func compileWhere(where map[string]datatypes.FieldConstraint) *filters.WhereBuilder {
	if len(where) == 0 {
		return nil
	}

	names := make([]string, 0, len(where))
	for name := range where {
		names = append(names, name)
	}
	sort.Strings(names)

	operands := make([]*filters.WhereBuilder, 0, len(names))
	for _, name := range names {
		// Only the existence predicate is expressible today; a present
		// field is one that is not null.
		operands = append(operands, filters.Where().
			WithPath([]string{name}).
			WithOperator(filters.IsNull).
			WithValueBoolean(!where[name].Exists))
	}

	if len(operands) == 1 {
		return operands[0]
	}
	return filters.Where().
		WithOperator(filters.And).
		WithOperands(operands)
}

// Into applies the compiled arguments to a GetBuilder.
//
// Description:
//
//	The builder is obtained by the caller from its own client
//	(client.GraphQL().Get()); this package never holds a connection.
//	Nil parts are skipped.
//
// Inputs:
//
//	get - The GetBuilder to populate. Must not be nil.
//
// Outputs:
//
//	*graphql.GetBuilder - The same builder, for chaining.
func (c *CompiledQuery) Into(get *graphql.GetBuilder) *graphql.GetBuilder {
	get = get.WithClassName(c.Class).WithLimit(c.Limit)
	if len(c.Fields) > 0 {
		get = get.WithFields(c.Fields...)
	}
	if c.Where != nil {
		get = get.WithWhere(c.Where)
	}
	if c.NearVector != nil {
		get = get.WithNearVector(c.NearVector)
	}
	return get
}
