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

import (
	"context"
	"testing"

	"github.com/AleutianAI/queryintent/services/query/datatypes"
)

func TestSimilarQueries_StubReturnsEmpty(t *testing.T) {
	a := newTestAnalyzer(t)

	// Even with history present, the similarity function is unimplemented
	// and the result is empty by contract.
	if _, err := a.ProcessQuery(context.Background(), "seed the history", nil); err != nil {
		t.Fatalf("ProcessQuery failed: %v", err)
	}

	got, err := a.SimilarQueries(context.Background(), []float32{0.5, 0.5}, 5)
	if err != nil {
		t.Fatalf("SimilarQueries returned error: %v", err)
	}
	if got == nil {
		t.Fatal("expected empty non-nil result")
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d entries", len(got))
	}
}

func TestAdaptQuery_StubIsIdentity(t *testing.T) {
	a := newTestAnalyzer(t)

	previous := &datatypes.StructuredQuery{
		Like:  "old query",
		Where: map[string]datatypes.FieldConstraint{"year": {Exists: true}},
		Limit: 10,
	}

	got, err := a.AdaptQuery(context.Background(), previous, "completely different query")
	if err != nil {
		t.Fatalf("AdaptQuery returned error: %v", err)
	}
	if got != previous {
		t.Error("expected the identity over the previous result")
	}
}

func TestExtractEntities_StubReturnsEmpty(t *testing.T) {
	a := newTestAnalyzer(t)

	got, err := a.ExtractEntities(context.Background(), "papers by Einstein about relativity")
	if err != nil {
		t.Fatalf("ExtractEntities returned error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %v", got)
	}
}

func TestBuildDirectQuery(t *testing.T) {
	a := newTestAnalyzer(t)

	got := a.BuildDirectQuery("show me recent papers", nil, nil)
	if got.Like != "show me recent papers" {
		t.Errorf("Like = %q, want the raw text", got.Like)
	}
	if got.Limit != 10 {
		t.Errorf("Limit = %d, want 10", got.Limit)
	}
	if got.Where != nil || got.Connected != nil || got.Vector != nil {
		t.Errorf("direct query must be similarity-only, got %+v", got)
	}

	// Intent and entities are accepted but do not shape the draft today.
	qi := a.Classify("where year equals 2020")
	withIntent := a.BuildDirectQuery("where year equals 2020", qi, []string{"2020"})
	if withIntent.Where != nil {
		t.Errorf("intent must not shape the direct draft yet, got %+v", withIntent.Where)
	}
}
