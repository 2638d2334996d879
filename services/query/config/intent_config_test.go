// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"context"
	"reflect"
	"strings"
	"testing"
)

func TestGetIntentConfig_LoadsEmbeddedDefaults(t *testing.T) {
	ResetIntentConfig()
	t.Cleanup(ResetIntentConfig)

	cfg, err := GetIntentConfig(context.Background())
	if err != nil {
		t.Fatalf("GetIntentConfig returned error: %v", err)
	}

	wantFieldKeywords := []string{
		"where", "filter", "with", "has", "contains",
		"equals", "greater", "less", "between",
	}
	if !reflect.DeepEqual(cfg.FieldKeywords, wantFieldKeywords) {
		t.Errorf("FieldKeywords = %v, want %v", cfg.FieldKeywords, wantFieldKeywords)
	}

	wantGraphKeywords := []string{"related", "connected", "linked", "associated", "references"}
	if !reflect.DeepEqual(cfg.GraphKeywords, wantGraphKeywords) {
		t.Errorf("GraphKeywords = %v, want %v", cfg.GraphKeywords, wantGraphKeywords)
	}

	wantFieldVocab := []string{"year", "date", "author", "type", "category", "status", "price"}
	if !reflect.DeepEqual(cfg.FieldVocabulary, wantFieldVocab) {
		t.Errorf("FieldVocabulary = %v, want %v", cfg.FieldVocabulary, wantFieldVocab)
	}

	wantRelVocab := []string{"related", "connected", "linked", "references", "cites"}
	if !reflect.DeepEqual(cfg.RelationshipVocabulary, wantRelVocab) {
		t.Errorf("RelationshipVocabulary = %v, want %v", cfg.RelationshipVocabulary, wantRelVocab)
	}

	if cfg.HistoryCapacity != 100 {
		t.Errorf("HistoryCapacity = %d, want 100", cfg.HistoryCapacity)
	}
	if cfg.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", cfg.Confidence)
	}
	if len(cfg.MatcherRules) == 0 {
		t.Error("expected embedded matcher rules")
	}
}

func TestGetIntentConfig_CachesAcrossCalls(t *testing.T) {
	ResetIntentConfig()
	t.Cleanup(ResetIntentConfig)

	first, err := GetIntentConfig(context.Background())
	if err != nil {
		t.Fatalf("first call returned error: %v", err)
	}
	second, err := GetIntentConfig(context.Background())
	if err != nil {
		t.Fatalf("second call returned error: %v", err)
	}
	if first != second {
		t.Error("expected the cached instance on the second call")
	}
}

func TestGetIntentConfig_NilContext(t *testing.T) {
	//nolint:staticcheck // Intentional nil context to exercise the guard.
	if _, err := GetIntentConfig(nil); err == nil {
		t.Error("expected error for nil context")
	}
}

func TestLoadIntentConfig_AppliesDefaults(t *testing.T) {
	data := []byte(`
field_keywords: [where]
graph_keywords: [related]
`)
	cfg, err := LoadIntentConfig(context.Background(), data)
	if err != nil {
		t.Fatalf("LoadIntentConfig returned error: %v", err)
	}
	if cfg.HistoryCapacity != DefaultHistoryCapacity {
		t.Errorf("HistoryCapacity = %d, want default %d", cfg.HistoryCapacity, DefaultHistoryCapacity)
	}
	if cfg.Confidence != DefaultConfidence {
		t.Errorf("Confidence = %v, want default %v", cfg.Confidence, DefaultConfidence)
	}
	if cfg.DefaultLimit != DefaultQueryLimit {
		t.Errorf("DefaultLimit = %d, want default %d", cfg.DefaultLimit, DefaultQueryLimit)
	}
}

func TestLoadIntentConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing field keywords",
			yaml:    "graph_keywords: [related]",
			wantErr: "field_keywords",
		},
		{
			name:    "missing graph keywords",
			yaml:    "field_keywords: [where]",
			wantErr: "graph_keywords",
		},
		{
			name: "confidence out of range",
			yaml: `
field_keywords: [where]
graph_keywords: [related]
confidence: 1.5
`,
			wantErr: "confidence",
		},
		{
			name: "where rule without field",
			yaml: `
field_keywords: [where]
graph_keywords: [related]
matcher_rules:
  - name: broken
    kind: where
    patterns: [x]
`,
			wantErr: "field must not be empty",
		},
		{
			name: "connected rule without relation",
			yaml: `
field_keywords: [where]
graph_keywords: [related]
matcher_rules:
  - name: broken
    kind: connected
    patterns: [x]
`,
			wantErr: "relation must not be empty",
		},
		{
			name: "unknown kind",
			yaml: `
field_keywords: [where]
graph_keywords: [related]
matcher_rules:
  - name: broken
    kind: fancy
    patterns: [x]
`,
			wantErr: "kind must be",
		},
		{
			name: "rule without patterns",
			yaml: `
field_keywords: [where]
graph_keywords: [related]
matcher_rules:
  - name: broken
    kind: like
`,
			wantErr: "patterns must not be empty",
		},
		{
			name: "rule without name",
			yaml: `
field_keywords: [where]
graph_keywords: [related]
matcher_rules:
  - kind: like
    patterns: [x]
`,
			wantErr: "name must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadIntentConfig(context.Background(), []byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadIntentConfig_EmptyData(t *testing.T) {
	if _, err := LoadIntentConfig(context.Background(), nil); err == nil {
		t.Error("expected error for empty data")
	}
}

func TestLoadIntentConfig_OversizedData(t *testing.T) {
	data := make([]byte, MaxYAMLFileSize+1)
	if _, err := LoadIntentConfig(context.Background(), data); err == nil {
		t.Error("expected error for oversized data")
	}
}
