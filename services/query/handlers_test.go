// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/queryintent/services/query/config"
	"github.com/AleutianAI/queryintent/services/query/datatypes"
	"github.com/AleutianAI/queryintent/services/query/intent"
)

// stubMatcher returns a similarity-only draft, or a fixed error.
type stubMatcher struct {
	err error
}

func (m stubMatcher) Match(_ context.Context, text string, embedding []float32) (*datatypes.StructuredQuery, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &datatypes.StructuredQuery{Like: text, Vector: embedding, Limit: 10}, nil
}

func testConfig() *config.IntentConfig {
	return &config.IntentConfig{
		FieldKeywords: []string{
			"where", "filter", "with", "has", "contains",
			"equals", "greater", "less", "between",
		},
		GraphKeywords:          []string{"related", "connected", "linked", "associated", "references"},
		FieldVocabulary:        []string{"year", "date", "author", "type", "category", "status", "price"},
		RelationshipVocabulary: []string{"related", "connected", "linked", "references", "cites"},
		HistoryCapacity:        100,
		Confidence:             0.8,
		DefaultLimit:           10,
	}
}

func newTestRouter(t *testing.T, matcher intent.Matcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	analyzer := intent.NewAnalyzer(matcher, testConfig(), nil)
	svc := NewServiceWithAnalyzer(analyzer, nil)
	handlers := NewHandlers(svc)

	router := gin.New()
	v1 := router.Group("/v1")
	RegisterRoutes(v1, handlers)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// =============================================================================
// Analyze Endpoint
// =============================================================================

func TestHandleAnalyze_FieldQuery(t *testing.T) {
	router := newTestRouter(t, stubMatcher{})

	w := doJSON(t, router, http.MethodPost, "/v1/query/analyze",
		AnalyzeRequest{Query: "find articles where year equals 2020"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp AnalyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.RequestID == "" {
		t.Error("expected a request_id")
	}
	if resp.Result == nil {
		t.Fatal("expected a result")
	}
	if c, ok := resp.Result.Where["year"]; !ok || !c.Exists {
		t.Errorf("Where = %v, want year existence constraint", resp.Result.Where)
	}
}

func TestHandleAnalyze_MissingQuery(t *testing.T) {
	router := newTestRouter(t, stubMatcher{})

	w := doJSON(t, router, http.MethodPost, "/v1/query/analyze", map[string]any{})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	if resp.Code != "INVALID_REQUEST" {
		t.Errorf("code = %q, want INVALID_REQUEST", resp.Code)
	}
}

func TestHandleAnalyze_MatcherFailure(t *testing.T) {
	router := newTestRouter(t, stubMatcher{err: errors.New("pattern table unavailable")})

	w := doJSON(t, router, http.MethodPost, "/v1/query/analyze",
		AnalyzeRequest{Query: "anything"})

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestHandleAnalyze_PropagatesRequestID(t *testing.T) {
	router := newTestRouter(t, stubMatcher{})

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(AnalyzeRequest{Query: "recent papers"}); err != nil {
		t.Fatalf("encoding request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/v1/query/analyze", &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-abc-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp AnalyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.RequestID != "req-abc-123" {
		t.Errorf("request_id = %q, want the inbound header value", resp.RequestID)
	}
}

// =============================================================================
// History Endpoints
// =============================================================================

func TestHandleHistory_ReflectsAnalyzeCalls(t *testing.T) {
	router := newTestRouter(t, stubMatcher{})

	for _, q := range []string{"first query", "second query"} {
		w := doJSON(t, router, http.MethodPost, "/v1/query/analyze", AnalyzeRequest{Query: q})
		if w.Code != http.StatusOK {
			t.Fatalf("analyze %q: status %d", q, w.Code)
		}
	}

	w := doJSON(t, router, http.MethodGet, "/v1/query/history", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Entries[0].Query != "first query" || resp.Entries[1].Query != "second query" {
		t.Errorf("entries out of insertion order: %+v", resp.Entries)
	}
	for i, e := range resp.Entries {
		if e.Success {
			t.Errorf("entries[%d].Success = true before any outcome is marked", i)
		}
	}
}

func TestHandleOutcome(t *testing.T) {
	router := newTestRouter(t, stubMatcher{})

	w := doJSON(t, router, http.MethodPost, "/v1/query/analyze", AnalyzeRequest{Query: "a query"})
	if w.Code != http.StatusOK {
		t.Fatalf("analyze: status %d", w.Code)
	}

	success := true
	w = doJSON(t, router, http.MethodPost, "/v1/query/history/0/outcome", OutcomeRequest{Success: &success})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/v1/query/history", nil)
	var resp HistoryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Entries[0].Success {
		t.Error("outcome not reflected in history")
	}
}

func TestHandleOutcome_Errors(t *testing.T) {
	router := newTestRouter(t, stubMatcher{})
	success := true

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"index out of range", "/v1/query/history/5/outcome", OutcomeRequest{Success: &success}, http.StatusNotFound},
		{"non-integer index", "/v1/query/history/abc/outcome", OutcomeRequest{Success: &success}, http.StatusBadRequest},
		{"missing success", "/v1/query/history/0/outcome", map[string]any{}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, tt.path, tt.body)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

// =============================================================================
// Health
// =============================================================================

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(t, stubMatcher{})

	w := doJSON(t, router, http.MethodGet, "/v1/query/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
