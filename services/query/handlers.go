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
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/queryintent/services/query/datatypes"
	"github.com/AleutianAI/queryintent/services/query/intent"
)

// =============================================================================
// Request / Response Types
// =============================================================================

// ErrorResponse is the JSON error envelope for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// AnalyzeRequest is the body of POST /v1/query/analyze.
type AnalyzeRequest struct {
	// Query is the raw natural-language question.
	Query string `json:"query" binding:"required"`

	// Vector is an optional precomputed embedding. The service never
	// computes embeddings itself.
	Vector []float32 `json:"vector,omitempty"`
}

// AnalyzeResponse wraps the structured query produced for a request.
type AnalyzeResponse struct {
	RequestID string                     `json:"request_id"`
	Result    *datatypes.StructuredQuery `json:"result"`
}

// HistoryResponse is the body of GET /v1/query/history.
type HistoryResponse struct {
	Entries []intent.HistoryEntry `json:"entries"`
	Count   int                   `json:"count"`
}

// OutcomeRequest is the body of POST /v1/query/history/:index/outcome.
type OutcomeRequest struct {
	Success *bool `json:"success" binding:"required"`
}

// =============================================================================
// Handlers
// =============================================================================

// Handlers holds the HTTP handlers for the query analysis endpoints.
type Handlers struct {
	svc *Service
}

// NewHandlers creates the handlers for a service instance.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one.
func getOrCreateRequestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return uuid.NewString()
}

// HandleAnalyze handles POST /v1/query/analyze.
//
// Description:
//
//	Runs the full analysis pipeline (pattern matcher, lexical fallback,
//	constraint synthesis, history append) and returns the structured query.
//
// Response:
//
//	200 OK: AnalyzeResponse
//	400 Bad Request: Missing query field
//	502 Bad Gateway: Pattern matcher collaborator failure
//
// Thread Safety: Safe for concurrent use.
func (h *Handlers) HandleAnalyze(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAnalyze")

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "query is required: " + err.Error(),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	result, err := h.svc.Analyze(c.Request.Context(), req.Query, req.Vector)
	if err != nil {
		logger.Warn("pattern matcher failure",
			slog.String("error", err.Error()),
		)
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: err.Error(),
			Code:  "MATCHER_FAILURE",
		})
		return
	}

	logger.Debug("query analyzed",
		slog.Bool("has_where", result.HasWhere()),
		slog.Bool("has_connected", result.HasConnected()),
	)
	c.JSON(http.StatusOK, AnalyzeResponse{
		RequestID: requestID,
		Result:    result,
	})
}

// HandleHistory handles GET /v1/query/history.
//
// Description:
//
//	Returns the insertion-ordered history snapshot. Index positions in the
//	response are the indices accepted by the outcome endpoint.
//
// Response:
//
//	200 OK: HistoryResponse
//
// Thread Safety: Safe for concurrent use.
func (h *Handlers) HandleHistory(c *gin.Context) {
	entries := h.svc.History()
	c.JSON(http.StatusOK, HistoryResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

// HandleOutcome handles POST /v1/query/history/:index/outcome.
//
// Description:
//
//	Marks the observed outcome of a past interaction, completing the
//	feedback loop the history exists for.
//
// Response:
//
//	204 No Content: Outcome recorded
//	400 Bad Request: Non-integer index or missing success field
//	404 Not Found: Index outside current history bounds
//
// Thread Safety: Safe for concurrent use.
func (h *Handlers) HandleOutcome(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleOutcome")

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "index must be an integer",
			Code:  "INVALID_INDEX",
		})
		return
	}

	var req OutcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "success is required: " + err.Error(),
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.svc.MarkOutcome(index, *req.Success); err != nil {
		if errors.Is(err, intent.ErrHistoryIndexOutOfRange) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: err.Error(),
				Code:  "INDEX_OUT_OF_RANGE",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "INTERNAL",
		})
		return
	}

	logger.Debug("outcome recorded", slog.Int("index", index))
	c.Status(http.StatusNoContent)
}

// HandleHealth handles GET /v1/query/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
