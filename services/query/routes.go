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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all query analysis routes with the router.
//
// Description:
//
//	Registers the /v1/query/* endpoints with the given Gin router group.
//	The router group should already have any required middleware applied.
//
// Endpoints:
//
//	POST /v1/query/analyze - Translate a query into a StructuredQuery
//	GET  /v1/query/history - Insertion-ordered interaction history
//	POST /v1/query/history/:index/outcome - Record an observed outcome
//	GET  /v1/query/health - Health check
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Example:
//
//	svc, _ := query.NewService(ctx, slog.Default())
//	handlers := query.NewHandlers(svc)
//
//	v1 := router.Group("/v1")
//	query.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	q := rg.Group("/query")
	{
		q.POST("/analyze", handlers.HandleAnalyze)

		// Interaction history and its feedback loop
		q.GET("/history", handlers.HandleHistory)
		q.POST("/history/:index/outcome", handlers.HandleOutcome)

		q.GET("/health", handlers.HandleHealth)
	}
}
