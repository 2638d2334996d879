// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command queryintent starts the query intent analysis API server.
//
// The server translates natural-language questions into StructuredQuery
// objects for a downstream hybrid search engine. It does not execute
// queries and does not compute embeddings; callers supply precomputed
// vectors when they have them.
//
// Usage:
//
//	go run ./cmd/queryintent
//	go run ./cmd/queryintent -port 9090
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/query/health
//
//	# Analyze a query
//	curl -X POST http://localhost:8080/v1/query/analyze \
//	  -H "Content-Type: application/json" \
//	  -d '{"query": "find articles where year equals 2020"}'
//
//	# Inspect the interaction history
//	curl http://localhost:8080/v1/query/history | jq
//
//	# Record that interaction 0 served the user
//	curl -X POST http://localhost:8080/v1/query/history/0/outcome \
//	  -H "Content-Type: application/json" \
//	  -d '{"success": true}'
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AleutianAI/queryintent/services/query"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	if *debug {
		gin.SetMode(gin.DebugMode)
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// W3C TraceContext propagation so trace context flows from inbound
	// headers through the analysis spans.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	svc, err := query.NewService(context.Background(), slog.Default())
	if err != nil {
		slog.Error("Failed to create query service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	handlers := query.NewHandlers(svc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("queryintent"))
	if *debug {
		router.Use(gin.Logger())
	}

	v1 := router.Group("/v1")
	query.RegisterRoutes(v1, handlers)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("Shutting down queryintent server")
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting queryintent server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
