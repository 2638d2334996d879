// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command qanalyze analyzes a query offline and prints the resulting
// StructuredQuery as JSON. Useful for tuning the rule table and keyword
// sets without running the server.
//
// Usage:
//
//	go run ./cmd/qanalyze "find articles where year equals 2020"
//	go run ./cmd/qanalyze --explain "papers related to climate policy"
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/queryintent/services/query/config"
	"github.com/AleutianAI/queryintent/services/query/intent"
	"github.com/AleutianAI/queryintent/services/query/pattern"
)

// explain holds the --explain flag value.
var explain bool

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	text := strings.Join(args, " ")

	cfg, err := config.GetIntentConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading intent config: %w", err)
	}

	matcher := pattern.NewRuleMatcher(cfg, slog.Default())
	analyzer := intent.NewAnalyzer(matcher, cfg, slog.Default())

	result, err := analyzer.ProcessQuery(ctx, text, nil)
	if err != nil {
		return fmt.Errorf("analyzing query: %w", err)
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	if explain {
		// Classification runs unconditionally here so the output shows
		// what the lexical fallback would decide, whether or not the
		// matcher draft already carried constraints.
		qi := analyzer.Classify(text)
		return enc.Encode(struct {
			Intent *intent.QueryIntent `json:"intent"`
			Result any                 `json:"result"`
		}{Intent: qi, Result: result})
	}

	return enc.Encode(result)
}

func main() {
	root := &cobra.Command{
		Use:   "qanalyze [query text]",
		Short: "Translate a natural-language query into a StructuredQuery",
		Long: "qanalyze runs the query intent analysis pipeline offline: the\n" +
			"pattern matcher rule table, the lexical intent classifier, and\n" +
			"field-constraint synthesis. The resulting StructuredQuery is\n" +
			"printed as JSON.",
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyze,

		SilenceUsage: true,
	}
	root.Flags().BoolVar(&explain, "explain", false, "Include the lexical classification in the output")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
