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
	"errors"
	"fmt"
	"time"

	"github.com/AleutianAI/queryintent/services/query/datatypes"
)

// ErrHistoryIndexOutOfRange is returned by MarkOutcome for an index outside
// the current history bounds.
var ErrHistoryIndexOutOfRange = errors.New("history index out of range")

// HistoryEntry records one analyzed interaction.
//
// Description:
//
//	Success is always false at write time; an external actor flips it via
//	Analyzer.MarkOutcome once user interaction reveals whether the
//	structured query served the request. The history lives only in process
//	memory for the instance's lifetime.
type HistoryEntry struct {
	// ID uniquely identifies the interaction across log lines and traces.
	ID string `json:"id"`

	// Query is the raw query text as submitted.
	Query string `json:"query"`

	// Result is the structured query returned to the caller.
	Result *datatypes.StructuredQuery `json:"result"`

	// Success records the observed outcome. False until marked.
	Success bool `json:"success"`

	// Timestamp is when the interaction was analyzed.
	Timestamp time.Time `json:"timestamp"`
}

// =============================================================================
// Bounded History Ring
// =============================================================================

// historyRing is a fixed-capacity FIFO over HistoryEntry.
//
// Description:
//
//	An arena-plus-index ring: appends beyond capacity overwrite the oldest
//	slot, so the length bound is structural rather than enforced by
//	trimming a growing slice. Insertion order is preserved for iteration
//	and index-based access.
//
// Thread Safety: None. The owning Analyzer is single-writer by design.
type historyRing struct {
	buf   []HistoryEntry
	head  int // index of the oldest entry
	count int
}

func newHistoryRing(capacity int) *historyRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &historyRing{buf: make([]HistoryEntry, capacity)}
}

// append inserts an entry, evicting the oldest when at capacity.
func (r *historyRing) append(entry HistoryEntry) {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = entry
		r.count++
		return
	}
	// At capacity: overwrite the oldest slot and advance head.
	r.buf[r.head] = entry
	r.head = (r.head + 1) % len(r.buf)
}

func (r *historyRing) len() int {
	return r.count
}

// at returns a pointer to the entry at insertion-order index i (0 = oldest).
func (r *historyRing) at(i int) (*HistoryEntry, bool) {
	if i < 0 || i >= r.count {
		return nil, false
	}
	return &r.buf[(r.head+i)%len(r.buf)], true
}

// snapshot copies the entries in insertion order.
func (r *historyRing) snapshot() []HistoryEntry {
	out := make([]HistoryEntry, r.count)
	for i := 0; i < r.count; i++ {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}

// =============================================================================
// Analyzer History Accessors
// =============================================================================

// HistoryLen returns the current interaction history length.
//
// Outputs:
//
//	int - Always ≤ the configured history capacity.
func (a *Analyzer) HistoryLen() int {
	return a.history.len()
}

// HistoryEntries returns an insertion-ordered snapshot of the history.
//
// Description:
//
//	The snapshot is a copy; mutating it does not affect the analyzer.
//	Index 0 is the oldest surviving entry.
//
// Outputs:
//
//	[]HistoryEntry - Ordered copy, length ≤ capacity.
func (a *Analyzer) HistoryEntries() []HistoryEntry {
	return a.history.snapshot()
}

// MarkOutcome records the observed outcome of a past interaction.
//
// Description:
//
//	Flips the Success flag of the history entry at insertion-order index
//	(0 = oldest surviving entry). This is the completion of the feedback
//	loop the history exists for: entries are written success=false and an
//	external actor marks them once user interaction reveals whether the
//	structured query served the request.
//
// Inputs:
//
//	index - Insertion-order index into the current history.
//	success - The observed outcome.
//
// Outputs:
//
//	error - ErrHistoryIndexOutOfRange (wrapped with the offending index)
//	        when index is outside [0, HistoryLen()).
//
// Thread Safety: NOT safe for concurrent use with ProcessQuery.
func (a *Analyzer) MarkOutcome(index int, success bool) error {
	entry, ok := a.history.at(index)
	if !ok {
		return fmt.Errorf("MarkOutcome: index %d with history length %d: %w",
			index, a.history.len(), ErrHistoryIndexOutOfRange)
	}
	entry.Success = success
	return nil
}
