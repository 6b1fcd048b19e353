/*
store.go - Persistence contract for the settlement engine

PURPOSE:
  Defines the interface between the engine and the database. The engine
  never talks SQL; it selects unremitted units, resolves worklogs, and
  hands one SettlementRun back to the store for atomic application.

ATOMICITY CONTRACT:
  ApplyRun applies every batch of one Generate invocation in a single
  storage transaction. Either all remittance rows land and all unit
  mutations stick, or none do. A crash mid-run must never leave units
  marked REMITTED without their remittance row, or vice versa.

CONCURRENCY CONTRACT:
  Two concurrent invocations must not both settle the same unit. The
  store's transaction (single-writer in SQLite, row locking elsewhere)
  is the serialization point: the select-unremitted -> mark-remitted
  sequence of one invocation commits before another can read the same
  units as still unremitted.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite
  - settlement/store: In-memory for tests
*/
package settlement

import (
	"context"

	"github.com/warp/settlement-engine/money"
)

// Store is the persistence collaborator the engine depends on.
type Store interface {
	// UnremittedSegments returns every ACTIVE segment whose settlement
	// status is UNREMITTED, system-wide.
	UnremittedSegments(ctx context.Context) ([]TimeSegment, error)

	// UnremittedAdjustments returns every UNREMITTED adjustment,
	// system-wide.
	UnremittedAdjustments(ctx context.Context) ([]Adjustment, error)

	// GetWorkLog returns a worklog by id, or ErrWorkLogNotFound.
	GetWorkLog(ctx context.Context, id WorkLogID) (*WorkLog, error)

	// ApplyRun atomically persists the remittance rows of a run and,
	// for COMPLETED batches, marks the listed units REMITTED, links
	// them to their batch, and bumps each touched worklog's remitted
	// total. All-or-nothing.
	ApplyRun(ctx context.Context, run SettlementRun) error
}

// SettlementRun is the full mutation set of one Generate invocation.
type SettlementRun struct {
	Batches []RemittanceBatch
}

// RemittanceBatch is one worker's payout plus the unit mutations that
// settle it. For non-COMPLETED outcomes the mutation slices are empty:
// the remittance row is still recorded, the money stays unremitted and
// eligible for a future attempt.
type RemittanceBatch struct {
	Remittance    Remittance
	SegmentIDs    []SegmentID
	AdjustmentIDs []AdjustmentID

	// WorkLogDeltas maps each touched worklog to the priced amount this
	// batch adds to its remitted total.
	WorkLogDeltas map[WorkLogID]money.Amount
}
