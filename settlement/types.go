/*
Package settlement is the worker compensation settlement engine.

PURPOSE:
  Converts logged time and manual adjustments into payable amounts,
  classifies every payable unit as remitted or unremitted, and issues
  per-worker payout batches (remittances) that settle each unit exactly
  once, even when new work or retroactive adjustments arrive after a
  worklog has already been paid.

KEY CONCEPTS IN THIS FILE (types.go):
  - WorkLog: One worker's logged effort against one task
  - TimeSegment: A single interval of logged work
  - Adjustment: A manual bonus/deduction/correction
  - Remittance: One payout batch to one worker for one period

DESIGN PRINCIPLES:
  1. Exactly-once: a unit moves UNREMITTED -> REMITTED at most once,
     only by a COMPLETED remittance batch.
  2. Precision: all amounts are money.Amount (exact decimals).
  3. Derived totals: a worklog's remitted total is maintained
     incrementally by the batcher and never edited independently.

SEE ALSO:
  - pricing.go: Amount owed for a single unit
  - ledger.go: Per-worklog remitted/unremitted view
  - batcher.go: Remittance generation
  - store.go: Persistence contract
*/
package settlement

import (
	"time"

	"github.com/warp/settlement-engine/money"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TaskID string
type WorkLogID string
type WorkerID string
type SegmentID string
type AdjustmentID string
type RemittanceID string

// =============================================================================
// STATUS ENUMS
// =============================================================================

// SegmentStatus is the work status of a time segment.
// Only ACTIVE segments are payable.
type SegmentStatus string

const (
	SegmentActive   SegmentStatus = "ACTIVE"
	SegmentRemoved  SegmentStatus = "REMOVED"
	SegmentDisputed SegmentStatus = "DISPUTED"
)

func (s SegmentStatus) Valid() bool {
	switch s {
	case SegmentActive, SegmentRemoved, SegmentDisputed:
		return true
	}
	return false
}

// SettlementStatus tracks whether an individual unit has been paid.
type SettlementStatus string

const (
	Unremitted SettlementStatus = "UNREMITTED"
	Remitted   SettlementStatus = "REMITTED"
)

// AdjustmentType tags why an adjustment exists. The sign of the amount
// is free: DEDUCTION is conventionally negative, BONUS positive,
// CORRECTION either.
type AdjustmentType string

const (
	AdjustmentDeduction  AdjustmentType = "DEDUCTION"
	AdjustmentBonus      AdjustmentType = "BONUS"
	AdjustmentCorrection AdjustmentType = "CORRECTION"
)

func (t AdjustmentType) Valid() bool {
	switch t {
	case AdjustmentDeduction, AdjustmentBonus, AdjustmentCorrection:
		return true
	}
	return false
}

// RemittanceStatus is the lifecycle status of a payout batch.
// The engine chooses the status at creation time. PROCESSING is a
// reachable value reserved for an external payment executor; this
// engine never produces it on its own.
type RemittanceStatus string

const (
	RemittancePending    RemittanceStatus = "PENDING"
	RemittanceProcessing RemittanceStatus = "PROCESSING"
	RemittanceCompleted  RemittanceStatus = "COMPLETED"
	RemittanceFailed     RemittanceStatus = "FAILED"
	RemittanceCancelled  RemittanceStatus = "CANCELLED"
)

func (s RemittanceStatus) Valid() bool {
	switch s {
	case RemittancePending, RemittanceProcessing, RemittanceCompleted,
		RemittanceFailed, RemittanceCancelled:
		return true
	}
	return false
}

// =============================================================================
// DOMAIN RECORDS
// =============================================================================

// Task is a unit of billable work description. Tasks outlive worklogs.
type Task struct {
	ID          TaskID
	Title       string
	Description string
	CreatedAt   time.Time
}

// WorkLog is the container for one worker's logged effort on one task.
//
// RemittedTotal caches the sum of amounts of this worklog's units whose
// settlement status is REMITTED. It is updated incrementally on every
// payment by the batcher and must never be edited by anything else.
type WorkLog struct {
	ID            WorkLogID
	TaskID        TaskID
	WorkerID      WorkerID
	HourlyRate    money.Amount
	RemittedTotal money.Amount
	RemittanceID  *RemittanceID // most recent batch that touched this worklog
	CreatedAt     time.Time
}

// TimeSegment is one interval of logged work.
// End >= Start is a hard invariant; pricing rejects violations.
type TimeSegment struct {
	ID               SegmentID
	WorkLogID        WorkLogID
	Start            time.Time
	End              time.Time
	Status           SegmentStatus
	SettlementStatus SettlementStatus
	RemittanceID     *RemittanceID
	CreatedAt        time.Time
}

// Adjustment is a manual bonus/deduction/correction against a worklog.
// It can be created at any time, including after the parent worklog has
// already been paid; it starts UNREMITTED and is swept into the next
// batch.
type Adjustment struct {
	ID               AdjustmentID
	WorkLogID        WorkLogID
	Amount           money.Amount
	Reason           string
	Type             AdjustmentType
	SettlementStatus SettlementStatus
	RemittanceID     *RemittanceID
	CreatedAt        time.Time
}

// Remittance is one payout batch to one worker for one period.
// Gross sums only positive priced units; Net includes negative
// adjustments. Units reference the remittance that settled them; the
// remittance does not own their lifetime.
type Remittance struct {
	ID            RemittanceID
	WorkerID      WorkerID
	GrossAmount   money.Amount
	NetAmount     money.Amount
	Status        RemittanceStatus
	FailureReason string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}
