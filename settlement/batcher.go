/*
batcher.go - Remittance generation

PURPOSE:
  The orchestration engine. Finds all unremitted payable units, groups
  them by worker, prices them, and creates one remittance per worker,
  atomically marking every included unit as remitted under that batch.
  In dry-run mode the same totals are computed without mutating
  anything.

EXACTLY-ONCE:
  Units are selected by settlement status, so a unit settled by one
  COMPLETED batch is never reselected. Retrying a run after a storage
  failure is safe: a rolled-back run leaves everything unremitted.

SELECTION SCOPE:
  Selection is global, not period-filtered. The resolved period only
  labels the produced remittances: everything currently owed is paid,
  tagged with the processing period.

SEE ALSO:
  - store.go: ApplyRun atomicity contract
  - pricing.go: Per-unit amounts
*/
package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/settlement-engine/money"
)

// Engine generates remittances against a Store.
type Engine struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() RemittanceID
}

// NewEngine creates an engine. The logger may be nil.
func NewEngine(store Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() RemittanceID { return RemittanceID(uuid.NewString()) },
	}
}

// WithClock overrides the engine's clock. For tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// GenerateInput configures one remittance generation run.
type GenerateInput struct {
	PeriodStart *time.Time
	PeriodEnd   *time.Time

	// DryRun computes totals without persisting or mutating anything.
	DryRun bool

	// StatusOverride forces the outcome status of every created
	// remittance. Unset means COMPLETED. Any non-COMPLETED outcome
	// records the remittance but leaves all units unremitted.
	StatusOverride *RemittanceStatus
}

// BatchSummary describes one worker's remittance within a run.
type BatchSummary struct {
	RemittanceID RemittanceID
	WorkerID     WorkerID
	GrossAmount  money.Amount
	NetAmount    money.Amount
	Status       RemittanceStatus
	WorkLogCount int
}

// GenerateResult is the outcome of one run.
type GenerateResult struct {
	RemittancesCreated int
	TotalGross         money.Amount
	TotalNet           money.Amount
	Remittances        []BatchSummary
	DryRun             bool
	Period             Period

	// Anomalies counts units referencing worklogs that could not be
	// found. Such units are skipped, not fatal; the count surfaces
	// referential corruption upstream.
	Anomalies int
}

// pricedUnit is a payable unit resolved to its worklog and amount.
type pricedUnit struct {
	segmentID    *SegmentID
	adjustmentID *AdjustmentID
	worklog      *WorkLog
	amount       money.Amount
}

// Generate runs the settlement algorithm. Validation errors abort the
// whole invocation with no state change; storage failures during
// ApplyRun roll back everything, leaving all units re-batchable.
func (e *Engine) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	period, err := ResolvePeriod(in.PeriodStart, in.PeriodEnd, e.now())
	if err != nil {
		return nil, err
	}

	status := RemittanceCompleted
	if in.StatusOverride != nil {
		if !in.StatusOverride.Valid() {
			return nil, ErrInvalidStatus
		}
		status = *in.StatusOverride
	}

	segments, err := e.store.UnremittedSegments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading unremitted segments: %w", err)
	}
	adjustments, err := e.store.UnremittedAdjustments(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading unremitted adjustments: %w", err)
	}

	// Group units by worker. The worklog cache is per-invocation state,
	// built once and threaded through; nothing global.
	byWorker := make(map[WorkerID][]pricedUnit)
	worklogs := make(map[WorkLogID]*WorkLog)
	anomalies := 0

	resolve := func(id WorkLogID) (*WorkLog, error) {
		if wl, ok := worklogs[id]; ok {
			return wl, nil
		}
		wl, err := e.store.GetWorkLog(ctx, id)
		if err != nil {
			if errors.Is(err, ErrWorkLogNotFound) {
				// Referential corruption upstream: skip the unit, keep
				// the run alive.
				worklogs[id] = nil
				return nil, nil
			}
			return nil, err
		}
		worklogs[id] = wl
		return wl, nil
	}

	for _, seg := range segments {
		wl, err := resolve(seg.WorkLogID)
		if err != nil {
			return nil, fmt.Errorf("resolving worklog %s: %w", seg.WorkLogID, err)
		}
		if wl == nil {
			anomalies++
			e.logger.Warn("segment references missing worklog, skipping",
				zap.String("segment_id", string(seg.ID)),
				zap.String("worklog_id", string(seg.WorkLogID)))
			continue
		}
		amount, err := SegmentAmount(seg, wl.HourlyRate)
		if err != nil {
			return nil, err
		}
		segID := seg.ID
		byWorker[wl.WorkerID] = append(byWorker[wl.WorkerID], pricedUnit{
			segmentID: &segID, worklog: wl, amount: amount,
		})
	}

	for _, adj := range adjustments {
		wl, err := resolve(adj.WorkLogID)
		if err != nil {
			return nil, fmt.Errorf("resolving worklog %s: %w", adj.WorkLogID, err)
		}
		if wl == nil {
			anomalies++
			e.logger.Warn("adjustment references missing worklog, skipping",
				zap.String("adjustment_id", string(adj.ID)),
				zap.String("worklog_id", string(adj.WorkLogID)))
			continue
		}
		adjID := adj.ID
		byWorker[wl.WorkerID] = append(byWorker[wl.WorkerID], pricedUnit{
			adjustmentID: &adjID, worklog: wl, amount: AdjustmentAmount(adj),
		})
	}

	now := e.now().UTC()
	periodStart, periodEnd := period.Bounds()

	result := &GenerateResult{
		DryRun:    in.DryRun,
		Period:    period,
		Anomalies: anomalies,
	}
	var run SettlementRun

	for workerID, units := range byWorker {
		var gross, net money.Amount
		touched := make(map[WorkLogID]bool)
		for _, u := range units {
			net = net.Add(u.amount)
			if u.amount.IsPositive() {
				gross = gross.Add(u.amount)
			}
			touched[u.worklog.ID] = true
		}

		// Nothing to settle for this worker.
		if gross.IsZero() && net.IsZero() {
			continue
		}

		rem := Remittance{
			ID:          e.newID(),
			WorkerID:    workerID,
			GrossAmount: gross.Round2(),
			NetAmount:   net.Round2(),
			Status:      status,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
			CreatedAt:   now,
		}
		if status == RemittanceFailed || status == RemittanceCancelled {
			rem.FailureReason = fmt.Sprintf("payout marked as %s by request", status)
		}
		if status == RemittanceCompleted {
			processed := now
			rem.ProcessedAt = &processed
		}

		result.Remittances = append(result.Remittances, BatchSummary{
			RemittanceID: rem.ID,
			WorkerID:     workerID,
			GrossAmount:  rem.GrossAmount,
			NetAmount:    rem.NetAmount,
			Status:       status,
			WorkLogCount: len(touched),
		})
		result.TotalGross = result.TotalGross.Add(gross)
		result.TotalNet = result.TotalNet.Add(net)

		if in.DryRun {
			continue
		}

		batch := RemittanceBatch{Remittance: rem}
		// Only a COMPLETED outcome settles units. Anything else records
		// the remittance and leaves the money re-batchable.
		if status == RemittanceCompleted {
			batch.WorkLogDeltas = make(map[WorkLogID]money.Amount)
			for _, u := range units {
				if u.segmentID != nil {
					batch.SegmentIDs = append(batch.SegmentIDs, *u.segmentID)
				} else {
					batch.AdjustmentIDs = append(batch.AdjustmentIDs, *u.adjustmentID)
				}
				batch.WorkLogDeltas[u.worklog.ID] = batch.WorkLogDeltas[u.worklog.ID].Add(u.amount)
			}
		}
		run.Batches = append(run.Batches, batch)
	}

	result.RemittancesCreated = len(result.Remittances)
	result.TotalGross = result.TotalGross.Round2()
	result.TotalNet = result.TotalNet.Round2()

	if !in.DryRun && len(run.Batches) > 0 {
		if err := e.store.ApplyRun(ctx, run); err != nil {
			return nil, fmt.Errorf("applying settlement run: %w", err)
		}
	}

	e.logger.Info("remittance run finished",
		zap.Bool("dry_run", in.DryRun),
		zap.Int("remittances", result.RemittancesCreated),
		zap.String("total_gross", result.TotalGross.StringFixed()),
		zap.String("total_net", result.TotalNet.StringFixed()),
		zap.Int("anomalies", anomalies),
		zap.String("period", period.String()))

	return result, nil
}
