package settlement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/settlement-engine/money"
	"github.com/warp/settlement-engine/settlement"
	memstore "github.com/warp/settlement-engine/settlement/store"
)

// =============================================================================
// FIXTURE
// =============================================================================

type fixture struct {
	store  *memstore.Memory
	engine *settlement.Engine
	ctx    context.Context
	nextID int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memstore.NewMemory()
	eng := settlement.NewEngine(st, nil).WithClock(func() time.Time {
		return time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	})
	return &fixture{store: st, engine: eng, ctx: context.Background()}
}

func (f *fixture) addWorkLog(id settlement.WorkLogID, worker settlement.WorkerID, rate string) {
	f.store.PutWorkLog(settlement.WorkLog{
		ID:         id,
		TaskID:     "task-1",
		WorkerID:   worker,
		HourlyRate: money.MustParse(rate),
	})
}

func (f *fixture) addSegment(wl settlement.WorkLogID, hours int) settlement.SegmentID {
	f.nextID++
	id := settlement.SegmentID(string(wl) + "-seg-" + string(rune('a'+f.nextID)))
	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	f.store.PutSegment(settlement.TimeSegment{
		ID:               id,
		WorkLogID:        wl,
		Start:            start,
		End:              start.Add(time.Duration(hours) * time.Hour),
		Status:           settlement.SegmentActive,
		SettlementStatus: settlement.Unremitted,
	})
	return id
}

func (f *fixture) addAdjustment(wl settlement.WorkLogID, amount string, typ settlement.AdjustmentType) settlement.AdjustmentID {
	f.nextID++
	id := settlement.AdjustmentID(string(wl) + "-adj-" + string(rune('a'+f.nextID)))
	f.store.PutAdjustment(settlement.Adjustment{
		ID:               id,
		WorkLogID:        wl,
		Amount:           money.MustParse(amount),
		Reason:           "test adjustment",
		Type:             typ,
		SettlementStatus: settlement.Unremitted,
	})
	return id
}

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestGenerate_GroupsByWorkerAndSettles(t *testing.T) {
	// GIVEN: Two workers; alice has two worklogs (8h @ 20 and 2h @ 50
	//        plus a -10 deduction), bob has one worklog (4h @ 25)
	// WHEN: Generating remittances
	// THEN: Two remittances; alice gross 260 net 250, bob gross=net=100;
	//       every unit settled and every remitted total updated

	f := newFixture(t)
	f.addWorkLog("wl-a1", "alice", "20.00")
	f.addWorkLog("wl-a2", "alice", "50.00")
	f.addWorkLog("wl-b1", "bob", "25.00")
	segA1 := f.addSegment("wl-a1", 8)
	f.addSegment("wl-a2", 2)
	f.addSegment("wl-b1", 4)
	adjA := f.addAdjustment("wl-a1", "-10.00", settlement.AdjustmentDeduction)

	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.RemittancesCreated)
	assert.Equal(t, "360.00", result.TotalGross.StringFixed())
	assert.Equal(t, "350.00", result.TotalNet.StringFixed())
	assert.Equal(t, 0, result.Anomalies)
	assert.False(t, result.DryRun)

	byWorker := make(map[settlement.WorkerID]settlement.BatchSummary)
	for _, s := range result.Remittances {
		byWorker[s.WorkerID] = s
	}
	require.Contains(t, byWorker, settlement.WorkerID("alice"))
	require.Contains(t, byWorker, settlement.WorkerID("bob"))

	alice := byWorker["alice"]
	assert.Equal(t, "260.00", alice.GrossAmount.StringFixed())
	assert.Equal(t, "250.00", alice.NetAmount.StringFixed())
	assert.Equal(t, settlement.RemittanceCompleted, alice.Status)
	assert.Equal(t, 2, alice.WorkLogCount)

	bob := byWorker["bob"]
	assert.Equal(t, "100.00", bob.GrossAmount.StringFixed())
	assert.Equal(t, "100.00", bob.NetAmount.StringFixed())
	assert.Equal(t, 1, bob.WorkLogCount)

	// Units are settled and reference alice's remittance.
	seg, err := f.store.GetSegment(f.ctx, segA1)
	require.NoError(t, err)
	assert.Equal(t, settlement.Remitted, seg.SettlementStatus)
	require.NotNil(t, seg.RemittanceID)
	assert.Equal(t, alice.RemittanceID, *seg.RemittanceID)

	adj, err := f.store.GetAdjustment(f.ctx, adjA)
	require.NoError(t, err)
	assert.Equal(t, settlement.Remitted, adj.SettlementStatus)

	// Remitted totals updated incrementally per worklog.
	wl, err := f.store.GetWorkLog(f.ctx, "wl-a1")
	require.NoError(t, err)
	assert.Equal(t, "150.00", wl.RemittedTotal.StringFixed()) // 160 - 10

	rem, err := f.store.GetRemittance(f.ctx, alice.RemittanceID)
	require.NoError(t, err)
	assert.Equal(t, settlement.RemittanceCompleted, rem.Status)
	require.NotNil(t, rem.ProcessedAt)
	assert.Empty(t, rem.FailureReason)
}

func TestGenerate_PeriodLabelsRemittances(t *testing.T) {
	// The clock is fixed at 2025-03-15, so the default period labels
	// should span the whole of March.

	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	f.addSegment("wl-1", 1)

	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	require.Equal(t, 1, result.RemittancesCreated)

	rem, err := f.store.GetRemittance(f.ctx, result.Remittances[0].RemittanceID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), rem.PeriodStart)
	assert.Equal(t, time.Date(2025, time.March, 31, 23, 59, 59, 999999999, time.UTC), rem.PeriodEnd)
}

// =============================================================================
// IDEMPOTENCY AND EXACTLY-ONCE
// =============================================================================

func TestGenerate_SecondRunIsEmpty(t *testing.T) {
	// GIVEN: A completed run that settled everything
	// WHEN: Running again with no new units
	// THEN: No remittances, no mutation

	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	f.addSegment("wl-1", 8)

	first, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	require.Equal(t, 1, first.RemittancesCreated)

	second, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.RemittancesCreated)
	assert.True(t, second.TotalNet.IsZero())

	wl, err := f.store.GetWorkLog(f.ctx, "wl-1")
	require.NoError(t, err)
	assert.Equal(t, "160.00", wl.RemittedTotal.StringFixed(), "remitted total must not double")
}

func TestGenerate_RetroactiveAdjustmentOnly(t *testing.T) {
	// GIVEN: A fully paid worklog, then a bonus added after the fact
	// WHEN: Running again
	// THEN: Only the bonus is swept; the paid segment is untouched

	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	f.addSegment("wl-1", 8)

	_, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)

	f.addAdjustment("wl-1", "25.00", settlement.AdjustmentBonus)

	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	require.Equal(t, 1, result.RemittancesCreated)
	assert.Equal(t, "25.00", result.TotalNet.StringFixed())

	wl, err := f.store.GetWorkLog(f.ctx, "wl-1")
	require.NoError(t, err)
	assert.Equal(t, "185.00", wl.RemittedTotal.StringFixed())
}

func TestGenerate_NewSegmentAfterPayment(t *testing.T) {
	// Late-logged work on an already paid worklog forms a second
	// remittance on the next sweep.

	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	f.addSegment("wl-1", 8)

	first, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)

	f.addSegment("wl-1", 2)

	second, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	require.Equal(t, 1, second.RemittancesCreated)
	assert.Equal(t, "40.00", second.TotalNet.StringFixed())
	assert.NotEqual(t, first.Remittances[0].RemittanceID, second.Remittances[0].RemittanceID)

	wl, err := f.store.GetWorkLog(f.ctx, "wl-1")
	require.NoError(t, err)
	assert.Equal(t, "200.00", wl.RemittedTotal.StringFixed())
	require.NotNil(t, wl.RemittanceID)
	assert.Equal(t, second.Remittances[0].RemittanceID, *wl.RemittanceID, "worklog points at the latest batch")
}

// =============================================================================
// DRY RUN
// =============================================================================

func TestGenerate_DryRunMutatesNothing(t *testing.T) {
	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	segID := f.addSegment("wl-1", 8)

	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{DryRun: true})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.RemittancesCreated)
	assert.Equal(t, "160.00", result.TotalNet.StringFixed())

	// Nothing persisted, nothing settled.
	rems, err := f.store.ListRemittances(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, rems)

	seg, err := f.store.GetSegment(f.ctx, segID)
	require.NoError(t, err)
	assert.Equal(t, settlement.Unremitted, seg.SettlementStatus)
	assert.Nil(t, seg.RemittanceID)

	// A real run afterwards settles the same money.
	real, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	assert.Equal(t, result.TotalNet.StringFixed(), real.TotalNet.StringFixed())
}

// =============================================================================
// STATUS OVERRIDE
// =============================================================================

func TestGenerate_FailedOutcomeLeavesUnitsPayable(t *testing.T) {
	// GIVEN: A run forced to FAILED
	// WHEN: Inspecting store state and running again normally
	// THEN: The failed remittance is recorded with a reason, units stay
	//       unremitted, and the follow-up run pays them

	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	segID := f.addSegment("wl-1", 8)

	failed := settlement.RemittanceFailed
	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{StatusOverride: &failed})
	require.NoError(t, err)
	require.Equal(t, 1, result.RemittancesCreated)
	assert.Equal(t, settlement.RemittanceFailed, result.Remittances[0].Status)

	rem, err := f.store.GetRemittance(f.ctx, result.Remittances[0].RemittanceID)
	require.NoError(t, err)
	assert.Equal(t, settlement.RemittanceFailed, rem.Status)
	assert.Equal(t, "payout marked as FAILED by request", rem.FailureReason)
	assert.Nil(t, rem.ProcessedAt)

	seg, err := f.store.GetSegment(f.ctx, segID)
	require.NoError(t, err)
	assert.Equal(t, settlement.Unremitted, seg.SettlementStatus)

	wl, err := f.store.GetWorkLog(f.ctx, "wl-1")
	require.NoError(t, err)
	assert.True(t, wl.RemittedTotal.IsZero())

	retry, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	require.Equal(t, 1, retry.RemittancesCreated)
	assert.Equal(t, "160.00", retry.TotalNet.StringFixed())
}

func TestGenerate_PendingOutcome(t *testing.T) {
	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	segID := f.addSegment("wl-1", 1)

	pending := settlement.RemittancePending
	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{StatusOverride: &pending})
	require.NoError(t, err)

	rem, err := f.store.GetRemittance(f.ctx, result.Remittances[0].RemittanceID)
	require.NoError(t, err)
	assert.Equal(t, settlement.RemittancePending, rem.Status)
	assert.Empty(t, rem.FailureReason)

	seg, err := f.store.GetSegment(f.ctx, segID)
	require.NoError(t, err)
	assert.Equal(t, settlement.Unremitted, seg.SettlementStatus)
}

func TestGenerate_InvalidStatusOverride(t *testing.T) {
	f := newFixture(t)
	bogus := settlement.RemittanceStatus("SHIPPED")
	_, err := f.engine.Generate(f.ctx, settlement.GenerateInput{StatusOverride: &bogus})
	assert.ErrorIs(t, err, settlement.ErrInvalidStatus)
}

// =============================================================================
// EDGE CASES
// =============================================================================

func TestGenerate_SkipsZeroWorker(t *testing.T) {
	// A worker whose units cancel to exactly zero gross and net gets no
	// remittance at all.

	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	f.addAdjustment("wl-1", "0.00", settlement.AdjustmentCorrection)

	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemittancesCreated)

	rems, err := f.store.ListRemittances(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, rems)
}

func TestGenerate_NegativeNetStillRemits(t *testing.T) {
	// Net below zero (a clawback sweep) still produces a remittance with
	// gross 0 and a negative net.

	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	adjID := f.addAdjustment("wl-1", "-30.00", settlement.AdjustmentDeduction)

	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	require.Equal(t, 1, result.RemittancesCreated)
	assert.Equal(t, "0.00", result.TotalGross.StringFixed())
	assert.Equal(t, "-30.00", result.TotalNet.StringFixed())

	adj, err := f.store.GetAdjustment(f.ctx, adjID)
	require.NoError(t, err)
	assert.Equal(t, settlement.Remitted, adj.SettlementStatus)
}

func TestGenerate_OrphanUnitsAreAnomalies(t *testing.T) {
	// GIVEN: A segment and an adjustment pointing at a worklog that does
	//        not exist, plus one healthy worklog
	// WHEN: Generating
	// THEN: The orphans are skipped and counted; the healthy worklog is
	//       paid normally

	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	f.addSegment("wl-1", 2)
	f.addSegment("wl-ghost", 4)
	f.addAdjustment("wl-ghost", "10.00", settlement.AdjustmentBonus)

	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Anomalies)
	require.Equal(t, 1, result.RemittancesCreated)
	assert.Equal(t, "40.00", result.TotalNet.StringFixed())
}

func TestGenerate_NegativeDurationAbortsRun(t *testing.T) {
	// One corrupt segment poisons the whole run rather than paying a
	// partial batch.

	f := newFixture(t)
	f.addWorkLog("wl-1", "alice", "20.00")
	goodID := f.addSegment("wl-1", 2)

	start := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	f.store.PutSegment(settlement.TimeSegment{
		ID:               "seg-backwards",
		WorkLogID:        "wl-1",
		Start:            start,
		End:              start.Add(-time.Hour),
		Status:           settlement.SegmentActive,
		SettlementStatus: settlement.Unremitted,
	})

	_, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.ErrorIs(t, err, settlement.ErrNegativeDuration)

	// Nothing was settled.
	seg, err := f.store.GetSegment(f.ctx, goodID)
	require.NoError(t, err)
	assert.Equal(t, settlement.Unremitted, seg.SettlementStatus)
	rems, err := f.store.ListRemittances(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, rems)
}

func TestGenerate_InvalidPeriod(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, -1)

	_, err := f.engine.Generate(f.ctx, settlement.GenerateInput{
		PeriodStart: &start,
		PeriodEnd:   &end,
	})
	assert.ErrorIs(t, err, settlement.ErrInvalidPeriod)
}

func TestGenerate_EmptyStore(t *testing.T) {
	f := newFixture(t)
	result, err := f.engine.Generate(f.ctx, settlement.GenerateInput{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.RemittancesCreated)
	assert.True(t, result.TotalGross.IsZero())
	assert.True(t, result.TotalNet.IsZero())
}
