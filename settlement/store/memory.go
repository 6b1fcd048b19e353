// Package store provides an in-memory settlement.Store for tests and dev.
package store

import (
	"context"
	"sync"

	"github.com/warp/settlement-engine/settlement"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps every record in maps behind one mutex. ApplyRun takes a
// snapshot first and restores it on failure, so it gives the same
// all-or-nothing guarantee as a database transaction.
type Memory struct {
	mu          sync.RWMutex
	tasks       map[settlement.TaskID]settlement.Task
	worklogs    map[settlement.WorkLogID]settlement.WorkLog
	segments    map[settlement.SegmentID]settlement.TimeSegment
	adjustments map[settlement.AdjustmentID]settlement.Adjustment
	remittances map[settlement.RemittanceID]settlement.Remittance
}

func NewMemory() *Memory {
	return &Memory{
		tasks:       make(map[settlement.TaskID]settlement.Task),
		worklogs:    make(map[settlement.WorkLogID]settlement.WorkLog),
		segments:    make(map[settlement.SegmentID]settlement.TimeSegment),
		adjustments: make(map[settlement.AdjustmentID]settlement.Adjustment),
		remittances: make(map[settlement.RemittanceID]settlement.Remittance),
	}
}

// =============================================================================
// SEEDING - Test/dev setup helpers
// =============================================================================

func (m *Memory) PutTask(t settlement.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
}

func (m *Memory) PutWorkLog(wl settlement.WorkLog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.worklogs[wl.ID] = wl
}

func (m *Memory) PutSegment(seg settlement.TimeSegment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.segments[seg.ID] = seg
}

func (m *Memory) PutAdjustment(adj settlement.Adjustment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adjustments[adj.ID] = adj
}

// DeleteWorkLog removes a worklog and cascades to its segments and
// adjustments, mirroring the SQL store's FK rules.
func (m *Memory) DeleteWorkLog(id settlement.WorkLogID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.worklogs, id)
	for sid, seg := range m.segments {
		if seg.WorkLogID == id {
			delete(m.segments, sid)
		}
	}
	for aid, adj := range m.adjustments {
		if adj.WorkLogID == id {
			delete(m.adjustments, aid)
		}
	}
}

// =============================================================================
// READS
// =============================================================================

func (m *Memory) UnremittedSegments(_ context.Context) ([]settlement.TimeSegment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []settlement.TimeSegment
	for _, seg := range m.segments {
		if seg.Status == settlement.SegmentActive && seg.SettlementStatus == settlement.Unremitted {
			out = append(out, seg)
		}
	}
	return out, nil
}

func (m *Memory) UnremittedAdjustments(_ context.Context) ([]settlement.Adjustment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []settlement.Adjustment
	for _, adj := range m.adjustments {
		if adj.SettlementStatus == settlement.Unremitted {
			out = append(out, adj)
		}
	}
	return out, nil
}

func (m *Memory) GetWorkLog(_ context.Context, id settlement.WorkLogID) (*settlement.WorkLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wl, ok := m.worklogs[id]
	if !ok {
		return nil, settlement.ErrWorkLogNotFound
	}
	return &wl, nil
}

func (m *Memory) GetSegment(_ context.Context, id settlement.SegmentID) (*settlement.TimeSegment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seg, ok := m.segments[id]
	if !ok {
		return nil, settlement.ErrSegmentNotFound
	}
	return &seg, nil
}

func (m *Memory) GetAdjustment(_ context.Context, id settlement.AdjustmentID) (*settlement.Adjustment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	adj, ok := m.adjustments[id]
	if !ok {
		return nil, settlement.ErrAdjustmentNotFound
	}
	return &adj, nil
}

func (m *Memory) GetRemittance(_ context.Context, id settlement.RemittanceID) (*settlement.Remittance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rem, ok := m.remittances[id]
	if !ok {
		return nil, settlement.ErrRemittanceNotFound
	}
	return &rem, nil
}

func (m *Memory) ListRemittances(_ context.Context) ([]settlement.Remittance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]settlement.Remittance, 0, len(m.remittances))
	for _, rem := range m.remittances {
		out = append(out, rem)
	}
	return out, nil
}

// SegmentsOf returns all segments of a worklog, for ledger views.
func (m *Memory) SegmentsOf(id settlement.WorkLogID) []settlement.TimeSegment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []settlement.TimeSegment
	for _, seg := range m.segments {
		if seg.WorkLogID == id {
			out = append(out, seg)
		}
	}
	return out
}

// AdjustmentsOf returns all adjustments of a worklog, for ledger views.
func (m *Memory) AdjustmentsOf(id settlement.WorkLogID) []settlement.Adjustment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []settlement.Adjustment
	for _, adj := range m.adjustments {
		if adj.WorkLogID == id {
			out = append(out, adj)
		}
	}
	return out
}

// =============================================================================
// APPLY RUN - Atomic settlement
// =============================================================================

func (m *Memory) ApplyRun(_ context.Context, run settlement.SettlementRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()

	if err := m.applyLocked(run); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *Memory) applyLocked(run settlement.SettlementRun) error {
	for _, batch := range run.Batches {
		rem := batch.Remittance
		m.remittances[rem.ID] = rem

		for _, sid := range batch.SegmentIDs {
			seg, ok := m.segments[sid]
			if !ok {
				return settlement.ErrSegmentNotFound
			}
			remID := rem.ID
			seg.SettlementStatus = settlement.Remitted
			seg.RemittanceID = &remID
			m.segments[sid] = seg
		}

		for _, aid := range batch.AdjustmentIDs {
			adj, ok := m.adjustments[aid]
			if !ok {
				return settlement.ErrAdjustmentNotFound
			}
			remID := rem.ID
			adj.SettlementStatus = settlement.Remitted
			adj.RemittanceID = &remID
			m.adjustments[aid] = adj
		}

		for wlID, delta := range batch.WorkLogDeltas {
			wl, ok := m.worklogs[wlID]
			if !ok {
				return settlement.ErrWorkLogNotFound
			}
			remID := rem.ID
			wl.RemittedTotal = wl.RemittedTotal.Add(delta)
			wl.RemittanceID = &remID
			m.worklogs[wlID] = wl
		}
	}
	return nil
}

type memorySnapshot struct {
	worklogs    map[settlement.WorkLogID]settlement.WorkLog
	segments    map[settlement.SegmentID]settlement.TimeSegment
	adjustments map[settlement.AdjustmentID]settlement.Adjustment
	remittances map[settlement.RemittanceID]settlement.Remittance
}

func (m *Memory) snapshot() memorySnapshot {
	snap := memorySnapshot{
		worklogs:    make(map[settlement.WorkLogID]settlement.WorkLog, len(m.worklogs)),
		segments:    make(map[settlement.SegmentID]settlement.TimeSegment, len(m.segments)),
		adjustments: make(map[settlement.AdjustmentID]settlement.Adjustment, len(m.adjustments)),
		remittances: make(map[settlement.RemittanceID]settlement.Remittance, len(m.remittances)),
	}
	for k, v := range m.worklogs {
		snap.worklogs[k] = v
	}
	for k, v := range m.segments {
		snap.segments[k] = v
	}
	for k, v := range m.adjustments {
		snap.adjustments[k] = v
	}
	for k, v := range m.remittances {
		snap.remittances[k] = v
	}
	return snap
}

func (m *Memory) restore(snap memorySnapshot) {
	m.worklogs = snap.worklogs
	m.segments = snap.segments
	m.adjustments = snap.adjustments
	m.remittances = snap.remittances
}
