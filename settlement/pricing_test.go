package settlement_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/settlement-engine/money"
	"github.com/warp/settlement-engine/settlement"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func segmentAt(start time.Time, d time.Duration) settlement.TimeSegment {
	return settlement.TimeSegment{
		ID:               "seg-1",
		WorkLogID:        "wl-1",
		Start:            start,
		End:              start.Add(d),
		Status:           settlement.SegmentActive,
		SettlementStatus: settlement.Unremitted,
	}
}

var noon = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// =============================================================================
// SEGMENT PRICING
// =============================================================================

func TestSegmentAmount_ExactHalfHours(t *testing.T) {
	// GIVEN: A segment of exactly 1.5 hours at 20.00/hour
	// WHEN: Pricing it
	// THEN: Amount is exactly 30.00

	seg := segmentAt(noon, 90*time.Minute)
	amount, err := settlement.SegmentAmount(seg, money.MustParse("20.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := amount.StringFixed(); got != "30.00" {
		t.Errorf("expected 30.00, got %s", got)
	}
}

func TestSegmentAmount_RoundHalfUp_Reproducible(t *testing.T) {
	// GIVEN: 1 hour 1 second (3601s) at 33.335/hour
	// WHEN: Pricing repeatedly
	// THEN: The same rounded-to-cents amount every time
	//       (3601/3600 * 33.335 = 33.34426... -> 33.34)

	seg := segmentAt(noon, 3601*time.Second)
	rate := money.MustParse("33.335")

	first, err := settlement.SegmentAmount(seg, rate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := first.StringFixed(); got != "33.34" {
		t.Errorf("expected 33.34, got %s", got)
	}

	for i := 0; i < 100; i++ {
		again, err := settlement.SegmentAmount(seg, rate)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !again.Equal(first) {
			t.Fatalf("pricing not reproducible: %s vs %s", again, first)
		}
	}
}

func TestSegmentAmount_HalfCentRoundsUp(t *testing.T) {
	// 30 minutes at 0.01/hour = 0.005, which must round up to 0.01
	// under half-up, not down to 0.00 under banker's rounding.

	seg := segmentAt(noon, 30*time.Minute)
	amount, err := settlement.SegmentAmount(seg, money.MustParse("0.01"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := amount.StringFixed(); got != "0.01" {
		t.Errorf("expected 0.01, got %s", got)
	}
}

func TestSegmentAmount_NonActiveIsZero(t *testing.T) {
	// REMOVED and DISPUTED segments are never payable, whatever their
	// duration.

	for _, status := range []settlement.SegmentStatus{settlement.SegmentRemoved, settlement.SegmentDisputed} {
		seg := segmentAt(noon, 8*time.Hour)
		seg.Status = status

		amount, err := settlement.SegmentAmount(seg, money.MustParse("100"))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", status, err)
		}
		if !amount.IsZero() {
			t.Errorf("%s: expected zero, got %s", status, amount)
		}
	}
}

func TestSegmentAmount_NegativeDurationRejected(t *testing.T) {
	// GIVEN: A segment whose end precedes its start
	// WHEN: Pricing it
	// THEN: A validation error, not a negative or zero amount

	seg := segmentAt(noon, time.Hour)
	seg.Start, seg.End = seg.End, seg.Start

	_, err := settlement.SegmentAmount(seg, money.MustParse("20"))
	if !errors.Is(err, settlement.ErrNegativeDuration) {
		t.Fatalf("expected ErrNegativeDuration, got %v", err)
	}
	if !settlement.IsValidation(err) {
		t.Errorf("negative duration should classify as a validation error")
	}

	var detail *settlement.NegativeDurationError
	if !errors.As(err, &detail) {
		t.Fatalf("expected NegativeDurationError, got %T", err)
	}
	if detail.SegmentID != seg.ID {
		t.Errorf("expected segment id %s, got %s", seg.ID, detail.SegmentID)
	}
}

func TestSegmentAmount_ZeroDurationIsZero(t *testing.T) {
	seg := segmentAt(noon, 0)
	amount, err := settlement.SegmentAmount(seg, money.MustParse("20"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !amount.IsZero() {
		t.Errorf("expected zero for zero duration, got %s", amount)
	}
}

func TestAdjustmentAmount_PassesThroughSigned(t *testing.T) {
	adj := settlement.Adjustment{
		ID:     "adj-1",
		Amount: money.MustParse("-12.50"),
		Type:   settlement.AdjustmentDeduction,
	}
	if got := settlement.AdjustmentAmount(adj).StringFixed(); got != "-12.50" {
		t.Errorf("expected -12.50, got %s", got)
	}
}
