package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/warp/settlement-engine/money"
)

var nanosPerHour = decimal.NewFromInt(3_600_000_000_000)

// SegmentAmount computes the amount owed for one time segment at the
// given hourly rate.
//
// Non-ACTIVE segments (REMOVED/DISPUTED) are never payable and price to
// zero; aggregators skip them anyway, the zero is defensive. A segment
// whose end precedes its start is a validation error, surfaced to the
// caller rather than clamped.
//
// The amount is hours x rate where hours = seconds/3600 computed with
// exact decimal division, rounded to 2 places half-up immediately.
// Totals elsewhere sum these already-rounded amounts; the rounding is
// deliberately not deferred, so repeated runs reproduce the same cents.
func SegmentAmount(seg TimeSegment, hourlyRate money.Amount) (money.Amount, error) {
	if seg.Status != SegmentActive {
		return money.Zero, nil
	}
	if seg.End.Before(seg.Start) {
		return money.Zero, &NegativeDurationError{
			SegmentID: seg.ID,
			Start:     seg.Start,
			End:       seg.End,
		}
	}

	// Duration in nanoseconds keeps the division exact: no float
	// intermediate anywhere between the clock and the rounded amount.
	nanos := decimal.NewFromInt(seg.End.Sub(seg.Start).Nanoseconds())
	hours := nanos.Div(nanosPerHour)
	return money.FromDecimal(hours.Mul(hourlyRate.Decimal())).Round2(), nil
}

// AdjustmentAmount returns the amount an adjustment contributes.
// Adjustments are not time-derived: the stored signed value is used
// unchanged.
func AdjustmentAmount(adj Adjustment) money.Amount {
	return adj.Amount
}
