/*
ledger.go - Per-worklog settlement view

PURPOSE:
  Answers "what has this worklog been paid, and what is still owed"
  without touching storage state. The amounts are recomputed on demand
  from current segment/adjustment states, so the view never drifts from
  the units themselves.

CLASSIFICATION RULE:
  A worklog is UNREMITTED when it has any unpaid amount OR when its
  total is zero. A worklog with nothing payable reads as not-yet-settled
  ("nothing has happened yet"), never as settled. The asymmetry is
  intentional.
*/
package settlement

import "github.com/warp/settlement-engine/money"

// Classification is the overall paid/unpaid state of a worklog.
type Classification string

const (
	ClassRemitted   Classification = "REMITTED"
	ClassUnremitted Classification = "UNREMITTED"
)

// ParseClassification validates a filter value from the API boundary.
// The empty string means "no filter".
func ParseClassification(s string) (Classification, error) {
	switch Classification(s) {
	case "", ClassRemitted, ClassUnremitted:
		return Classification(s), nil
	}
	return "", ErrInvalidFilter
}

// Amounts is the settled/outstanding breakdown for one worklog.
// Total == Remitted + Unremitted always holds.
type Amounts struct {
	Remitted   money.Amount
	Unremitted money.Amount
	Total      money.Amount
}

// Classify applies the asymmetric zero-total rule.
func (a Amounts) Classify() Classification {
	if a.Unremitted.IsPositive() || a.Total.IsZero() {
		return ClassUnremitted
	}
	return ClassRemitted
}

// WorkLogAmounts prices every ACTIVE segment and every adjustment of a
// worklog and buckets the amounts by settlement status.
//
// REMOVED and DISPUTED segments are skipped entirely. A negative
// duration anywhere aborts with a validation error; a partial report
// would misstate what is owed.
func WorkLogAmounts(hourlyRate money.Amount, segments []TimeSegment, adjustments []Adjustment) (Amounts, error) {
	var remitted, unremitted money.Amount

	for _, seg := range segments {
		if seg.Status != SegmentActive {
			continue
		}
		amount, err := SegmentAmount(seg, hourlyRate)
		if err != nil {
			return Amounts{}, err
		}
		if seg.SettlementStatus == Remitted {
			remitted = remitted.Add(amount)
		} else {
			unremitted = unremitted.Add(amount)
		}
	}

	for _, adj := range adjustments {
		amount := AdjustmentAmount(adj)
		if adj.SettlementStatus == Remitted {
			remitted = remitted.Add(amount)
		} else {
			unremitted = unremitted.Add(amount)
		}
	}

	return Amounts{
		Remitted:   remitted,
		Unremitted: unremitted,
		Total:      remitted.Add(unremitted),
	}, nil
}
