package settlement_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/settlement-engine/settlement"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolvePeriod_DefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC)

	p, err := settlement.ResolvePeriod(nil, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Start.Equal(date(2025, time.March, 1)) {
		t.Errorf("expected 2025-03-01, got %s", p.Start)
	}
	if !p.End.Equal(date(2025, time.March, 31)) {
		t.Errorf("expected 2025-03-31, got %s", p.End)
	}
}

func TestResolvePeriod_LeapFebruary(t *testing.T) {
	now := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	p, err := settlement.ResolvePeriod(nil, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.End.Equal(date(2024, time.February, 29)) {
		t.Errorf("expected 2024-02-29, got %s", p.End)
	}
}

func TestResolvePeriod_December(t *testing.T) {
	// Year rollover in the first-of-next-month arithmetic.
	now := time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC)

	p, err := settlement.ResolvePeriod(nil, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.End.Equal(date(2025, time.December, 31)) {
		t.Errorf("expected 2025-12-31, got %s", p.End)
	}
}

func TestResolvePeriod_PartialOverrides(t *testing.T) {
	now := time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)

	start := date(2025, time.May, 10)
	p, err := settlement.ResolvePeriod(&start, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Start.Equal(start) {
		t.Errorf("expected explicit start, got %s", p.Start)
	}
	if !p.End.Equal(date(2025, time.June, 30)) {
		t.Errorf("expected default end 2025-06-30, got %s", p.End)
	}

	end := date(2025, time.June, 15)
	p, err = settlement.ResolvePeriod(nil, &end, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Start.Equal(date(2025, time.June, 1)) {
		t.Errorf("expected default start 2025-06-01, got %s", p.Start)
	}
	if !p.End.Equal(end) {
		t.Errorf("expected explicit end, got %s", p.End)
	}
}

func TestResolvePeriod_TruncatesToDates(t *testing.T) {
	// Bounds carrying a time-of-day collapse to their UTC calendar day.
	start := time.Date(2025, time.April, 3, 18, 45, 12, 0, time.UTC)
	end := time.Date(2025, time.April, 9, 1, 2, 3, 0, time.UTC)

	p, err := settlement.ResolvePeriod(&start, &end, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Start.Equal(date(2025, time.April, 3)) {
		t.Errorf("expected 2025-04-03, got %s", p.Start)
	}
	if !p.End.Equal(date(2025, time.April, 9)) {
		t.Errorf("expected 2025-04-09, got %s", p.End)
	}
}

func TestResolvePeriod_EndBeforeStart(t *testing.T) {
	start := date(2025, time.March, 10)
	end := date(2025, time.March, 9)

	_, err := settlement.ResolvePeriod(&start, &end, time.Now())
	if !errors.Is(err, settlement.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestResolvePeriod_SingleDay(t *testing.T) {
	day := date(2025, time.March, 10)
	p, err := settlement.ResolvePeriod(&day, &day, time.Now())
	if err != nil {
		t.Fatalf("single-day period should be valid: %v", err)
	}
	if !p.Start.Equal(p.End) {
		t.Errorf("expected start == end")
	}
}

func TestPeriodBounds(t *testing.T) {
	p := settlement.Period{
		Start: date(2025, time.March, 1),
		End:   date(2025, time.March, 31),
	}
	start, end := p.Bounds()
	if !start.Equal(date(2025, time.March, 1)) {
		t.Errorf("expected first instant of start day, got %s", start)
	}
	want := time.Date(2025, time.March, 31, 23, 59, 59, 999999999, time.UTC)
	if !end.Equal(want) {
		t.Errorf("expected last instant of end day, got %s", end)
	}
}

func TestPeriodString(t *testing.T) {
	p := settlement.Period{
		Start: date(2025, time.March, 1),
		End:   date(2025, time.March, 31),
	}
	if got := p.String(); got != "[2025-03-01, 2025-03-31]" {
		t.Errorf("unexpected format: %s", got)
	}
}
