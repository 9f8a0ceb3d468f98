package order

import (
	"testing"
	"time"
)

func TestPeriodStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

	start, ok := PeriodToday.Start(now)
	if !ok {
		t.Fatal("expected today to constrain time")
	}
	if want := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Fatalf("expected %v, got %v", want, start)
	}

	start, ok = PeriodWeek.Start(now)
	if !ok {
		t.Fatal("expected week to constrain time")
	}
	if want := now.Add(-7 * 24 * time.Hour); !start.Equal(want) {
		t.Fatalf("expected %v, got %v", want, start)
	}

	start, ok = PeriodMonth.Start(now)
	if !ok {
		t.Fatal("expected month to constrain time")
	}
	if want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Fatalf("expected %v, got %v", want, start)
	}

	if _, ok := PeriodAll.Start(now); ok {
		t.Fatal("expected all to leave time unconstrained")
	}
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	if got := ParsePeriod("week"); got != PeriodWeek {
		t.Fatalf("expected week, got %s", got)
	}
	if got := ParsePeriod(""); got != PeriodAll {
		t.Fatalf("expected all for empty period, got %s", got)
	}
	if got := ParsePeriod("yesterday"); got != PeriodAll {
		t.Fatalf("expected all for unknown period, got %s", got)
	}
}
