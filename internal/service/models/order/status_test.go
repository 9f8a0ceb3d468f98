package order

import "testing"

func TestStatusTransitions(t *testing.T) {
	t.Parallel()

	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusProcessing},
		{StatusPending, StatusCompleted},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusProcessing},
		{StatusConfirmed, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
		{StatusProcessing, StatusCompleted},
		{StatusProcessing, StatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to Status }{
		{StatusConfirmed, StatusPending},
		{StatusProcessing, StatusConfirmed},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusPending},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusCompleted},
		{StatusPending, StatusPending},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestStatusIsTerminal(t *testing.T) {
	t.Parallel()

	for _, s := range []Status{StatusPending, StatusConfirmed, StatusProcessing} {
		if s.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	if _, err := ParseStatus("confirmed"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := ParseStatus("shipped"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestParsePackageSize(t *testing.T) {
	t.Parallel()

	if _, err := ParsePackageSize("1kg"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := ParsePackageSize("5kg"); err == nil {
		t.Fatal("expected error for unknown package size")
	}
	if got := PackageSize2Kg.WeightKg(); got != 2 {
		t.Fatalf("expected weight 2, got %d", got)
	}
}
