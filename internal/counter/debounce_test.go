package counter

import (
	"testing"
	"time"
)

func TestDebouncer_WindowBoundary(t *testing.T) {
	base := time.UnixMilli(0)

	tests := []struct {
		offsetMs  int64
		wantCount int
	}{
		{0, 1},      // opens the first episode
		{299999, 1}, // inside the window
		{300000, 1}, // exactly on the boundary: still inside
		{300001, 2}, // strictly past the window: new episode
	}

	var d Debouncer
	for i, tc := range tests {
		d.RecordTap(base.Add(time.Duration(tc.offsetMs) * time.Millisecond))
		if d.Count() != tc.wantCount {
			t.Errorf("tap %d at +%dms: count = %d, want %d", i, tc.offsetMs, d.Count(), tc.wantCount)
		}
	}

	if d.RawCount() != len(tests) {
		t.Errorf("rawCount = %d, want %d", d.RawCount(), len(tests))
	}
}

func TestDebouncer_AnchorDoesNotSlide(t *testing.T) {
	// Rapid taps must not push the window forward: the anchor stays at the
	// episode start, so a tap 5m01s after the FIRST tap opens a new episode
	// even though only seconds passed since the latest tap.
	var d Debouncer
	base := time.Now()

	d.RecordTap(base)
	d.RecordTap(base.Add(4 * time.Minute))
	d.RecordTap(base.Add(4*time.Minute + 30*time.Second))
	if d.Count() != 1 {
		t.Fatalf("count after in-window taps = %d, want 1", d.Count())
	}

	d.RecordTap(base.Add(5*time.Minute + time.Second))
	if d.Count() != 2 {
		t.Fatalf("count after out-of-window tap = %d, want 2", d.Count())
	}
}

func TestDebouncer_Monotonicity(t *testing.T) {
	var d Debouncer
	base := time.Now()

	prevCount, prevRaw := 0, 0
	for i := 0; i < 500; i++ {
		// Irregular spacing: bursts and gaps.
		base = base.Add(time.Duration(i%7) * time.Minute)
		d.RecordTap(base)

		if d.RawCount() != prevRaw+1 {
			t.Fatalf("rawCount did not increment exactly once: %d -> %d", prevRaw, d.RawCount())
		}
		if d.Count() < prevCount {
			t.Fatalf("count decreased: %d -> %d", prevCount, d.Count())
		}
		if d.Count() > d.RawCount() {
			t.Fatalf("count %d exceeds rawCount %d", d.Count(), d.RawCount())
		}
		prevCount, prevRaw = d.Count(), d.RawCount()
	}
}

func TestDebouncer_Reset(t *testing.T) {
	var d Debouncer
	d.RecordTap(time.Now())
	d.Reset()

	if d.Count() != 0 || d.RawCount() != 0 {
		t.Fatalf("after reset: count=%d rawCount=%d, want 0/0", d.Count(), d.RawCount())
	}

	// First tap after reset opens a fresh episode.
	d.RecordTap(time.Now())
	if d.Count() != 1 {
		t.Fatalf("count after reset+tap = %d, want 1", d.Count())
	}
}
