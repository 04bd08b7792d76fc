package counter

import "time"

// episodeWindow is the medical coalescing window: taps within 5 minutes of the
// start of an episode count as the same movement.
const episodeWindow = 5 * time.Minute

// Debouncer converts raw taps into valid movement episodes. The anchor is the
// start of the current episode, not the most recent tap, so rapid sequential
// taps never push the window forward. Counts only ever increase; Reset is the
// only way back to zero.
type Debouncer struct {
	count        int
	rawCount     int
	episodeStart time.Time // zero value = no episode yet
}

// RecordTap registers one raw tap at the given instant. A tap opens a new
// episode when none exists or when strictly more than the window has elapsed
// since the current episode started; a tap landing exactly on the window
// boundary still belongs to the current episode.
func (d *Debouncer) RecordTap(now time.Time) {
	d.rawCount++
	if d.episodeStart.IsZero() || now.Sub(d.episodeStart) > episodeWindow {
		d.count++
		d.episodeStart = now
	}
}

// Count returns the number of valid movement episodes.
func (d *Debouncer) Count() int { return d.count }

// RawCount returns the total number of taps recorded.
func (d *Debouncer) RawCount() int { return d.rawCount }

// Reset clears all state. Called only when a new session starts.
func (d *Debouncer) Reset() {
	d.count = 0
	d.rawCount = 0
	d.episodeStart = time.Time{}
}
