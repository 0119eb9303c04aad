package scanner

import "time"

// ScanTimer bounds a scanner's run between a hard maximum and an adaptive
// minimum governed by a silence window: the scanner never exits before
// minTotal elapses, and after that point a quiet period of maxSilence ends
// the scan early. Grounded on core/src/scanner/local.rs's
// MAX_CHANNEL_TIME/MIN_CHANNEL_TIME/MAX_SILENCE handling.
type ScanTimer struct {
	start     time.Time
	lastSeen  time.Time
	maxTotal  time.Duration
	minTotal  time.Duration
	maxSilence time.Duration
}

// NewScanTimer starts a timer at the current moment.
func NewScanTimer(maxTotal, minTotal, maxSilence time.Duration) *ScanTimer {
	now := time.Now()
	return &ScanTimer{
		start:      now,
		lastSeen:   now,
		maxTotal:   maxTotal,
		minTotal:   minTotal,
		maxSilence: maxSilence,
	}
}

// MarkSeen records that a frame/response just arrived.
func (t *ScanTimer) MarkSeen() {
	t.lastSeen = time.Now()
}

// Expired reports whether the hard deadline has passed.
func (t *ScanTimer) Expired() bool {
	return time.Since(t.start) >= t.maxTotal
}

// ShouldBreakOnSilence reports whether the minimum runtime has elapsed and
// the silence window since the last observation has been exceeded.
func (t *ScanTimer) ShouldBreakOnSilence() bool {
	now := time.Now()
	return now.Sub(t.start) >= t.minTotal && now.Sub(t.lastSeen) >= t.maxSilence
}
