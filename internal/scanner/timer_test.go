package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScanTimerNotExpiredImmediately(t *testing.T) {
	timer := NewScanTimer(50*time.Millisecond, 10*time.Millisecond, 5*time.Millisecond)
	assert.False(t, timer.Expired())
}

func TestScanTimerExpiresAfterMaxTotal(t *testing.T) {
	timer := NewScanTimer(10*time.Millisecond, 5*time.Millisecond, 2*time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	assert.True(t, timer.Expired())
}

func TestScanTimerDoesNotBreakBeforeMinTotal(t *testing.T) {
	timer := NewScanTimer(200*time.Millisecond, 100*time.Millisecond, 1*time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	assert.False(t, timer.ShouldBreakOnSilence())
}

func TestScanTimerBreaksOnSilenceAfterMinTotal(t *testing.T) {
	timer := NewScanTimer(200*time.Millisecond, 10*time.Millisecond, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.True(t, timer.ShouldBreakOnSilence())
}

func TestScanTimerMarkSeenResetsSilence(t *testing.T) {
	timer := NewScanTimer(200*time.Millisecond, 10*time.Millisecond, 20*time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	timer.MarkSeen()
	assert.False(t, timer.ShouldBreakOnSilence())
}
