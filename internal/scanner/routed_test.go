package scanner

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDeadlineClampsToMin(t *testing.T) {
	assert.Equal(t, routedMinScanDuration, calculateDeadline(0))
}

func TestCalculateDeadlineClampsToMax(t *testing.T) {
	assert.Equal(t, routedMaxScanDuration, calculateDeadline(100000))
}

func TestCalculateDeadlineScalesWithTargetCount(t *testing.T) {
	d := calculateDeadline(1000)
	assert.Greater(t, d, routedMinScanDuration)
	assert.LessOrEqual(t, d, routedMaxScanDuration)
	assert.Equal(t, 500*time.Millisecond, d)
}

func TestContainsIP(t *testing.T) {
	targets := []net.IP{net.ParseIP("10.0.0.1"), net.ParseIP("10.0.0.2")}
	assert.True(t, containsIP(targets, net.ParseIP("10.0.0.1")))
	assert.False(t, containsIP(targets, net.ParseIP("10.0.0.3")))
}
