package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStartScanIncrementsStartedCounter(t *testing.T) {
	before := testutil.ToFloat64(scansStarted.WithLabelValues("lan"))
	StartScan("lan")
	after := testutil.ToFloat64(scansStarted.WithLabelValues("lan"))
	assert.Equal(t, before+1, after)
}

func TestFinishRecordsOutcomeAndHostCount(t *testing.T) {
	beforeOK := testutil.ToFloat64(scansFinished.WithLabelValues("routed", "ok"))
	beforeHosts := testutil.ToFloat64(hostsDiscovered.WithLabelValues("routed"))

	rec := StartScan("routed")
	rec.Finish(nil, 3)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(scansFinished.WithLabelValues("routed", "ok")))
	assert.Equal(t, beforeHosts+3, testutil.ToFloat64(hostsDiscovered.WithLabelValues("routed")))
}

func TestFinishRecordsErrorOutcome(t *testing.T) {
	before := testutil.ToFloat64(scansFinished.WithLabelValues("tcp-connect", "error"))

	rec := StartScan("tcp-connect")
	rec.Finish(assertError{}, 0)

	assert.Equal(t, before+1, testutil.ToFloat64(scansFinished.WithLabelValues("tcp-connect", "error")))
}

func TestRecordHostResolvedIncrements(t *testing.T) {
	before := testutil.ToFloat64(hostsResolved)
	RecordHostResolved()
	assert.Equal(t, before+1, testutil.ToFloat64(hostsResolved))
}

type assertError struct{}

func (assertError) Error() string { return "boom" }
