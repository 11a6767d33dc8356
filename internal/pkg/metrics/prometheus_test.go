package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordFiring(t *testing.T) {
	counter := ScheduleFiringsTotal.WithLabelValues("email.send", "success", "manual")
	before := testutil.ToFloat64(counter)

	RecordFiring("email.send", "success", "manual", 0.25)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordFiringZeroDurationStillCounts(t *testing.T) {
	counter := ScheduleFiringsTotal.WithLabelValues("task.create", "failure", "schedule")
	before := testutil.ToFloat64(counter)

	RecordFiring("task.create", "failure", "schedule", 0)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordEnqueued(t *testing.T) {
	counter := QueueTasksTotal.WithLabelValues("email:send")
	before := testutil.ToFloat64(counter)

	RecordEnqueued("email:send")

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordRecoveredAndPruned(t *testing.T) {
	recoveredBefore := testutil.ToFloat64(SchedulesRecoveredTotal)
	prunedBefore := testutil.ToFloat64(RunRecordsPrunedTotal)

	RecordRecovered(3)
	RecordPruned(40)

	assert.Equal(t, recoveredBefore+3, testutil.ToFloat64(SchedulesRecoveredTotal))
	assert.Equal(t, prunedBefore+40, testutil.ToFloat64(RunRecordsPrunedTotal))
}
