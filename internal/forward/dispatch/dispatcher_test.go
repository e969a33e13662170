package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evlog/forwarder/internal/forward"
	"github.com/evlog/forwarder/internal/testutils"
)

func fillQueue(t *testing.T, q *forward.Queue, channel string, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		require.NoError(t, q.Enqueue(testutils.NewRecord(channel, uint64(i))))
	}
}

func TestDispatcher_BatchDraining(t *testing.T) {
	queue := forward.NewQueue(10)
	fillQueue(t, queue, "System", 5)

	sender := &testutils.MockSender{}
	metrics := &forward.Metrics{QueueCapacity: 10}
	config := forward.Config{SendBatchSize: 2, SendInterval: time.Hour}

	d := NewDispatcher(context.Background(), queue, &testutils.MockFormatter{}, sender, config, metrics)

	// Five queued items at batch size 2 drain as 2, 2, 1.
	assert.Equal(t, 2, d.DispatchBatch())
	assert.Equal(t, 2, d.DispatchBatch())
	assert.Equal(t, 1, d.DispatchBatch())
	assert.Equal(t, 0, d.DispatchBatch())
	assert.Equal(t, 0, queue.Len())

	lines := sender.GetLines()
	require.Len(t, lines, 5)
	assert.Equal(t, "System/1", lines[0])
	assert.Equal(t, "System/5", lines[4])
}

func TestDispatcher_SendFailureDropsRecordOnly(t *testing.T) {
	queue := forward.NewQueue(10)
	fillQueue(t, queue, "System", 3)

	sender := &testutils.MockSender{ShouldFail: true}
	metrics := &forward.Metrics{QueueCapacity: 10}
	config := forward.Config{SendBatchSize: 10, SendInterval: time.Hour}

	d := NewDispatcher(context.Background(), queue, &testutils.MockFormatter{}, sender, config, metrics)
	assert.Equal(t, 3, d.DispatchBatch())

	stamp := metrics.GetMetricsStamp()
	assert.Equal(t, 3, stamp.SendErrors)
	assert.Equal(t, 0, stamp.RecordsSent)
	assert.Equal(t, 0, queue.Len())
}

func TestDispatcher_FormatFailureContinuesBatch(t *testing.T) {
	queue := forward.NewQueue(10)
	require.NoError(t, queue.Enqueue(testutils.NewRecord("Bad", 1)))
	require.NoError(t, queue.Enqueue(testutils.NewRecord("System", 2)))

	formatter := &testutils.MockFormatter{FailChannels: map[string]bool{"Bad": true}}
	sender := &testutils.MockSender{}
	metrics := &forward.Metrics{QueueCapacity: 10}
	config := forward.Config{SendBatchSize: 10, SendInterval: time.Hour}

	d := NewDispatcher(context.Background(), queue, formatter, sender, config, metrics)
	assert.Equal(t, 2, d.DispatchBatch())

	stamp := metrics.GetMetricsStamp()
	assert.Equal(t, 1, stamp.FormatErrors)
	assert.Equal(t, 1, stamp.RecordsSent)
	assert.Equal(t, []string{"System/2"}, sender.GetLines())
}

func TestDispatcher_IntervalLoop(t *testing.T) {
	queue := forward.NewQueue(10)
	fillQueue(t, queue, "System", 4)

	sender := &testutils.MockSender{}
	metrics := &forward.Metrics{QueueCapacity: 10}
	config := forward.Config{SendBatchSize: 2, SendInterval: 10 * time.Millisecond}

	d := NewDispatcher(context.Background(), queue, &testutils.MockFormatter{}, sender, config, metrics)
	d.Start()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(sender.GetLines()) >= 4 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	d.Stop()

	assert.Len(t, sender.GetLines(), 4)
	assert.Equal(t, 4, metrics.GetMetricsStamp().RecordsSent)
}

func TestDispatcher_StopExitsAtIterationBoundary(t *testing.T) {
	queue := forward.NewQueue(10)
	sender := &testutils.MockSender{}
	metrics := &forward.Metrics{QueueCapacity: 10}
	config := forward.Config{SendBatchSize: 2, SendInterval: 5 * time.Millisecond}

	d := NewDispatcher(context.Background(), queue, &testutils.MockFormatter{}, sender, config, metrics)
	d.Start()

	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop")
	}

	// Records enqueued after shutdown are never dispatched.
	require.NoError(t, queue.Enqueue(testutils.NewRecord("System", 99)))
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, sender.GetLines(), 0)
}
