package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_TickDispatchesOneTask(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(5, logger)
	dispatcher := newRecordingDispatcher()
	s := NewScheduler(queue, dispatcher, time.Second, newManualClock(), nil, logger)

	first := newTestTask("first")
	second := newTestTask("second")
	require.True(t, queue.Submit(first))
	require.True(t, queue.Submit(second))

	assert.True(t, s.Tick(context.Background()))
	assert.Equal(t, 1, queue.Len(), "exactly one task per tick")
	assert.Equal(t, first, <-dispatcher.tasks)

	assert.True(t, s.Tick(context.Background()))
	assert.Equal(t, second, <-dispatcher.tasks)

	assert.False(t, s.Tick(context.Background()), "empty queue is a no-op")
}

func TestScheduler_BacklogFullRequeuesWithoutAttempt(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(5, logger)
	dispatcher := newRecordingDispatcher()
	dispatcher.full.Store(true)
	s := NewScheduler(queue, dispatcher, time.Second, newManualClock(), nil, logger)

	first := newTestTask("first")
	second := newTestTask("second")
	require.True(t, queue.Submit(first))
	require.True(t, queue.Submit(second))

	assert.False(t, s.Tick(context.Background()))
	assert.Equal(t, 2, queue.Len())
	assert.Equal(t, 0, first.RetryCount(), "a refused dispatch is not a failed attempt")

	head, _ := queue.Poll()
	assert.Equal(t, second, head, "refused task goes to the tail")
}

// crowdingDispatcher refuses every task and, while doing so, lets another
// producer take the slot the refused task just left.
type crowdingDispatcher struct {
	queue *TaskQueue
}

func (d *crowdingDispatcher) Dispatch(task *AnalysisTask) bool {
	d.queue.Submit(newTestTask("producer"))
	return false
}

func TestScheduler_OverflowResolvesTask(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(1, logger)

	var overflowed []*AnalysisTask
	s := NewScheduler(queue, &crowdingDispatcher{queue: queue}, time.Second, newManualClock(),
		func(ctx context.Context, task *AnalysisTask) {
			overflowed = append(overflowed, task)
		}, logger)

	task := newTestTask("stuck")
	require.True(t, queue.Submit(task))

	assert.False(t, s.Tick(context.Background()))
	require.Len(t, overflowed, 1, "a task that can go nowhere is resolved, not lost")
	assert.Equal(t, task, overflowed[0])
	assert.Equal(t, 1, queue.Len())
}

func TestScheduler_OverflowAfterClose(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(2, logger)
	dispatcher := newRecordingDispatcher()
	dispatcher.full.Store(true)

	var overflowed int
	s := NewScheduler(queue, dispatcher, time.Second, newManualClock(),
		func(ctx context.Context, task *AnalysisTask) { overflowed++ }, logger)

	require.True(t, queue.Submit(newTestTask("queued")))
	queue.Close()

	s.Tick(context.Background())
	assert.Equal(t, 1, overflowed)
}

func TestScheduler_StartStop(t *testing.T) {
	logger := setupTestLogger()
	queue := NewTaskQueue(5, logger)
	dispatcher := newRecordingDispatcher()
	clock := newManualClock()
	s := NewScheduler(queue, dispatcher, time.Second, clock, nil, logger)

	first := newTestTask("first")
	second := newTestTask("second")
	require.True(t, queue.Submit(first))
	require.True(t, queue.Submit(second))

	s.Start(context.Background())
	s.Start(context.Background()) // no-op while running

	clock.Tick(t)
	select {
	case got := <-dispatcher.tasks:
		assert.Equal(t, first, got)
	case <-time.After(time.Second):
		t.Fatal("tick did not dispatch")
	}
	assert.Equal(t, 1, queue.Len())

	s.Stop()
	assert.True(t, clock.ticker.stopped.Load())
	assert.Equal(t, 1, queue.Len(), "no dispatch after Stop")

	s.Stop() // idempotent
}

func TestNewScheduler_Defaults(t *testing.T) {
	logger := setupTestLogger()
	s := NewScheduler(NewTaskQueue(1, logger), newRecordingDispatcher(), 0, nil, nil, logger)
	assert.Equal(t, DefaultTickPeriod, s.period)
	assert.IsType(t, realClock{}, s.clock)
}
