package task

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newTestTask(content string) *AnalysisTask {
	return NewAnalysisTask(uuid.New(), content)
}

// manualTicker only ticks when the test says so.
type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func (m *manualTicker) C() <-chan time.Time {
	return m.ch
}

func (m *manualTicker) Stop() {
	m.stopped.Store(true)
}

type manualClock struct {
	ticker *manualTicker
}

func newManualClock() *manualClock {
	return &manualClock{ticker: &manualTicker{ch: make(chan time.Time)}}
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	return c.ticker
}

// Tick blocks until the scheduler loop has received the tick. Because the
// channel is unbuffered, a second Tick also waits for the first one's
// dispatch to finish.
func (c *manualClock) Tick(t *testing.T) {
	t.Helper()
	select {
	case c.ticker.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not receive tick")
	}
}

// recordingDispatcher accepts tasks until full is set.
type recordingDispatcher struct {
	tasks chan *AnalysisTask
	full  atomic.Bool
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{tasks: make(chan *AnalysisTask, 16)}
}

func (d *recordingDispatcher) Dispatch(task *AnalysisTask) bool {
	if d.full.Load() {
		return false
	}
	d.tasks <- task
	return true
}
