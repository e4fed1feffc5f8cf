// Package task runs diary analysis in the background.
//
// Submissions enter a bounded FIFO TaskQueue and are rejected, not blocked,
// when it is full. A Scheduler drains one task per tick into a WorkerPool,
// which caps the rate of calls to the remote analysis service. The Worker
// applies the retry policy: a failed attempt goes back to the tail of the
// queue until MaxRetryCount retries are spent, then the error outcome is
// written through the ResultSink. A Deduplicator keeps at most one task per
// subject in flight. Pipeline wires these together.
package task
