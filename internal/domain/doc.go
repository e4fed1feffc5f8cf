// Package domain contains the diary entity and the value objects that describe
// a mood analysis: VAD scores, results, and the success/error outcome that an
// analysis task resolves to. It has no knowledge of storage, transport, or the
// task pipeline.
package domain
