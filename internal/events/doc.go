// Package events decouples the diary service from the analysis pipeline.
//
// The service emits a TaskRequestEvent of type TypeDiaryAnalysis whenever a
// diary needs (re)analysis; the task package registers a handler that turns
// the event into a queued analysis task. Neither side imports the other.
//
// In the other direction, resolved outcomes are announced as
// AnalysisResolved values through an OutcomePublisher.
package events
