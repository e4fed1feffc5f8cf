// Package analysis is the outbound adapter to the remote mood analysis
// service. A Client sends one diary text per call and decodes the service's
// answer into a domain.AnalysisResult. It never retries; retry policy lives in
// the task pipeline.
package analysis
