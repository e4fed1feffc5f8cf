// Package store defines the persistence contract for diaries.
// The interfaces here are implemented once per database engine under
// internal/platform, so the services never depend on a specific driver.
package store
