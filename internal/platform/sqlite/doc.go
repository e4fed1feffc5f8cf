// Package sqlite implements store.DiaryStore on SQLite through mattn/go-sqlite3.
// It backs single-node deployments and the repository's store tests.
//
// Timestamps are written in UTC, so the first ten characters of a stored
// timestamp are its calendar day.
package sqlite
