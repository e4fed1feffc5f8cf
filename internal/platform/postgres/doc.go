// Package postgres implements store.DiaryStore on PostgreSQL through the pgx
// database/sql driver. Driver errors are translated to store errors by MapError.
package postgres
