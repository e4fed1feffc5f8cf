package service

import (
	"database/sql"

	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/store"
)

// DiaryRepositoryAdapter adapts a store.DiaryStore to DiaryRepository by
// pairing it with the connection pool used to open transactions.
type DiaryRepositoryAdapter struct {
	store.DiaryStore
	db *sql.DB
}

// NewDiaryRepositoryAdapter creates a DiaryRepository backed by diaryStore.
func NewDiaryRepositoryAdapter(diaryStore store.DiaryStore, db *sql.DB) *DiaryRepositoryAdapter {
	return &DiaryRepositoryAdapter{
		DiaryStore: diaryStore,
		db:         db,
	}
}

// WithTx returns a repository bound to tx.
func (a *DiaryRepositoryAdapter) WithTx(tx *sql.Tx) DiaryRepository {
	return &DiaryRepositoryAdapter{
		DiaryStore: a.DiaryStore.WithTx(tx),
		db:         a.db,
	}
}

// DB returns the underlying database connection.
func (a *DiaryRepositoryAdapter) DB() *sql.DB {
	return a.db
}

var _ DiaryRepository = (*DiaryRepositoryAdapter)(nil)
