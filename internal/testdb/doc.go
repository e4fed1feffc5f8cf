// Package testdb provides database fixtures for tests.
//
// SQLite databases are created in a per-test temp directory and are always
// available:
//
//	func TestMyStore(t *testing.T) {
//	    db := testdb.OpenSQLiteWithT(t)
//	    s := sqlite.NewSQLiteDiaryStore(db, nil)
//	    ...
//	}
//
// PostgreSQL fixtures need DATABASE_URL (or DIARY_TEST_DB_URL) and skip the
// test otherwise. Use WithTx so each test rolls back its changes.
package testdb
