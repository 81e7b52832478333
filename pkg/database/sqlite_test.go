package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE entries (id INTEGER PRIMARY KEY, value TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countEntries(t *testing.T, db *DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n))
	return n
}

func TestWithTransactionCommits(t *testing.T) {
	db := newTestDB(t)

	err := db.WithTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT INTO entries (value) VALUES (?)`, "uno")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countEntries(t, db))
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	boom := errors.New("boom")

	err := db.WithTransaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO entries (value) VALUES (?)`, "uno"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countEntries(t, db))
}
