package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createAccountTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE accounts (
		id TEXT PRIMARY KEY,
		address TEXT UNIQUE NOT NULL,
		role TEXT NOT NULL DEFAULT 'READER',
		email TEXT UNIQUE,
		password_hash TEXT,
		balance INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		kind TEXT NOT NULL,
		status TEXT NOT NULL,
		external_tx_id TEXT UNIQUE,
		chain_id TEXT,
		description TEXT,
		created_at DATETIME
	);`)
}

func createUnlockTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE chapter_unlocks (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		chapter_id TEXT NOT NULL,
		credits_spent INTEGER NOT NULL,
		created_at DATETIME,
		UNIQUE(account_id, chapter_id)
	);`)
}

func createChapterTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE chapters (
		id TEXT PRIMARY KEY,
		comic_title TEXT NOT NULL,
		number INTEGER NOT NULL,
		title TEXT NOT NULL,
		price_credits INTEGER NOT NULL DEFAULT 0,
		is_locked BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createCreditPackageTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE credit_packages (
		id TEXT PRIMARY KEY,
		on_chain_id INTEGER UNIQUE NOT NULL,
		name TEXT NOT NULL,
		credits INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}
