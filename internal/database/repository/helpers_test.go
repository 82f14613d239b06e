package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/firelight-app/firelight/internal/database"
	"github.com/firelight-app/firelight/internal/database/repository"
)

// testDB opens a fresh migrated database with a default ledger in place.
func testDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "firelight-test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	ledgerID, err := database.EnsureDefaultLedger(context.Background(), db)
	if err != nil {
		t.Fatalf("ensure default ledger: %v", err)
	}
	return db, ledgerID
}

func mustCategory(t *testing.T, db *sql.DB, name string, typ repository.TransactionType) *repository.Category {
	t.Helper()
	c, err := repository.NewCategoryRepo(db).Create(context.Background(), repository.CreateCategory{
		Name:     name,
		Icon:     "🏷️",
		Type:     typ,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create category %s: %v", name, err)
	}
	return c
}

func mustTransaction(t *testing.T, db *sql.DB, in repository.CreateTransaction) *repository.Transaction {
	t.Helper()
	tx, err := repository.NewTransactionRepo(db).Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
