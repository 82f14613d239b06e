package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Default ledger attributes, used only on first startup.
const (
	defaultLedgerName  = "Default Ledger"
	defaultLedgerIcon  = "📒"
	defaultLedgerColor = "#6366F1"
)

// EnsureDefaultLedger returns the id of the default ledger, creating it if no
// ledger is marked default yet. It is idempotent and safe to run on every
// startup; it never creates a second default.
func EnsureDefaultLedger(ctx context.Context, db *sql.DB) (string, error) {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM ledgers WHERE is_default = 1`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("query default ledger: %w", err)
	}

	id = uuid.NewString()
	now := Now()
	_, err = db.ExecContext(ctx, `
	INSERT INTO ledgers(id, name, icon, color, is_default, sort_order, created_at, updated_at)
	VALUES (?, ?, ?, ?, 1, 0, ?, ?);
	`, id, defaultLedgerName, defaultLedgerIcon, defaultLedgerColor, now, now)
	if err != nil {
		return "", fmt.Errorf("create default ledger: %w", err)
	}
	slog.InfoContext(ctx, "created default ledger", "id", id)
	return id, nil
}

// SyncSystemCategories upserts the built-in catalog into the store, keyed by
// id. New entries are inserted active; existing rows get name, icon, sort
// order and the deprecated flag refreshed while is_active and is_system stay
// untouched. Rows are never removed here. The whole sync runs in one
// transaction so an interrupted startup can't half-apply a catalog.
func SyncSystemCategories(ctx context.Context, db *sql.DB, defs []SystemCategory) error {
	now := Now()
	err := WithTx(db, func(tx *sql.Tx) error {
		for _, c := range defs {
			deprecated := 0
			if c.Deprecated {
				deprecated = 1
			}
			_, err := tx.ExecContext(ctx, `
			INSERT INTO categories(id, name, icon, type, is_system, is_active, sort_order, deprecated, created_at, updated_at)
			VALUES (?, ?, ?, ?, 1, 1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
			 name=excluded.name,
			 icon=excluded.icon,
			 sort_order=excluded.sort_order,
			 deprecated=excluded.deprecated,
			 updated_at=excluded.updated_at;
			`, c.ID, c.Name, c.Icon, string(c.Type), c.SortOrder, deprecated, now, now)
			if err != nil {
				return fmt.Errorf("upsert system category %s: %w", c.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "system categories synced", "count", len(defs))
	return nil
}
