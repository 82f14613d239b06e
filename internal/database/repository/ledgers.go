package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const ledgerColumns = "id, name, icon, color, is_default, sort_order, created_at, updated_at"

// LedgerRepo handles ledgers.
type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

func (r *LedgerRepo) ready() error {
	if r.db == nil {
		return ErrNotInitialized
	}
	return nil
}

// List returns all ledgers ordered by sort_order.
func (r *LedgerRepo) List(ctx context.Context) ([]Ledger, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+ledgerColumns+` FROM ledgers ORDER BY sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("query ledgers: %w", err)
	}
	defer rows.Close()

	var out []Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Get returns the ledger with the given id, or nil if it doesn't exist.
func (r *LedgerRepo) Get(ctx context.Context, id string) (*Ledger, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+ledgerColumns+` FROM ledgers WHERE id = ?`, id)
	l, err := scanLedger(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetDefault returns the ledger marked default, or nil if none exists yet.
func (r *LedgerRepo) GetDefault(ctx context.Context) (*Ledger, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+ledgerColumns+` FROM ledgers WHERE is_default = 1`)
	l, err := scanLedger(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new ledger. Setting IsDefault clears the flag on every
// other ledger in the same transaction, so at most one default exists.
func (r *LedgerRepo) Create(ctx context.Context, in CreateLedger) (*Ledger, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	l := Ledger{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Icon:      in.Icon,
		Color:     in.Color,
		IsDefault: in.IsDefault,
		SortOrder: in.SortOrder,
		CreatedAt: now(),
	}
	l.UpdatedAt = l.CreatedAt

	err := withTx(r.db, func(tx *sql.Tx) error {
		if in.IsDefault {
			if _, err := tx.ExecContext(ctx, `UPDATE ledgers SET is_default = 0 WHERE is_default = 1`); err != nil {
				return fmt.Errorf("clear default flag: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO ledgers(id, name, icon, color, is_default, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?);
		`, l.ID, l.Name, l.Icon, l.Color, boolToInt(l.IsDefault), l.SortOrder, l.CreatedAt, l.UpdatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create ledger: %w", err)
	}
	return &l, nil
}

// Update applies a partial update. Only supplied fields change; updated_at is
// refreshed whenever anything does. Returns nil if the ledger doesn't exist.
// Setting IsDefault clears the flag elsewhere, same as Create.
func (r *LedgerRepo) Update(ctx context.Context, id string, p LedgerPatch) (*Ledger, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	existing, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	var fields []string
	var args []interface{}
	if p.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Icon != nil {
		fields = append(fields, "icon = ?")
		args = append(args, *p.Icon)
	}
	if p.Color != nil {
		fields = append(fields, "color = ?")
		args = append(args, *p.Color)
	}
	if p.IsDefault != nil {
		fields = append(fields, "is_default = ?")
		args = append(args, boolToInt(*p.IsDefault))
	}
	if p.SortOrder != nil {
		fields = append(fields, "sort_order = ?")
		args = append(args, *p.SortOrder)
	}
	if len(fields) == 0 {
		return existing, nil
	}

	fields = append(fields, "updated_at = ?")
	args = append(args, now(), id)

	err = withTx(r.db, func(tx *sql.Tx) error {
		if p.IsDefault != nil && *p.IsDefault {
			if _, err := tx.ExecContext(ctx, `UPDATE ledgers SET is_default = 0 WHERE is_default = 1 AND id != ?`, id); err != nil {
				return fmt.Errorf("clear default flag: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx, `UPDATE ledgers SET `+strings.Join(fields, ", ")+` WHERE id = ?`, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update ledger: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes a ledger. It reports false for unknown ids and returns a
// DomainError for the default ledger or one still referenced by transactions.
func (r *LedgerRepo) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	existing, err := r.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	if existing.IsDefault {
		return false, errDefaultLedger()
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE ledger_id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("count ledger transactions: %w", err)
	}
	if count > 0 {
		return false, errLedgerInUse(count)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM ledgers WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("delete ledger: %w", err)
	}
	return true, nil
}

func scanLedger(row scanner) (Ledger, error) {
	var l Ledger
	var isDefault int
	if err := row.Scan(&l.ID, &l.Name, &l.Icon, &l.Color, &isDefault, &l.SortOrder, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return Ledger{}, err
	}
	l.IsDefault = isDefault == 1
	return l, nil
}

// withTx runs fn in a transaction.
func withTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
