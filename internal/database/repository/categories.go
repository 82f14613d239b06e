package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

const categoryColumns = "id, name, icon, type, is_system, is_active, sort_order, deprecated, created_at, updated_at"

// CategoryRepo handles categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) ready() error {
	if r.db == nil {
		return ErrNotInitialized
	}
	return nil
}

// ListActive returns categories selectable when recording a transaction:
// matching type, active and not deprecated, ordered by sort_order.
func (r *CategoryRepo) ListActive(ctx context.Context, typ TransactionType) ([]Category, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.queryCategories(ctx, `
	SELECT `+categoryColumns+` FROM categories
	WHERE type = ? AND is_active = 1 AND deprecated = 0
	ORDER BY sort_order ASC`, string(typ))
}

// ListAll returns categories for management listings: matching type and not
// deprecated, active ones first.
func (r *CategoryRepo) ListAll(ctx context.Context, typ TransactionType) ([]Category, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	return r.queryCategories(ctx, `
	SELECT `+categoryColumns+` FROM categories
	WHERE type = ? AND deprecated = 0
	ORDER BY is_active DESC, sort_order ASC`, string(typ))
}

// Get returns the category with the given id regardless of active or
// deprecated state, so historical transactions always resolve. Returns nil
// if no row exists.
func (r *CategoryRepo) Get(ctx context.Context, id string) (*Category, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a user category. The sort order is one past the current
// maximum for that type, or 0 for the first.
func (r *CategoryRepo) Create(ctx context.Context, in CreateCategory) (*Category, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	var sortOrder int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), -1) + 1 FROM categories WHERE type = ?`, string(in.Type)).Scan(&sortOrder)
	if err != nil {
		return nil, fmt.Errorf("next sort order: %w", err)
	}

	c := Category{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Icon:      in.Icon,
		Type:      in.Type,
		IsActive:  in.IsActive,
		SortOrder: sortOrder,
		CreatedAt: now(),
	}
	c.UpdatedAt = c.CreatedAt

	_, err = r.db.ExecContext(ctx, `
	INSERT INTO categories(id, name, icon, type, is_system, is_active, sort_order, deprecated, created_at, updated_at)
	VALUES (?, ?, ?, ?, 0, ?, ?, 0, ?, ?);
	`, c.ID, c.Name, c.Icon, string(c.Type), boolToInt(c.IsActive), c.SortOrder, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &c, nil
}

// Update applies a partial update and returns the fresh row, or nil for
// unknown ids. System categories only accept is_active and sort_order; name
// and icon edits are silently ignored for them.
func (r *CategoryRepo) Update(ctx context.Context, id string, p CategoryPatch) (*Category, error) {
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
	if p.Name == nil && p.Icon == nil && p.IsActive == nil && p.SortOrder == nil {
		return existing, nil
	}

	// updated_at refreshes even when every supplied field was ignored
	var fields []string
	var args []interface{}
	if !existing.IsSystem {
		if p.Name != nil {
			fields = append(fields, "name = ?")
			args = append(args, *p.Name)
		}
		if p.Icon != nil {
			fields = append(fields, "icon = ?")
			args = append(args, *p.Icon)
		}
	}
	if p.IsActive != nil {
		fields = append(fields, "is_active = ?")
		args = append(args, boolToInt(*p.IsActive))
	}
	if p.SortOrder != nil {
		fields = append(fields, "sort_order = ?")
		args = append(args, *p.SortOrder)
	}

	fields = append(fields, "updated_at = ?")
	args = append(args, now(), id)

	_, err = r.db.ExecContext(ctx, `UPDATE categories SET `+strings.Join(fields, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return r.Get(ctx, id)
}

// ToggleActive flips is_active and returns the updated row, or nil for
// unknown ids.
func (r *CategoryRepo) ToggleActive(ctx context.Context, id string) (*Category, error) {
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
	active := !existing.IsActive
	return r.Update(ctx, id, CategoryPatch{IsActive: &active})
}

// Reorder assigns sort_order = positional index for each id, in one
// transaction. Unknown ids are skipped by the UPDATE and don't fail the batch,
// so a retry with the same sequence is safe.
func (r *CategoryRepo) Reorder(ctx context.Context, orderedIDs []string) error {
	if err := r.ready(); err != nil {
		return err
	}
	ts := now()
	return withTx(r.db, func(tx *sql.Tx) error {
		for idx, id := range orderedIDs {
			if _, err := tx.ExecContext(ctx,
				`UPDATE categories SET sort_order = ?, updated_at = ? WHERE id = ?`, idx, ts, id); err != nil {
				return fmt.Errorf("reorder category %s: %w", id, err)
			}
		}
		return nil
	})
}

// Delete removes a user category. It reports false for unknown ids and
// returns a DomainError for system categories or ones still referenced by
// transactions (those should be deactivated instead).
func (r *CategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
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
	if existing.IsSystem {
		return false, errSystemCategory()
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id).Scan(&count); err != nil {
		return false, fmt.Errorf("count category transactions: %w", err)
	}
	if count > 0 {
		return false, errCategoryInUse(count)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return true, nil
}

// CleanupUnused deletes user categories that are inactive and referenced by
// no transaction, returning how many were removed. System categories are
// never touched. Intended as manual housekeeping, not part of startup.
func (r *CategoryRepo) CleanupUnused(ctx context.Context) (int, error) {
	if err := r.ready(); err != nil {
		return 0, err
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT c.id FROM categories c
	LEFT JOIN transactions t ON c.id = t.category_id
	WHERE c.is_system = 0 AND c.is_active = 0
	GROUP BY c.id
	HAVING COUNT(t.id) = 0`)
	if err != nil {
		return 0, fmt.Errorf("query unused categories: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return 0, fmt.Errorf("delete unused categories: %w", err)
	}
	slog.InfoContext(ctx, "cleaned up unused categories", "count", len(ids))
	return len(ids), nil
}

// NameExists reports whether a non-deprecated category with the given name
// and type exists, excluding excludeID if non-empty. Used for uniqueness
// validation before create and rename.
func (r *CategoryRepo) NameExists(ctx context.Context, name string, typ TransactionType, excludeID string) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	query := `SELECT EXISTS(SELECT 1 FROM categories WHERE name = ? AND type = ? AND deprecated = 0`
	args := []interface{}{name, string(typ)}
	if excludeID != "" {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}
	query += `)`

	var exists int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists == 1, nil
}

func (r *CategoryRepo) queryCategories(ctx context.Context, query string, args ...interface{}) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row scanner) (Category, error) {
	var c Category
	var isSystem, isActive, deprecated int
	if err := row.Scan(&c.ID, &c.Name, &c.Icon, &c.Type, &isSystem, &isActive, &c.SortOrder, &deprecated, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Category{}, err
	}
	c.IsSystem = isSystem == 1
	c.IsActive = isActive == 1
	c.Deprecated = deprecated == 1
	return c, nil
}
