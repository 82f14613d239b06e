package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const transactionColumns = "id, ledger_id, type, amount, category_id, date, note, created_at, updated_at"

// Filter narrows List results. An empty LedgerID means the default ledger.
// When Year and Month are both set they take precedence over DateFrom/DateTo
// and match on the YYYY-MM date prefix; otherwise DateFrom/DateTo form an
// inclusive range.
type Filter struct {
	LedgerID   string
	Year       int
	Month      int
	DateFrom   string
	DateTo     string
	Type       TransactionType
	CategoryID string
}

// DayGroup is one calendar day of transactions with amount totals partitioned
// by type.
type DayGroup struct {
	Date         string
	Transactions []Transaction
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
}

// MonthlyStats summarises one ledger month. Always zero-valued, never
// absent, for months without data.
type MonthlyStats struct {
	TotalIncome      decimal.Decimal
	TotalExpense     decimal.Decimal
	TransactionCount int
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

func (r *TransactionRepo) ready() error {
	if r.db == nil {
		return ErrNotInitialized
	}
	return nil
}

// defaultLedgerID resolves the ledger every operation falls back to when the
// caller doesn't name one.
func (r *TransactionRepo) defaultLedgerID(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM ledgers WHERE is_default = 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", errors.New("default ledger not found")
	}
	if err != nil {
		return "", fmt.Errorf("query default ledger: %w", err)
	}
	return id, nil
}

// Create inserts a transaction. LedgerID falls back to the default ledger and
// Note defaults to empty. Amount, category and date pass through verbatim;
// cross-validation against the category table is the caller's job.
func (r *TransactionRepo) Create(ctx context.Context, in CreateTransaction) (*Transaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	ledgerID := in.LedgerID
	if ledgerID == "" {
		var err error
		ledgerID, err = r.defaultLedgerID(ctx)
		if err != nil {
			return nil, err
		}
	}

	t := Transaction{
		ID:         uuid.NewString(),
		LedgerID:   ledgerID,
		Type:       in.Type,
		Amount:     in.Amount,
		CategoryID: in.CategoryID,
		Date:       in.Date,
		Note:       in.Note,
		CreatedAt:  now(),
	}
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(id, ledger_id, type, amount, category_id, date, note, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, t.ID, t.LedgerID, string(t.Type), centsOf(t.Amount), t.CategoryID, t.Date, t.Note, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return &t, nil
}

// Get returns the transaction with the given id, or nil if it doesn't exist.
func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns transactions matching the filter, most recent date first, ties
// broken by insertion recency.
func (r *TransactionRepo) List(ctx context.Context, f Filter) ([]Transaction, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	ledgerID := f.LedgerID
	if ledgerID == "" {
		var err error
		ledgerID, err = r.defaultLedgerID(ctx)
		if err != nil {
			return nil, err
		}
	}

	where := []string{"ledger_id = ?"}
	args := []interface{}{ledgerID}

	if f.Year > 0 && f.Month > 0 {
		where = append(where, "date LIKE ?")
		args = append(args, monthPrefix(f.Year, f.Month)+"%")
	} else {
		if f.DateFrom != "" {
			where = append(where, "date >= ?")
			args = append(args, f.DateFrom)
		}
		if f.DateTo != "" {
			where = append(where, "date <= ?")
			args = append(args, f.DateTo)
		}
	}
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = ?")
		args = append(args, f.CategoryID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListByMonth returns the month's transactions grouped by calendar day,
// newest day first, with per-day income and expense totals.
func (r *TransactionRepo) ListByMonth(ctx context.Context, year, month int, ledgerID string) ([]DayGroup, error) {
	txs, err := r.List(ctx, Filter{LedgerID: ledgerID, Year: year, Month: month})
	if err != nil {
		return nil, err
	}

	// txs is already date-descending, so first-seen group order is final.
	var groups []DayGroup
	index := make(map[string]int)
	for _, t := range txs {
		i, ok := index[t.Date]
		if !ok {
			i = len(groups)
			index[t.Date] = i
			groups = append(groups, DayGroup{Date: t.Date})
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
		if t.Type == TypeIncome {
			groups[i].TotalIncome = groups[i].TotalIncome.Add(t.Amount)
		} else {
			groups[i].TotalExpense = groups[i].TotalExpense.Add(t.Amount)
		}
	}
	return groups, nil
}

// MonthlyStats returns income, expense and count for one ledger month in a
// single aggregate query. Months without data yield zeros.
func (r *TransactionRepo) MonthlyStats(ctx context.Context, year, month int, ledgerID string) (MonthlyStats, error) {
	if err := r.ready(); err != nil {
		return MonthlyStats{}, err
	}
	if ledgerID == "" {
		var err error
		ledgerID, err = r.defaultLedgerID(ctx)
		if err != nil {
			return MonthlyStats{}, err
		}
	}

	var incomeCents, expenseCents int64
	var count int
	err := r.db.QueryRowContext(ctx, `
	SELECT
	 COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0),
	 COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0),
	 COUNT(*)
	FROM transactions
	WHERE ledger_id = ? AND date LIKE ?;
	`, ledgerID, monthPrefix(year, month)+"%").Scan(&incomeCents, &expenseCents, &count)
	if err != nil {
		return MonthlyStats{}, fmt.Errorf("query monthly stats: %w", err)
	}

	return MonthlyStats{
		TotalIncome:      amountOf(incomeCents),
		TotalExpense:     amountOf(expenseCents),
		TransactionCount: count,
	}, nil
}

// Update applies a partial update and returns the fresh row, or nil for
// unknown ids.
func (r *TransactionRepo) Update(ctx context.Context, id string, p TransactionPatch) (*Transaction, error) {
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
	if p.Type != nil {
		fields = append(fields, "type = ?")
		args = append(args, string(*p.Type))
	}
	if p.Amount != nil {
		fields = append(fields, "amount = ?")
		args = append(args, centsOf(*p.Amount))
	}
	if p.CategoryID != nil {
		fields = append(fields, "category_id = ?")
		args = append(args, *p.CategoryID)
	}
	if p.Date != nil {
		fields = append(fields, "date = ?")
		args = append(args, *p.Date)
	}
	if p.Note != nil {
		fields = append(fields, "note = ?")
		args = append(args, *p.Note)
	}
	if len(fields) == 0 {
		return existing, nil
	}

	fields = append(fields, "updated_at = ?")
	args = append(args, now(), id)

	_, err = r.db.ExecContext(ctx, `UPDATE transactions SET `+strings.Join(fields, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return r.Get(ctx, id)
}

// Delete removes a transaction, reporting whether a row existed. Deletion
// never cascades; categories and ledgers are untouched.
func (r *TransactionRepo) Delete(ctx context.Context, id string) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MonthsWithData returns the distinct YYYY-MM prefixes present in the
// ledger's transactions, newest first.
func (r *TransactionRepo) MonthsWithData(ctx context.Context, ledgerID string) ([]string, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if ledgerID == "" {
		var err error
		ledgerID, err = r.defaultLedgerID(ctx)
		if err != nil {
			return nil, err
		}
	}

	rows, err := r.db.QueryContext(ctx, `
	SELECT DISTINCT substr(date, 1, 7) AS month
	FROM transactions
	WHERE ledger_id = ?
	ORDER BY month DESC;
	`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("query months: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// LatestMonth returns the year and month of the ledger's most recent
// transaction by date. ok is false when the ledger has no transactions.
func (r *TransactionRepo) LatestMonth(ctx context.Context, ledgerID string) (year, month int, ok bool, err error) {
	if err := r.ready(); err != nil {
		return 0, 0, false, err
	}
	if ledgerID == "" {
		ledgerID, err = r.defaultLedgerID(ctx)
		if err != nil {
			return 0, 0, false, err
		}
	}

	var date string
	err = r.db.QueryRowContext(ctx, `
	SELECT date FROM transactions
	WHERE ledger_id = ?
	ORDER BY date DESC
	LIMIT 1;
	`, ledgerID).Scan(&date)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("query latest month: %w", err)
	}

	parts := strings.SplitN(date, "-", 3)
	if len(parts) < 2 {
		return 0, 0, false, fmt.Errorf("malformed date %q", date)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false, fmt.Errorf("malformed date %q", date)
	}
	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false, fmt.Errorf("malformed date %q", date)
	}
	return year, month, true, nil
}

func monthPrefix(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var cents int64
	if err := row.Scan(&t.ID, &t.LedgerID, &t.Type, &cents, &t.CategoryID, &t.Date, &t.Note, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	t.Amount = amountOf(cents)
	return t, nil
}
