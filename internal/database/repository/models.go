package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType partitions money movements into income and expense.
// Amounts are always stored as non-negative magnitudes; the sign comes
// from the type.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Ledger represents a ledger row.
type Ledger struct {
	ID        string
	Name      string
	Icon      string
	Color     string
	IsDefault bool
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Category represents a category row. Categories are global, not owned by a
// ledger. System categories carry permanently reserved ids and survive every
// release; a deprecated category is hidden from listings but kept forever so
// historical transactions still resolve.
type Category struct {
	ID         string
	Name       string
	Icon       string
	Type       TransactionType
	IsSystem   bool
	IsActive   bool
	SortOrder  int
	Deprecated bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Transaction represents a transaction row. Date is a calendar date in
// YYYY-MM-DD form with no enforced relation to CreatedAt (backdating is
// allowed).
type Transaction struct {
	ID         string
	LedgerID   string
	Type       TransactionType
	Amount     decimal.Decimal
	CategoryID string
	Date       string
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateLedger carries the caller-supplied fields for a new ledger.
type CreateLedger struct {
	Name      string
	Icon      string
	Color     string
	IsDefault bool
	SortOrder int
}

// LedgerPatch is a partial update; nil fields are left unchanged.
type LedgerPatch struct {
	Name      *string
	Icon      *string
	Color     *string
	IsDefault *bool
	SortOrder *int
}

// CreateCategory carries the caller-supplied fields for a new user category.
// IsSystem and Deprecated are not settable here; user categories always start
// with both false.
type CreateCategory struct {
	Name     string
	Icon     string
	Type     TransactionType
	IsActive bool
}

// CategoryPatch is a partial update; nil fields are left unchanged. Name and
// Icon are silently ignored for system categories.
type CategoryPatch struct {
	Name      *string
	Icon      *string
	IsActive  *bool
	SortOrder *int
}

// CreateTransaction carries the caller-supplied fields for a new transaction.
// An empty LedgerID falls back to the default ledger.
type CreateTransaction struct {
	LedgerID   string
	Type       TransactionType
	Amount     decimal.Decimal
	CategoryID string
	Date       string
	Note       string
}

// TransactionPatch is a partial update; nil fields are left unchanged.
type TransactionPatch struct {
	Type       *TransactionType
	Amount     *decimal.Decimal
	CategoryID *string
	Date       *string
	Note       *string
}

// Amounts cross the persistence boundary as integer minor units so SQL sums
// stay exact. Sub-cent input rounds half away from zero.

func centsOf(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func amountOf(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Booleans are stored as 0/1 integers; conversion happens only at scan and
// exec time, never in the entity model.

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// scanner handles both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// now returns UTC time truncated to seconds (consistent with SQLite default).
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
