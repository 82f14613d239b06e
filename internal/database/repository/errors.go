package repository

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a repository is used before the store
// handle has been opened. That is a programming error, not a runtime
// condition.
var ErrNotInitialized = errors.New("database not initialized")

// DomainError codes.
const (
	CodeDefaultLedger  = "default_ledger"
	CodeLedgerInUse    = "ledger_in_use"
	CodeSystemCategory = "system_category"
	CodeCategoryInUse  = "category_in_use"
)

// DomainError is a recoverable business-rule violation the caller can present
// to the user. TransactionCount carries the number of referencing transactions
// for the in-use codes.
type DomainError struct {
	Code             string
	Message          string
	TransactionCount int
}

func (e *DomainError) Error() string { return e.Message }

func errDefaultLedger() *DomainError {
	return &DomainError{Code: CodeDefaultLedger, Message: "cannot delete default ledger"}
}

func errLedgerInUse(count int) *DomainError {
	return &DomainError{
		Code:             CodeLedgerInUse,
		Message:          fmt.Sprintf("cannot delete ledger with %d transactions", count),
		TransactionCount: count,
	}
}

func errSystemCategory() *DomainError {
	return &DomainError{Code: CodeSystemCategory, Message: "cannot delete system category"}
}

func errCategoryInUse(count int) *DomainError {
	return &DomainError{
		Code:             CodeCategoryInUse,
		Message:          fmt.Sprintf("cannot delete category with %d transactions, deactivate it instead", count),
		TransactionCount: count,
	}
}
