package database

import "github.com/firelight-app/firelight/internal/database/repository"

// SystemCategory is one entry in the built-in category catalog.
//
// IDs follow sys_{type}_{key} and are permanent once shipped: historical
// transactions reference them forever. Name, icon and sort order may change
// between releases and are re-synced on every startup. A retired entry sets
// Deprecated instead of being removed.
type SystemCategory struct {
	ID         string
	Name       string
	Icon       string
	Type       repository.TransactionType
	SortOrder  int
	Deprecated bool
}

// SystemCategories is the catalog synced into the store on every startup.
var SystemCategories = []SystemCategory{
	{ID: "sys_expense_food", Name: "Food & Dining", Icon: "🍜", Type: repository.TypeExpense, SortOrder: 0},
	{ID: "sys_expense_transport", Name: "Transport", Icon: "🚌", Type: repository.TypeExpense, SortOrder: 1},
	{ID: "sys_expense_shopping", Name: "Shopping", Icon: "🛍️", Type: repository.TypeExpense, SortOrder: 2},
	{ID: "sys_expense_housing", Name: "Housing", Icon: "🏠", Type: repository.TypeExpense, SortOrder: 3},
	{ID: "sys_expense_entertain", Name: "Entertainment", Icon: "🎮", Type: repository.TypeExpense, SortOrder: 4},
	{ID: "sys_expense_medical", Name: "Medical", Icon: "💊", Type: repository.TypeExpense, SortOrder: 5},
	{ID: "sys_expense_education", Name: "Education", Icon: "📚", Type: repository.TypeExpense, SortOrder: 6},
	{ID: "sys_expense_social", Name: "Gifts & Social", Icon: "🎁", Type: repository.TypeExpense, SortOrder: 7},

	{ID: "sys_income_salary", Name: "Salary", Icon: "💰", Type: repository.TypeIncome, SortOrder: 0},
	{ID: "sys_income_bonus", Name: "Bonus", Icon: "🎉", Type: repository.TypeIncome, SortOrder: 1},
	{ID: "sys_income_investment", Name: "Investment", Icon: "📈", Type: repository.TypeIncome, SortOrder: 2},
	{ID: "sys_income_other", Name: "Other", Icon: "📦", Type: repository.TypeIncome, SortOrder: 3},
}
