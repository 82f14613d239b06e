package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/firelight-app/firelight/internal/database/repository"
)

func TestCreateDefaultsLedgerAndNote(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	cat := mustCategory(t, db, "Pets", repository.TypeExpense)
	created, err := repo.Create(ctx, repository.CreateTransaction{
		Type: repository.TypeExpense, Amount: amount("12.34"),
		CategoryID: cat.ID, Date: "2024-03-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.LedgerID != ledgerID {
		t.Errorf("ledger_id = %s, want default %s", created.LedgerID, ledgerID)
	}
	if created.Note != "" {
		t.Errorf("note = %q, want empty", created.Note)
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Amount.Equal(amount("12.34")) {
		t.Errorf("amount = %s, want 12.34", got.Amount)
	}
	if got.Date != "2024-03-01" || got.Type != repository.TypeExpense {
		t.Errorf("got %+v", got)
	}
}

func TestGetUnknownTransactionReturnsNil(t *testing.T) {
	db, _ := testDB(t)
	repo := repository.NewTransactionRepo(db)

	got, err := repo.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestListYearMonthTakesPrecedenceOverRange(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	cat := mustCategory(t, db, "Pets", repository.TypeExpense)
	for _, date := range []string{"2024-02-28", "2024-03-01", "2024-03-15", "2024-04-02"} {
		mustTransaction(t, db, repository.CreateTransaction{
			LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("1"),
			CategoryID: cat.ID, Date: date,
		})
	}

	// range spans three months but year/month wins
	got, err := repo.List(ctx, repository.Filter{
		Year: 2024, Month: 3,
		DateFrom: "2024-02-01", DateTo: "2024-04-30",
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d transactions, want 2", len(got))
	}
	for _, tx := range got {
		if tx.Date[:7] != "2024-03" {
			t.Errorf("transaction outside 2024-03: %s", tx.Date)
		}
	}
	if got[0].Date != "2024-03-15" || got[1].Date != "2024-03-01" {
		t.Errorf("not date-descending: %s, %s", got[0].Date, got[1].Date)
	}
}

func TestListDateRangeInclusive(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	cat := mustCategory(t, db, "Pets", repository.TypeExpense)
	for _, date := range []string{"2024-03-01", "2024-03-10", "2024-03-20"} {
		mustTransaction(t, db, repository.CreateTransaction{
			LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("1"),
			CategoryID: cat.ID, Date: date,
		})
	}

	got, err := repo.List(ctx, repository.Filter{DateFrom: "2024-03-01", DateTo: "2024-03-10"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d transactions, want 2 (range is inclusive)", len(got))
	}
}

func TestListFiltersByTypeAndCategory(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	pets := mustCategory(t, db, "Pets", repository.TypeExpense)
	salary := mustCategory(t, db, "Salary", repository.TypeIncome)
	mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("50"),
		CategoryID: pets.ID, Date: "2024-03-01",
	})
	mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeIncome, Amount: amount("200"),
		CategoryID: salary.ID, Date: "2024-03-01",
	})

	got, err := repo.List(ctx, repository.Filter{Type: repository.TypeIncome})
	if err != nil {
		t.Fatalf("list by type: %v", err)
	}
	if len(got) != 1 || got[0].Type != repository.TypeIncome {
		t.Errorf("type filter: got %d rows", len(got))
	}

	got, err = repo.List(ctx, repository.Filter{CategoryID: pets.ID})
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(got) != 1 || got[0].CategoryID != pets.ID {
		t.Errorf("category filter: got %d rows", len(got))
	}
}

func TestListByMonthGroupsAndTotals(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	pets := mustCategory(t, db, "Pets", repository.TypeExpense)
	salary := mustCategory(t, db, "Salary", repository.TypeIncome)
	mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("50"),
		CategoryID: pets.ID, Date: "2024-03-01",
	})
	mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeIncome, Amount: amount("200"),
		CategoryID: salary.ID, Date: "2024-03-01",
	})
	mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("30"),
		CategoryID: pets.ID, Date: "2024-03-15",
	})

	groups, err := repo.ListByMonth(ctx, 2024, 3, ledgerID)
	if err != nil {
		t.Fatalf("list by month: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d day groups, want 2", len(groups))
	}
	if groups[0].Date != "2024-03-15" || groups[1].Date != "2024-03-01" {
		t.Errorf("groups not date-descending: %s, %s", groups[0].Date, groups[1].Date)
	}
	first := groups[1]
	if !first.TotalIncome.Equal(amount("200")) {
		t.Errorf("2024-03-01 income = %s, want 200", first.TotalIncome)
	}
	if !first.TotalExpense.Equal(amount("50")) {
		t.Errorf("2024-03-01 expense = %s, want 50", first.TotalExpense)
	}
	if len(first.Transactions) != 2 {
		t.Errorf("2024-03-01 has %d transactions, want 2", len(first.Transactions))
	}
}

func TestMonthlyStatsEmptyMonthIsZero(t *testing.T) {
	db, ledgerID := testDB(t)
	repo := repository.NewTransactionRepo(db)

	stats, err := repo.MonthlyStats(context.Background(), 2024, 7, ledgerID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.TotalIncome.IsZero() || !stats.TotalExpense.IsZero() || stats.TransactionCount != 0 {
		t.Errorf("got %+v, want zeros", stats)
	}
}

func TestMonthlyStatsSums(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	pets := mustCategory(t, db, "Pets", repository.TypeExpense)
	salary := mustCategory(t, db, "Salary", repository.TypeIncome)
	mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("19.99"),
		CategoryID: pets.ID, Date: "2024-03-05",
	})
	mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("0.01"),
		CategoryID: pets.ID, Date: "2024-03-06",
	})
	mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeIncome, Amount: amount("1500"),
		CategoryID: salary.ID, Date: "2024-03-25",
	})
	// different month, must not count
	mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("99"),
		CategoryID: pets.ID, Date: "2024-04-01",
	})

	stats, err := repo.MonthlyStats(ctx, 2024, 3, "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.TotalExpense.Equal(amount("20.00")) {
		t.Errorf("expense = %s, want 20.00", stats.TotalExpense)
	}
	if !stats.TotalIncome.Equal(amount("1500")) {
		t.Errorf("income = %s, want 1500", stats.TotalIncome)
	}
	if stats.TransactionCount != 3 {
		t.Errorf("count = %d, want 3", stats.TransactionCount)
	}
}

func TestUpdateTransactionPartial(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	cat := mustCategory(t, db, "Pets", repository.TypeExpense)
	tx := mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("10"),
		CategoryID: cat.ID, Date: "2024-03-01", Note: "vet",
	})

	newAmount := decimal.RequireFromString("15.50")
	got, err := repo.Update(ctx, tx.ID, repository.TransactionPatch{Amount: &newAmount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.Amount.Equal(newAmount) {
		t.Errorf("amount = %s, want 15.50", got.Amount)
	}
	if got.Note != "vet" || got.Date != "2024-03-01" {
		t.Errorf("unpatched fields changed: %+v", got)
	}
}

func TestUpdateUnknownTransactionReturnsNil(t *testing.T) {
	db, _ := testDB(t)
	repo := repository.NewTransactionRepo(db)

	note := "x"
	got, err := repo.Update(context.Background(), "nope", repository.TransactionPatch{Note: &note})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestDeleteTransactionReportsExistence(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	cat := mustCategory(t, db, "Pets", repository.TypeExpense)
	tx := mustTransaction(t, db, repository.CreateTransaction{
		LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("10"),
		CategoryID: cat.ID, Date: "2024-03-01",
	})

	ok, err := repo.Delete(ctx, tx.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Error("delete reported false for existing transaction")
	}

	ok, err = repo.Delete(ctx, tx.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if ok {
		t.Error("delete reported true for missing transaction")
	}

	// category untouched by the delete
	if got, _ := repository.NewCategoryRepo(db).Get(ctx, cat.ID); got == nil {
		t.Error("deleting a transaction cascaded into categories")
	}
}

func TestMonthsWithData(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	cat := mustCategory(t, db, "Pets", repository.TypeExpense)
	for _, date := range []string{"2023-12-31", "2024-03-01", "2024-03-15", "2024-01-02"} {
		mustTransaction(t, db, repository.CreateTransaction{
			LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("1"),
			CategoryID: cat.ID, Date: date,
		})
	}

	months, err := repo.MonthsWithData(ctx, "")
	if err != nil {
		t.Fatalf("months: %v", err)
	}
	want := []string{"2024-03", "2024-01", "2023-12"}
	if len(months) != len(want) {
		t.Fatalf("got %v, want %v", months, want)
	}
	for i := range want {
		if months[i] != want[i] {
			t.Errorf("months[%d] = %s, want %s", i, months[i], want[i])
		}
	}
}

func TestLatestMonth(t *testing.T) {
	db, ledgerID := testDB(t)
	ctx := context.Background()
	repo := repository.NewTransactionRepo(db)

	_, _, ok, err := repo.LatestMonth(ctx, ledgerID)
	if err != nil {
		t.Fatalf("latest month: %v", err)
	}
	if ok {
		t.Error("ok = true for empty ledger")
	}

	cat := mustCategory(t, db, "Pets", repository.TypeExpense)
	for _, date := range []string{"2024-01-15", "2024-06-02"} {
		mustTransaction(t, db, repository.CreateTransaction{
			LedgerID: ledgerID, Type: repository.TypeExpense, Amount: amount("1"),
			CategoryID: cat.ID, Date: date,
		})
	}

	year, month, ok, err := repo.LatestMonth(ctx, "")
	if err != nil {
		t.Fatalf("latest month: %v", err)
	}
	if !ok || year != 2024 || month != 6 {
		t.Errorf("got %d-%d ok=%v, want 2024-6", year, month, ok)
	}
}

func TestTransactionRepoNotInitialized(t *testing.T) {
	repo := repository.NewTransactionRepo(nil)
	_, err := repo.Get(context.Background(), "x")
	if !errors.Is(err, repository.ErrNotInitialized) {
		t.Errorf("err = %v, want ErrNotInitialized", err)
	}
}
