package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/firelight-app/firelight/internal/config"
	"github.com/firelight-app/firelight/internal/database"
	"github.com/firelight-app/firelight/internal/database/repository"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("open store", "error", err, "path", cfg.Database.Path)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("opened store", "path", cfg.Database.Path)

	if err := database.RunMigrations(db); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	ledgerID, err := database.EnsureDefaultLedger(ctx, db)
	if err != nil {
		logger.Error("ensure default ledger", "error", err)
		os.Exit(1)
	}

	if err := database.SyncSystemCategories(ctx, db, database.SystemCategories); err != nil {
		logger.Error("sync system categories", "error", err)
		os.Exit(1)
	}

	txRepo := repository.NewTransactionRepo(db)

	year, month, ok, err := txRepo.LatestMonth(ctx, ledgerID)
	if err != nil {
		logger.Error("latest month", "error", err)
		os.Exit(1)
	}
	if !ok {
		logger.Info("no transactions recorded yet")
		return
	}

	stats, err := txRepo.MonthlyStats(ctx, year, month, ledgerID)
	if err != nil {
		logger.Error("monthly stats", "error", err)
		os.Exit(1)
	}
	logger.Info("latest month summary",
		"year", year,
		"month", month,
		"income", stats.TotalIncome.StringFixed(2),
		"expense", stats.TotalExpense.StringFixed(2),
		"transactions", stats.TransactionCount)
}
