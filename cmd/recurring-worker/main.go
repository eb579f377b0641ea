package main

import (
	"time"

	"budgeteer/internal/amqp"
	"budgeteer/internal/cli"
	"budgeteer/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Created transactions flow through the budget service so export
	// messages are published like any other write. The broker stays
	// optional: without it the worker runs in SQLite-only mode.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		} else {
			amqpClient = client
			defer amqpClient.Close()
		}
	}

	budgetService := services.NewBudgetService(repo, amqpClient)
	processor := services.NewRecurringProcessor(repo, budgetService)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	interval := cfg.RecurringInterval
	logger.Info("Recurring transaction processor configured",
		"interval", interval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial pass on startup so a restart never delays due transactions
	// by a full interval.
	if count, err := processor.ProcessDue(ctx, time.Now()); err != nil {
		logger.Error("Initial processing failed", "error", err)
	} else {
		logger.Info("Initial processing complete", "transactions_created", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				count, err := processor.ProcessDue(ctx, now)
				if err != nil {
					logger.Error("Periodic processing failed", "error", err)
					continue
				}
				logger.Info("Periodic processing complete",
					"transactions_created", count,
					"next_check", now.Add(interval).Format("15:04:05"))
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
