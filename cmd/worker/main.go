package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/cargodesk/cargodesk/internal/config"
	"github.com/cargodesk/cargodesk/internal/costing/calc"
	"github.com/cargodesk/cargodesk/internal/database"
	"github.com/cargodesk/cargodesk/internal/storage/drivers"
	"github.com/cargodesk/cargodesk/internal/worker"
)

// concurrency is the number of jobs the worker processes in parallel.
const concurrency = 10

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	store, err := drivers.NewFromConfig(ctx, &cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, asynq.Config{
		Concurrency: concurrency,
	})

	processor := worker.NewProcessor(
		db,
		store,
		worker.NewMailer(cfg.SMTP),
		calc.Defaults{
			AgencyFeePercent: cfg.Costing.AgencyFeePercent,
			AgencyFeeMinimum: cfg.Costing.AgencyFeeMinimum,
		},
		slog.Default(),
	)

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	slog.Info("starting worker", "redis", cfg.Redis.Addr)
	if err := server.Run(processor.Handler()); err != nil {
		slog.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}
