package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"wbhub/internal/app/config"
	"wbhub/internal/app/domains/repo/rphanging"
	"wbhub/internal/app/domains/repo/rpoperation"
	"wbhub/internal/app/domains/services/svreconcile"
	"wbhub/internal/app/infra/persistence"
	"wbhub/internal/app/infra/persistence/redisx"
	"wbhub/internal/app/infra/wbclient"
	"wbhub/internal/app/pkg/logger"
)

// Standalone reconciliation worker for deployments that keep the background
// job out of the API process.
func main() {
	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	zlog, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	db, err := persistence.NewDB(cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	redis, err := redisx.NewDedupClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Dedup.LockTTL)
	if err != nil {
		log.Fatalf("Failed to connect redis: %v", err)
	}
	defer redis.Close()

	marketplace := wbclient.NewMarketplace(wbclient.NewClient(cfg.Tokens(), zlog))
	reconciler := svreconcile.NewReconciler(
		marketplace,
		rphanging.NewHangingRepository(db),
		rpoperation.NewOperationRepository(db),
		redis,
		cfg.Reconciler.Interval,
		cfg.Reconciler.RetentionDays,
		zlog,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Received shutdown signal, stopping after current pass...")
		reconciler.Stop()
		cancel()
	}()

	reconciler.Run(ctx)
	log.Println("Sync worker stopped")
}
