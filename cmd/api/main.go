package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/smoketrack/smoketrack/internal/config"
	"github.com/smoketrack/smoketrack/internal/httpserver"
	"github.com/smoketrack/smoketrack/internal/logger"
	"github.com/smoketrack/smoketrack/internal/purchases"
	"github.com/smoketrack/smoketrack/internal/service"
	"github.com/smoketrack/smoketrack/internal/store"
)

// main boots the service: config → logger → DB → schema → HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync() //nolint:errcheck

	// Open the embedded database and make sure the tables exist, so a
	// fresh install needs nothing more than running the binary.
	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		zlog.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if err := db.EnsureSchema(); err != nil {
		zlog.Fatal("failed to ensure schema", zap.Error(err))
	}

	statsSvc := service.NewStatsService(db, zlog)

	// No billing key configured means mock mode: the app works end to
	// end, the paywall just has nothing to sell.
	var gateway purchases.Gateway
	if cfg.PurchasesAPIKey != "" {
		gateway = purchases.NewRESTGateway(cfg.PurchasesBaseURL, cfg.PurchasesAPIKey)
	}
	purchasesSvc := purchases.New(gateway, cfg.PurchasesEntitlement, zlog)
	zlog.Info("purchases service configured",
		zap.String("mode", purchasesSvc.Mode().String()))

	router := httpserver.NewRouter(cfg, db, statsSvc, purchasesSvc)

	zlog.Info("server started", zap.String("addr", cfg.Addr))
	if err := router.Run(cfg.Addr); err != nil {
		zlog.Fatal("server exited", zap.Error(err))
	}
}
