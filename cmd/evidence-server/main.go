// Package main provides the evidence service entry point: HTTP API in front
// of the IPFS content store and the two Fabric custody chains.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang/glog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/coc-platform/evidence-service/internal/config"
	"github.com/coc-platform/evidence-service/internal/server"
	"github.com/coc-platform/evidence-service/pkg/audit"
	"github.com/coc-platform/evidence-service/pkg/evidence"
	"github.com/coc-platform/evidence-service/pkg/ipfs"
	"github.com/coc-platform/evidence-service/pkg/ledger"
)

func main() {
	var (
		listenAddr string
		configPath string
	)

	flag.StringVar(&listenAddr, "listen", "", "Address to listen on (overrides config)")
	flag.StringVar(&configPath, "config", "", "Path to service config YAML")
	flag.Parse()

	_ = flag.Set("logtostderr", "true")

	cfg, err := config.Load(configPath)
	if err != nil {
		glog.Fatalf("Failed to load config: %v", err)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("starting evidence service",
		"listen", cfg.ListenAddr,
		"ipfs", cfg.IPFS.APIURL,
		"hotChain", cfg.Chains.Hot.GatewayPeer+" ("+cfg.Chains.Hot.Channel+")",
		"coldChain", cfg.Chains.Cold.GatewayPeer+" ("+cfg.Chains.Cold.Channel+")",
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	store := ipfs.NewClient(cfg.IPFS.APIURL, logger)
	gateway := ledger.NewGatewayClient(cfg.Chains, logger)

	svcOpts := []evidence.Option{}
	appOpts := []server.Option{server.WithProbers(store, gateway)}

	if cfg.Audit.Enabled {
		db, err := gorm.Open(sqlite.Open(cfg.Audit.DBPath), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			glog.Fatalf("Failed to open audit database: %v", err)
		}
		auditStore := audit.NewStore(db, logger)
		if err := auditStore.AutoMigrate(); err != nil {
			glog.Fatalf("Failed to migrate audit database: %v", err)
		}
		svcOpts = append(svcOpts, evidence.WithAuditRecorder(auditStore))
		appOpts = append(appOpts, server.WithAuditStore(auditStore))

		if cfg.Audit.RetentionDays > 0 {
			retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
			go auditStore.StartRetentionLoop(ctx, retention)
		}
		logger.Info("audit trail enabled",
			"dbPath", cfg.Audit.DBPath, "retentionDays", cfg.Audit.RetentionDays)
	} else {
		logger.Info("audit trail disabled")
	}

	svc := evidence.NewService(store, gateway, logger, svcOpts...)
	app := server.NewApp(svc, logger, appOpts...)

	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: app.Router(),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()

	logger.Info("evidence service ready", "listen", cfg.ListenAddr)

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("evidence service stopped")
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
