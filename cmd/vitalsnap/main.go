package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"tailscale.com/tsnet"

	"github.com/claude/vitalsnap/internal/cache"
	"github.com/claude/vitalsnap/internal/config"
	"github.com/claude/vitalsnap/internal/server"
	"github.com/claude/vitalsnap/internal/snapshot"
	"github.com/claude/vitalsnap/internal/storage"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("VitalSnap starting", "version", Version)

	// .env is optional; real env vars win either way.
	if err := godotenv.Load(); err == nil {
		log.Info("loaded .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var store storage.Store
	if cfg.UsePostgres() {
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		store = db
		log.Info("database connected", "backend", "postgres")
	} else {
		if *migrateOnly {
			log.Info("migrate-only: sqlite schema is created on open, exiting")
			return
		}
		lite, err := storage.OpenLite(cfg.SQLite.Path)
		if err != nil {
			log.Error("failed to open sqlite store", "error", err, "path", cfg.SQLite.Path)
			os.Exit(1)
		}
		store = lite
		log.Info("database connected", "backend", "sqlite", "path", cfg.SQLite.Path)
	}
	defer store.Close()

	var snapCache *cache.Cache
	if cfg.Redis.Addr != "" {
		ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
		snapCache, err = cache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, ttl, log)
		if err != nil {
			log.Error("redis connect failed", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		defer snapCache.Close()
		log.Info("snapshot cache enabled", "addr", cfg.Redis.Addr, "ttl", ttl.String())
	}

	aggOpts := []snapshot.Option{
		snapshot.WithQueryTimeout(time.Duration(cfg.Snapshot.QueryTimeoutSeconds) * time.Second),
	}
	if cfg.Snapshot.MoveGoalKcal > 0 {
		aggOpts = append(aggOpts, snapshot.WithMoveGoal(cfg.Snapshot.MoveGoalKcal))
	}
	agg := snapshot.New(store, log, aggOpts...)

	srv := server.New(store, agg, snapCache, cfg.Auth.APIKey, log)

	// Start server — tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}
