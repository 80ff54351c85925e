package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/vitalsnap/internal/config"
	"github.com/claude/vitalsnap/internal/ingest"
	"github.com/claude/vitalsnap/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	payloadPath := flag.String("path", "", "path to exported JSON payload file (required)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *payloadPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: vitalsnap-import -config config.yaml -path /path/to/export.json\n")
		flag.PrintDefaults()
		os.Exit(1)
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
		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		store = db
	} else {
		lite, err := storage.OpenLite(cfg.SQLite.Path)
		if err != nil {
			log.Error("failed to open sqlite store", "error", err, "path", cfg.SQLite.Path)
			os.Exit(1)
		}
		store = lite
	}
	defer store.Close()
	log.Info("database connected")

	f, err := os.Open(*payloadPath)
	if err != nil {
		log.Error("failed to open payload file", "path", *payloadPath, "error", err)
		os.Exit(1)
	}
	defer f.Close()

	var payload ingest.Payload
	if err := json.NewDecoder(f).Decode(&payload); err != nil {
		log.Error("failed to parse payload", "error", err)
		os.Exit(1)
	}

	result, err := ingest.New(store, log).Ingest(ctx, &payload)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	log.Info("import stats",
		"samples_received", result.SamplesReceived,
		"samples_inserted", result.SamplesInserted,
		"samples_skipped", result.SamplesSkipped,
		"samples_dropped", result.SamplesDropped,
		"workouts_received", result.WorkoutsReceived,
		"workouts_inserted", result.WorkoutsInserted,
	)
	log.Info("import complete")
}
