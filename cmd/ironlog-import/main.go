package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/ironlog/internal/config"
	"github.com/claude/ironlog/internal/importer"
	"github.com/claude/ironlog/internal/storage"
	"github.com/google/uuid"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dir := flag.String("dir", "", "directory of IronLog JSON export files")
	owner := flag.String("owner", "", "owner user ID (uuid) imported sessions belong to")
	stateDir := flag.String("state-dir", ".ironlog-import", "directory for the import state database")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		log.Error("-dir is required")
		os.Exit(1)
	}
	ownerID, err := uuid.Parse(*owner)
	if err != nil {
		log.Error("-owner must be a valid uuid", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := storage.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	state, err := importer.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state db", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	imp := importer.New(db, state, ownerID, log, *dryRun)
	stats, err := imp.Import(ctx, *dir)
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	log.Info("import finished",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_inserted", stats.SessionsInserted,
		"sessions_skipped", stats.SessionsSkipped,
		"sessions_rejected", stats.SessionsRejected,
		"dry_run", *dryRun,
	)
}
