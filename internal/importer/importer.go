// Package importer loads IronLog JSON export files into storage. Each
// export file holds an array of full session documents; a local SQLite
// state database remembers which files were already imported so re-runs
// are cheap and idempotent.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/session"
	"github.com/google/uuid"
)

// Store is the storage surface the importer writes through.
type Store interface {
	InsertSession(ctx context.Context, s models.WorkoutSession) error
	GetSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*models.WorkoutSession, error)
}

// Stats tracks import progress.
type Stats struct {
	FilesProcessed   int
	FilesSkipped     int
	FilesErrored     int
	SessionsInserted int
	SessionsSkipped  int
	SessionsRejected int
}

// Importer reads export files from a directory tree and inserts sessions.
type Importer struct {
	store   Store
	state   *StateDB
	ownerID uuid.UUID
	log     *slog.Logger
	dryRun  bool
	stats   Stats
}

// New creates a new Importer. All imported sessions are re-owned by ownerID.
func New(store Store, state *StateDB, ownerID uuid.UUID, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{store: store, state: state, ownerID: ownerID, log: log, dryRun: dryRun}
}

// Import processes all .json export files under dir, oldest name first.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return &imp.stats, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)

	for _, path := range files {
		if err := imp.importFile(ctx, dir, path); err != nil {
			imp.stats.FilesErrored++
			imp.log.Error("import failed", "file", path, "error", err)
			continue
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	done, err := imp.state.IsImported(rel, info.Size(), hash)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if done {
		imp.stats.FilesSkipped++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}

	var sessions []models.WorkoutSession
	if err := json.Unmarshal(data, &sessions); err != nil {
		return fmt.Errorf("parsing: %w", err)
	}

	for _, s := range sessions {
		if err := imp.importSession(ctx, s); err != nil {
			// One bad legacy row never aborts the file.
			imp.stats.SessionsRejected++
			imp.log.Warn("skipping session", "file", rel, "session", s.ID, "error", err)
		}
	}

	imp.stats.FilesProcessed++
	if imp.dryRun {
		return nil
	}
	if err := imp.state.MarkImported(rel, info.Size(), hash); err != nil {
		return fmt.Errorf("marking imported: %w", err)
	}
	return nil
}

func (imp *Importer) importSession(ctx context.Context, s models.WorkoutSession) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.StartTime.IsZero() {
		return fmt.Errorf("missing start time")
	}
	switch s.Status {
	case models.StatusInProgress, models.StatusCompleted, models.StatusAbandoned:
	default:
		return fmt.Errorf("unknown status %q", s.Status)
	}

	s.OwnerID = imp.ownerID
	s.Version = 1
	// Exports may predate derived fields; recompute rather than trust them.
	s = session.Recompute(s)

	if existing, err := imp.store.GetSession(ctx, imp.ownerID, s.ID); err == nil && existing != nil {
		imp.stats.SessionsSkipped++
		return nil
	}

	if imp.dryRun {
		imp.stats.SessionsInserted++
		return nil
	}
	if err := imp.store.InsertSession(ctx, s); err != nil {
		return fmt.Errorf("inserting: %w", err)
	}
	imp.stats.SessionsInserted++
	return nil
}
