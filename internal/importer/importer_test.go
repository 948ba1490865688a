package importer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

type fakeStore struct {
	sessions map[uuid.UUID]models.WorkoutSession
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[uuid.UUID]models.WorkoutSession)}
}

func (f *fakeStore) InsertSession(_ context.Context, s models.WorkoutSession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, ownerID, sessionID uuid.UUID) (*models.WorkoutSession, error) {
	s, ok := f.sessions[sessionID]
	if !ok || s.OwnerID != ownerID {
		return nil, models.ErrNotFound
	}
	return &s, nil
}

func writeExport(t *testing.T, dir, name string, sessions []models.WorkoutSession) {
	t.Helper()
	data, err := json.Marshal(sessions)
	if err != nil {
		t.Fatalf("marshal export: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write export: %v", err)
	}
}

func exportSession(status models.SessionStatus) models.WorkoutSession {
	return models.WorkoutSession{
		ID:        uuid.New(),
		OwnerID:   uuid.New(), // Re-owned on import.
		Status:    status,
		StartTime: time.Date(2026, 2, 10, 18, 0, 0, 0, time.UTC),
		Exercises: []models.SessionExercise{{
			ExerciseID: "back-squat",
			TargetSets: 2,
			CompletedSets: []models.CompletedSet{
				{SetNumber: 1, Reps: 5, Weight: 100, WeightUnit: models.UnitKg},
			},
		}},
	}
}

func testImporter(t *testing.T, store Store, owner uuid.UUID, dryRun bool) *Importer {
	t.Helper()
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	t.Cleanup(func() { state.Close() })
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, state, owner, log, dryRun)
}

// TestImportReownsAndRecomputes verifies sessions are re-owned to the
// importing user and derived fields are recomputed rather than trusted.
func TestImportReownsAndRecomputes(t *testing.T) {
	dir := t.TempDir()
	exported := exportSession(models.StatusCompleted)
	exported.TotalVolumeKg = 999999 // Stale derived value in the export.
	writeExport(t, dir, "2026-02.json", []models.WorkoutSession{exported})

	owner := uuid.New()
	store := newFakeStore()
	imp := testImporter(t, store, owner, false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsInserted != 1 || stats.FilesProcessed != 1 {
		t.Errorf("stats = %+v", stats)
	}

	got, ok := store.sessions[exported.ID]
	if !ok {
		t.Fatal("session not inserted")
	}
	if got.OwnerID != owner {
		t.Errorf("owner = %v, want %v", got.OwnerID, owner)
	}
	if got.TotalVolumeKg != 500 {
		t.Errorf("TotalVolumeKg = %f, want recomputed 500", got.TotalVolumeKg)
	}
	if got.Version != 1 {
		t.Errorf("version = %d, want 1", got.Version)
	}
}

// TestImportSecondRunSkipsFile verifies the state database makes re-runs
// no-ops.
func TestImportSecondRunSkipsFile(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "a.json", []models.WorkoutSession{exportSession(models.StatusCompleted)})

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer state.Close()
	store := newFakeStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	owner := uuid.New()

	first, err := New(store, state, owner, log, false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("first Import: %v", err)
	}
	if first.SessionsInserted != 1 {
		t.Fatalf("first stats = %+v", first)
	}

	second, err := New(store, state, owner, log, false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}
	if second.FilesSkipped != 1 || second.SessionsInserted != 0 {
		t.Errorf("second stats = %+v, want file skipped", second)
	}
}

// TestImportRejectsBadSessionsSoftly verifies a malformed session is
// counted and skipped without failing the file.
func TestImportRejectsBadSessionsSoftly(t *testing.T) {
	dir := t.TempDir()
	good := exportSession(models.StatusCompleted)
	bad := exportSession("paused")
	noStart := exportSession(models.StatusCompleted)
	noStart.StartTime = time.Time{}
	writeExport(t, dir, "mixed.json", []models.WorkoutSession{good, bad, noStart})

	store := newFakeStore()
	imp := testImporter(t, store, uuid.New(), false)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsInserted != 1 || stats.SessionsRejected != 2 {
		t.Errorf("stats = %+v, want 1 inserted 2 rejected", stats)
	}
	if stats.FilesErrored != 0 {
		t.Errorf("FilesErrored = %d, want 0", stats.FilesErrored)
	}
}

// TestImportDryRun verifies a dry run writes nothing and leaves the file
// unmarked so a later real run imports it.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeExport(t, dir, "a.json", []models.WorkoutSession{exportSession(models.StatusCompleted)})

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer state.Close()
	store := newFakeStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	owner := uuid.New()

	stats, err := New(store, state, owner, log, true).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("dry run Import: %v", err)
	}
	if stats.SessionsInserted != 1 {
		t.Errorf("dry run stats = %+v", stats)
	}
	if len(store.sessions) != 0 {
		t.Errorf("sessions written during dry run: %d", len(store.sessions))
	}

	real, err := New(store, state, owner, log, false).Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("real Import: %v", err)
	}
	if real.FilesSkipped != 0 || real.SessionsInserted != 1 {
		t.Errorf("real run stats = %+v, want import after dry run", real)
	}
}

// TestImportDuplicateSessionSkipped verifies an already-present session ID
// is not overwritten.
func TestImportDuplicateSessionSkipped(t *testing.T) {
	dir := t.TempDir()
	s := exportSession(models.StatusCompleted)
	writeExport(t, dir, "a.json", []models.WorkoutSession{s})

	owner := uuid.New()
	store := newFakeStore()
	existing := s
	existing.OwnerID = owner
	existing.Notes = "already here"
	store.sessions[s.ID] = existing

	imp := testImporter(t, store, owner, false)
	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.SessionsSkipped != 1 || stats.SessionsInserted != 0 {
		t.Errorf("stats = %+v, want duplicate skipped", stats)
	}
	if store.sessions[s.ID].Notes != "already here" {
		t.Error("existing session overwritten")
	}
}
