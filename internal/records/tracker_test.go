package records

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
)

type fakeStore struct {
	active map[models.RecordType]*models.PersonalRecord

	deactivated []uuid.UUID
	inserted    []models.PersonalRecord
	calls       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{active: make(map[models.RecordType]*models.PersonalRecord)}
}

func (f *fakeStore) ActiveRecord(_ context.Context, _ uuid.UUID, _ string, recordType models.RecordType) (*models.PersonalRecord, error) {
	return f.active[recordType], nil
}

func (f *fakeStore) ReplaceActive(_ context.Context, deactivate []uuid.UUID, insert []models.PersonalRecord) error {
	f.calls++
	f.deactivated = append(f.deactivated, deactivate...)
	f.inserted = append(f.inserted, insert...)
	return nil
}

func (f *fakeStore) setActive(recordType models.RecordType, value, setWeightKg float64) *models.PersonalRecord {
	r := &models.PersonalRecord{
		ID:          uuid.New(),
		RecordType:  recordType,
		Value:       value,
		SetWeightKg: setWeightKg,
		WeightUnit:  models.UnitKg,
		IsActive:    true,
	}
	f.active[recordType] = r
	return r
}

func testTracker(store Store) *Tracker {
	return NewTracker(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func entry(reps int, weight float64, unit models.WeightUnit) Entry {
	return Entry{
		OwnerID:      uuid.New(),
		SessionID:    uuid.New(),
		ExerciseID:   "barbell-bench-press",
		ExerciseName: "Barbell Bench Press",
		MuscleGroup:  "chest",
		Reps:         reps,
		Weight:       weight,
		WeightUnit:   unit,
		LoggedAt:     time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC),
	}
}

func byType(t *testing.T, recs []models.PersonalRecord, recordType models.RecordType) models.PersonalRecord {
	t.Helper()
	for _, r := range recs {
		if r.RecordType == recordType {
			return r
		}
	}
	t.Fatalf("no %s record in %v", recordType, recs)
	return models.PersonalRecord{}
}

// TestFirstSetCreatesAllRecords verifies the very first set for an exercise
// produces weight, reps, and volume records with nothing to deactivate.
func TestFirstSetCreatesAllRecords(t *testing.T) {
	store := newFakeStore()
	tr := testTracker(store)

	recs, err := tr.CheckAndUpdate(context.Background(), entry(8, 100, models.UnitKg))
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3", len(recs))
	}
	if len(store.deactivated) != 0 {
		t.Errorf("deactivated = %d, want 0", len(store.deactivated))
	}

	if w := byType(t, recs, models.RecordWeight); w.Value != 100 {
		t.Errorf("weight value = %f, want 100", w.Value)
	}
	if r := byType(t, recs, models.RecordReps); r.Value != 8 || r.RepRange != "8" {
		t.Errorf("reps record = %+v, want value 8 rep range 8", r)
	}
	if v := byType(t, recs, models.RecordVolume); v.Value != 800 {
		t.Errorf("volume value = %f, want 800", v.Value)
	}
	for _, r := range recs {
		if !r.IsActive {
			t.Errorf("%s record inactive", r.RecordType)
		}
		if r.WeightUnit != models.UnitKg {
			t.Errorf("%s record unit = %q, want kg", r.RecordType, r.WeightUnit)
		}
	}
}

// TestHeavierSetBeatsWeightRecord verifies a strictly heavier set supersedes
// the active weight record and the old one is deactivated.
func TestHeavierSetBeatsWeightRecord(t *testing.T) {
	store := newFakeStore()
	old := store.setActive(models.RecordWeight, 100, 100)
	store.setActive(models.RecordReps, 10, 80)
	store.setActive(models.RecordVolume, 1000, 100)
	tr := testTracker(store)

	recs, err := tr.CheckAndUpdate(context.Background(), entry(5, 105, models.UnitKg))
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1 (weight only: volume 525 < 1000, reps 5 < 10)", len(recs))
	}
	if recs[0].RecordType != models.RecordWeight || recs[0].Value != 105 {
		t.Errorf("record = %+v, want weight 105", recs[0])
	}
	if len(store.deactivated) != 1 || store.deactivated[0] != old.ID {
		t.Errorf("deactivated = %v, want [%v]", store.deactivated, old.ID)
	}
}

// TestEqualWeightKeepsOldRecord verifies ties never supersede.
func TestEqualWeightKeepsOldRecord(t *testing.T) {
	store := newFakeStore()
	store.setActive(models.RecordWeight, 100, 100)
	store.setActive(models.RecordReps, 10, 100)
	store.setActive(models.RecordVolume, 1000, 100)
	tr := testTracker(store)

	recs, err := tr.CheckAndUpdate(context.Background(), entry(10, 100, models.UnitKg))
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("records = %v, want none for an exact tie", recs)
	}
	if store.calls != 0 {
		t.Errorf("ReplaceActive called %d times, want 0", store.calls)
	}
}

// TestVolumeRecordIndependent verifies a lighter but higher-volume set takes
// only the volume record: 10x70=700 beats 8x80=640 while 70 < 80.
func TestVolumeRecordIndependent(t *testing.T) {
	store := newFakeStore()
	store.setActive(models.RecordWeight, 80, 80)
	store.setActive(models.RecordReps, 10, 75)
	old := store.setActive(models.RecordVolume, 640, 80)
	tr := testTracker(store)

	recs, err := tr.CheckAndUpdate(context.Background(), entry(10, 70, models.UnitKg))
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("records = %d, want 1", len(recs))
	}
	if recs[0].RecordType != models.RecordVolume || recs[0].Value != 700 {
		t.Errorf("record = %+v, want volume 700", recs[0])
	}
	if len(store.deactivated) != 1 || store.deactivated[0] != old.ID {
		t.Errorf("deactivated = %v, want [%v]", store.deactivated, old.ID)
	}
}

// TestRepsTieBrokenByWeight verifies equal reps supersede only at a heavier
// set weight.
func TestRepsTieBrokenByWeight(t *testing.T) {
	store := newFakeStore()
	store.setActive(models.RecordWeight, 90, 90)
	store.setActive(models.RecordReps, 10, 60)
	store.setActive(models.RecordVolume, 900, 90)
	tr := testTracker(store)

	// 10 reps at 65 kg: same reps, heavier set. Volume 650 < 900, weight 65 < 90.
	recs, err := tr.CheckAndUpdate(context.Background(), entry(10, 65, models.UnitKg))
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if len(recs) != 1 || recs[0].RecordType != models.RecordReps {
		t.Fatalf("records = %v, want reps only", recs)
	}
	if recs[0].SetWeightKg != 65 {
		t.Errorf("SetWeightKg = %f, want 65", recs[0].SetWeightKg)
	}

	// Same reps at a lighter weight must not supersede the new record.
	store2 := newFakeStore()
	store2.setActive(models.RecordWeight, 90, 90)
	store2.setActive(models.RecordReps, 10, 65)
	store2.setActive(models.RecordVolume, 900, 90)
	recs, err = testTracker(store2).CheckAndUpdate(context.Background(), entry(10, 60, models.UnitKg))
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("records = %v, want none for lighter tie", recs)
	}
}

// TestLbsEntryStoredInKg verifies lbs input is converted before comparison
// and storage.
func TestLbsEntryStoredInKg(t *testing.T) {
	store := newFakeStore()
	tr := testTracker(store)

	recs, err := tr.CheckAndUpdate(context.Background(), entry(5, 220.462, models.UnitLbs))
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	w := byType(t, recs, models.RecordWeight)
	if math.Abs(w.Value-100) > 0.001 {
		t.Errorf("weight value = %f, want 100 kg", w.Value)
	}
	if w.WeightUnit != models.UnitKg {
		t.Errorf("unit = %q, want kg", w.WeightUnit)
	}
}

// TestBadUnitRejected verifies an unknown unit is a validation error and
// nothing is written.
func TestBadUnitRejected(t *testing.T) {
	store := newFakeStore()
	tr := testTracker(store)

	_, err := tr.CheckAndUpdate(context.Background(), entry(5, 100, "stone"))
	if !models.IsValidation(err) {
		t.Errorf("err = %v, want validation error", err)
	}
	if store.calls != 0 {
		t.Errorf("ReplaceActive called %d times, want 0", store.calls)
	}
}

// TestSingleReplaceCall verifies all supersessions from one set land in a
// single ReplaceActive call.
func TestSingleReplaceCall(t *testing.T) {
	store := newFakeStore()
	store.setActive(models.RecordWeight, 90, 90)
	store.setActive(models.RecordReps, 8, 90)
	store.setActive(models.RecordVolume, 720, 90)
	tr := testTracker(store)

	recs, err := tr.CheckAndUpdate(context.Background(), entry(10, 100, models.UnitKg))
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("records = %d, want 3", len(recs))
	}
	if store.calls != 1 {
		t.Errorf("ReplaceActive calls = %d, want 1", store.calls)
	}
	if len(store.deactivated) != 3 {
		t.Errorf("deactivated = %d, want 3", len(store.deactivated))
	}
}
