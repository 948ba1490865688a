// Package records detects and supersedes per-exercise personal records.
// Three record types are evaluated independently for every logged set: a
// single set can take the reps and volume records without touching the
// weight record. Old records are deactivated, never deleted, so the PR
// history per exercise is preserved.
package records

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/units"
	"github.com/google/uuid"
)

// Store is the persistence collaborator for personal records. ReplaceActive
// must deactivate and insert in a single transaction so that at most one
// active row exists per (owner, exercise, type).
type Store interface {
	ActiveRecord(ctx context.Context, ownerID uuid.UUID, exerciseID string, recordType models.RecordType) (*models.PersonalRecord, error)
	ReplaceActive(ctx context.Context, deactivate []uuid.UUID, insert []models.PersonalRecord) error
}

// Entry carries everything the tracker needs about one logged set.
type Entry struct {
	OwnerID      uuid.UUID
	SessionID    uuid.UUID
	ExerciseID   string
	ExerciseName string
	MuscleGroup  string
	Reps         int
	Weight       float64
	WeightUnit   models.WeightUnit
	Notes        string
	LoggedAt     time.Time
}

// Tracker evaluates logged sets against the current active records.
type Tracker struct {
	store Store
	log   *slog.Logger
}

// NewTracker creates a Tracker.
func NewTracker(store Store, log *slog.Logger) *Tracker {
	return &Tracker{store: store, log: log}
}

// CheckAndUpdate compares entry against the active weight, reps, and volume
// records for (owner, exercise) and replaces any it beats. It returns the
// newly created records; an empty result is the common case, not an error.
func (t *Tracker) CheckAndUpdate(ctx context.Context, entry Entry) ([]models.PersonalRecord, error) {
	weightKg, err := units.ToKg(entry.Weight, entry.WeightUnit)
	if err != nil {
		return nil, err
	}
	volumeKg := weightKg * float64(entry.Reps)

	var deactivate []uuid.UUID
	var created []models.PersonalRecord

	stage := func(recordType models.RecordType, value float64, old *models.PersonalRecord) {
		if old != nil {
			deactivate = append(deactivate, old.ID)
		}
		created = append(created, models.PersonalRecord{
			ID:              uuid.New(),
			OwnerID:         entry.OwnerID,
			ExerciseID:      entry.ExerciseID,
			ExerciseName:    entry.ExerciseName,
			MuscleGroup:     entry.MuscleGroup,
			RecordType:      recordType,
			Value:           value,
			WeightUnit:      models.UnitKg,
			SetWeightKg:     weightKg,
			SetDate:         entry.LoggedAt,
			SourceSessionID: entry.SessionID,
			Notes:           entry.Notes,
			RepRange:        fmt.Sprintf("%d", entry.Reps),
			IsActive:        true,
		})
	}

	// Weight: strictly heavier wins, ties keep the old record.
	oldWeight, err := t.store.ActiveRecord(ctx, entry.OwnerID, entry.ExerciseID, models.RecordWeight)
	if err != nil {
		return nil, fmt.Errorf("loading weight record: %w", err)
	}
	if oldWeight == nil || weightKg > oldWeight.Value {
		stage(models.RecordWeight, weightKg, oldWeight)
	}

	// Reps: strictly more reps wins; equal reps win only at heavier weight.
	oldReps, err := t.store.ActiveRecord(ctx, entry.OwnerID, entry.ExerciseID, models.RecordReps)
	if err != nil {
		return nil, fmt.Errorf("loading reps record: %w", err)
	}
	reps := float64(entry.Reps)
	if oldReps == nil || reps > oldReps.Value || (reps == oldReps.Value && weightKg > oldReps.SetWeightKg) {
		stage(models.RecordReps, reps, oldReps)
	}

	// Volume: strictly more total load wins.
	oldVolume, err := t.store.ActiveRecord(ctx, entry.OwnerID, entry.ExerciseID, models.RecordVolume)
	if err != nil {
		return nil, fmt.Errorf("loading volume record: %w", err)
	}
	if oldVolume == nil || volumeKg > oldVolume.Value {
		stage(models.RecordVolume, volumeKg, oldVolume)
	}

	if len(created) == 0 {
		return nil, nil
	}

	if err := t.store.ReplaceActive(ctx, deactivate, created); err != nil {
		return nil, fmt.Errorf("saving records: %w", err)
	}

	t.log.Info("personal records updated",
		"owner", entry.OwnerID,
		"exercise", entry.ExerciseID,
		"new_records", len(created),
	)
	return created, nil
}
