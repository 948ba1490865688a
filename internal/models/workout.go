package models

import (
	"time"

	"github.com/google/uuid"
)

// WeightUnit is the unit a set's weight was logged in. All stored and
// derived weight math happens in kg; lbs values are converted on entry.
type WeightUnit string

const (
	UnitKg  WeightUnit = "kg"
	UnitLbs WeightUnit = "lbs"
)

// Category classifies a template or session by training focus.
type Category string

const (
	CategoryUpperBody Category = "upper_body"
	CategoryLowerBody Category = "lower_body"
	CategoryFullBody  Category = "full_body"
	CategoryCore      Category = "core"
	CategoryCardio    Category = "cardio"
	CategoryCustom    Category = "custom"
)

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	switch c {
	case CategoryUpperBody, CategoryLowerBody, CategoryFullBody,
		CategoryCore, CategoryCardio, CategoryCustom:
		return true
	}
	return false
}

// SessionStatus is the lifecycle state of a workout session. Transitions
// only move forward: in_progress -> completed | abandoned, both terminal.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether the status permits no further mutation.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusAbandoned
}

// TemplateExercise is one blueprint entry in a workout template.
type TemplateExercise struct {
	ExerciseID          string  `json:"exercise_id"`
	ExerciseName        string  `json:"exercise_name"`
	MuscleGroup         string  `json:"muscle_group"`
	TargetSets          int     `json:"target_sets"`
	TargetReps          string  `json:"target_reps"`
	TargetWeightKg      float64 `json:"target_weight_kg"`
	RestTimeSec         int     `json:"rest_time_sec"`
	ExerciseRestTimeSec int     `json:"exercise_rest_time_sec"`
	Order               int     `json:"order"`
}

// WorkoutTemplate is an ordered exercise blueprint sessions start from.
// Templates are never mutated by a running session beyond the usage counter.
type WorkoutTemplate struct {
	ID         uuid.UUID          `json:"id"`
	OwnerID    uuid.UUID          `json:"owner_id"`
	Name       string             `json:"name"`
	Category   Category           `json:"category"`
	Exercises  []TemplateExercise `json:"exercises"`
	TotalUses  int                `json:"total_uses"`
	LastUsedAt *time.Time         `json:"last_used_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// CompletedSet is one logged set. SetNumber is unique within its exercise;
// re-logging the same set number overwrites rather than duplicates.
type CompletedSet struct {
	SetNumber  int        `json:"set_number"`
	Reps       int        `json:"reps"`
	Weight     float64    `json:"weight"`
	WeightUnit WeightUnit `json:"weight_unit"`
	Notes      string     `json:"notes,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// SessionExercise is one exercise slot within a session, carrying its
// target plan and the sets actually logged against it.
type SessionExercise struct {
	ExerciseID        string         `json:"exercise_id"`
	ExerciseName      string         `json:"exercise_name"`
	MuscleGroup       string         `json:"muscle_group"`
	TargetSets        int            `json:"target_sets"`
	TargetReps        string         `json:"target_reps"`
	TargetWeightKg    float64        `json:"target_weight_kg"`
	CompletedSets     []CompletedSet `json:"completed_sets"`
	ExerciseCompleted bool           `json:"exercise_completed"`
	StartTime         *time.Time     `json:"start_time,omitempty"`
	EndTime           *time.Time     `json:"end_time,omitempty"`
	Order             int            `json:"order"`
}

// WorkoutSession is a single training session document. The derived block
// is recomputed from the full exercise list on every mutation, never
// incrementally, so a re-save is always idempotent.
type WorkoutSession struct {
	ID           uuid.UUID         `json:"id"`
	OwnerID      uuid.UUID         `json:"owner_id"`
	TemplateID   *uuid.UUID        `json:"template_id,omitempty"`
	TemplateName string            `json:"template_name"`
	Category     Category          `json:"category"`
	Exercises    []SessionExercise `json:"exercises"`
	Status       SessionStatus     `json:"status"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      *time.Time        `json:"end_time,omitempty"`
	Rating       *int              `json:"rating,omitempty"`
	Felt         string            `json:"felt,omitempty"`
	Notes        string            `json:"notes,omitempty"`

	// Derived.
	DurationMinutes    int     `json:"duration_minutes"`
	TotalSetsPlanned   int     `json:"total_sets_planned"`
	TotalSetsCompleted int     `json:"total_sets_completed"`
	CompletionRate     int     `json:"completion_rate"`
	TotalVolumeKg      float64 `json:"total_volume_kg"`

	// Version guards the read-modify-write cycle; a stale writer gets
	// ErrConflict from the store instead of silently dropping data.
	Version int `json:"-"`
}

// RecordType is a personal-record dimension. Duration is part of the
// taxonomy but has no producer in this system; it is reserved.
type RecordType string

const (
	RecordWeight   RecordType = "weight"
	RecordReps     RecordType = "reps"
	RecordVolume   RecordType = "volume"
	RecordDuration RecordType = "duration"
)

// PersonalRecord is one best-ever entry for (owner, exercise, type).
// Superseded records are marked inactive, never deleted, so each exercise
// keeps a PR history timeline. Exactly one active record exists per
// (owner, exercise, type) at any time.
type PersonalRecord struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	ExerciseID      string     `json:"exercise_id"`
	ExerciseName    string     `json:"exercise_name"`
	MuscleGroup     string     `json:"muscle_group"`
	RecordType      RecordType `json:"record_type"`
	Value           float64    `json:"value"`
	WeightUnit      WeightUnit `json:"weight_unit"`
	SetWeightKg     float64    `json:"set_weight_kg"`
	SetDate         time.Time  `json:"set_date"`
	SourceSessionID uuid.UUID  `json:"source_session_id"`
	Notes           string     `json:"notes,omitempty"`
	RepRange        string     `json:"rep_range,omitempty"`
	IsActive        bool       `json:"is_active"`
}
