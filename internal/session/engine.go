// Package session implements the workout session lifecycle: starting a
// session from a template or ad hoc, logging sets, and completing or
// abandoning it. Sessions are immutable values here; every mutation builds
// a new document with recomputed derived fields and hands it to the store,
// which rejects stale writers via an optimistic version check.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/claude/ironlog/internal/catalog"
	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/records"
	"github.com/google/uuid"
)

// maxWriteAttempts bounds the re-read/re-apply/re-write cycle on version
// conflicts before ErrConflict is surfaced to the caller.
const maxWriteAttempts = 3

// TemplateStore is the template persistence collaborator.
type TemplateStore interface {
	GetTemplate(ctx context.Context, ownerID, templateID uuid.UUID) (*models.WorkoutTemplate, error)
	MarkTemplateUsed(ctx context.Context, ownerID, templateID uuid.UUID) error
}

// SessionStore is the session persistence collaborator. UpdateSession must
// compare the document version on write and return models.ErrConflict when
// another writer got there first.
type SessionStore interface {
	InsertSession(ctx context.Context, s models.WorkoutSession) error
	GetSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*models.WorkoutSession, error)
	UpdateSession(ctx context.Context, s models.WorkoutSession) (*models.WorkoutSession, error)
}

// RecordChecker is satisfied by records.Tracker.
type RecordChecker interface {
	CheckAndUpdate(ctx context.Context, entry records.Entry) ([]models.PersonalRecord, error)
}

// Engine orchestrates the session state machine.
type Engine struct {
	sessions  SessionStore
	templates TemplateStore
	tracker   RecordChecker
	catalog   *catalog.Catalog
	log       *slog.Logger
	now       func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(sessions SessionStore, templates TemplateStore, tracker RecordChecker, cat *catalog.Catalog, log *slog.Logger) *Engine {
	return &Engine{
		sessions:  sessions,
		templates: templates,
		tracker:   tracker,
		catalog:   cat,
		log:       log,
		now:       time.Now,
	}
}

// ExerciseInput describes one exercise slot for a custom session or a
// mid-session addition.
type ExerciseInput struct {
	ExerciseID     string  `json:"exercise_id"`
	ExerciseName   string  `json:"exercise_name"`
	MuscleGroup    string  `json:"muscle_group"`
	TargetSets     int     `json:"target_sets"`
	TargetReps     string  `json:"target_reps"`
	TargetWeightKg float64 `json:"target_weight_kg"`
	Order          int     `json:"order"`
}

// StartInput is the payload for StartSession. Either TemplateID is set, or
// the session is custom: Exercises may then be empty, matching the
// add-exercises-as-you-go product behavior.
type StartInput struct {
	TemplateID *uuid.UUID      `json:"template_id,omitempty"`
	Name       string          `json:"name,omitempty"`
	Category   models.Category `json:"category,omitempty"`
	Exercises  []ExerciseInput `json:"exercises"`
}

// StartSession creates an in-progress session, either copied from one of
// the owner's templates or built from the given exercise list.
func (e *Engine) StartSession(ctx context.Context, ownerID uuid.UUID, input StartInput) (*models.WorkoutSession, error) {
	now := e.now()
	s := models.WorkoutSession{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Status:    models.StatusInProgress,
		StartTime: now,
		Version:   1,
	}

	if input.TemplateID != nil {
		tpl, err := e.templates.GetTemplate(ctx, ownerID, *input.TemplateID)
		if err != nil {
			return nil, err
		}
		s.TemplateID = &tpl.ID
		s.TemplateName = tpl.Name
		s.Category = tpl.Category
		s.Exercises = make([]models.SessionExercise, 0, len(tpl.Exercises))
		for _, te := range tpl.Exercises {
			s.Exercises = append(s.Exercises, models.SessionExercise{
				ExerciseID:     te.ExerciseID,
				ExerciseName:   te.ExerciseName,
				MuscleGroup:    te.MuscleGroup,
				TargetSets:     te.TargetSets,
				TargetReps:     te.TargetReps,
				TargetWeightKg: te.TargetWeightKg,
				CompletedSets:  []models.CompletedSet{},
				Order:          te.Order,
			})
		}
		if err := e.templates.MarkTemplateUsed(ctx, ownerID, tpl.ID); err != nil {
			return nil, err
		}
	} else {
		s.TemplateName = input.Name
		if s.TemplateName == "" {
			s.TemplateName = "Custom Workout"
		}
		s.Category = input.Category
		if s.Category == "" {
			s.Category = models.CategoryCustom
		}
		if !models.ValidCategory(s.Category) {
			return nil, models.Invalid("category", "unknown category %q", s.Category)
		}
		s.Exercises = make([]models.SessionExercise, 0, len(input.Exercises))
		for i, in := range input.Exercises {
			ex, err := e.buildExercise(in, i)
			if err != nil {
				return nil, err
			}
			s.Exercises = append(s.Exercises, ex)
		}
	}

	s = Recompute(s)
	if err := e.sessions.InsertSession(ctx, s); err != nil {
		return nil, err
	}
	e.log.Info("session started",
		"session", s.ID,
		"owner", ownerID,
		"template", s.TemplateName,
		"exercises", len(s.Exercises),
	)
	return &s, nil
}

func (e *Engine) buildExercise(in ExerciseInput, index int) (models.SessionExercise, error) {
	if in.ExerciseID == "" {
		return models.SessionExercise{}, models.Invalid("exercise_id", "required")
	}
	if in.TargetSets < 0 {
		return models.SessionExercise{}, models.Invalid("target_sets", "must not be negative")
	}
	if in.TargetWeightKg < 0 {
		return models.SessionExercise{}, models.Invalid("target_weight_kg", "must not be negative")
	}
	targetSets := in.TargetSets
	if targetSets == 0 {
		targetSets = 1
	}
	name := in.ExerciseName
	muscle := in.MuscleGroup
	if entry, ok := e.catalog.Lookup(in.ExerciseID); ok {
		if name == "" {
			name = entry.Name
		}
		if muscle == "" {
			muscle = entry.MuscleGroup
		}
	}
	order := in.Order
	if order == 0 {
		order = index + 1
	}
	return models.SessionExercise{
		ExerciseID:     in.ExerciseID,
		ExerciseName:   name,
		MuscleGroup:    muscle,
		TargetSets:     targetSets,
		TargetReps:     in.TargetReps,
		TargetWeightKg: in.TargetWeightKg,
		CompletedSets:  []models.CompletedSet{},
		Order:          order,
	}, nil
}

// AddExercise appends an exercise slot to a running session.
func (e *Engine) AddExercise(ctx context.Context, ownerID, sessionID uuid.UUID, input ExerciseInput) (*models.WorkoutSession, error) {
	return e.mutate(ctx, ownerID, sessionID, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		for _, ex := range s.Exercises {
			if ex.ExerciseID == input.ExerciseID {
				return s, models.Invalid("exercise_id", "%q already in session", input.ExerciseID)
			}
		}
		ex, err := e.buildExercise(input, len(s.Exercises))
		if err != nil {
			return s, err
		}
		s.Exercises = append(s.Exercises, ex)
		return s, nil
	})
}

// LogSetInput is the payload for LogSet.
type LogSetInput struct {
	ExerciseID string            `json:"exercise_id"`
	SetNumber  int               `json:"set_number"`
	Reps       int               `json:"reps"`
	Weight     float64           `json:"weight"`
	WeightUnit models.WeightUnit `json:"weight_unit"`
	Notes      string            `json:"notes,omitempty"`
}

func (in LogSetInput) validate() error {
	if in.ExerciseID == "" {
		return models.Invalid("exercise_id", "required")
	}
	if in.SetNumber < 1 {
		return models.Invalid("set_number", "must be >= 1, got %d", in.SetNumber)
	}
	if in.Reps < 0 {
		return models.Invalid("reps", "must not be negative, got %d", in.Reps)
	}
	if in.Weight < 0 {
		return models.Invalid("weight", "must not be negative")
	}
	if in.WeightUnit != models.UnitKg && in.WeightUnit != models.UnitLbs {
		return models.Invalid("weight_unit", "unknown unit %q, want kg or lbs", in.WeightUnit)
	}
	return nil
}

// LogSet upserts a completed set on a running session and evaluates it for
// personal records. Re-logging an existing set number overwrites it.
func (e *Engine) LogSet(ctx context.Context, ownerID, sessionID uuid.UUID, input LogSetInput) (*models.WorkoutSession, []models.PersonalRecord, error) {
	if err := input.validate(); err != nil {
		return nil, nil, err
	}

	now := e.now()
	var logged models.SessionExercise

	updated, err := e.mutate(ctx, ownerID, sessionID, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		idx := -1
		for i, ex := range s.Exercises {
			if ex.ExerciseID == input.ExerciseID {
				idx = i
				break
			}
		}
		if idx == -1 {
			return s, models.ErrNotFound
		}

		exercises := make([]models.SessionExercise, len(s.Exercises))
		copy(exercises, s.Exercises)
		ex := exercises[idx]

		ex.CompletedSets = upsertSet(ex.CompletedSets, models.CompletedSet{
			SetNumber:  input.SetNumber,
			Reps:       input.Reps,
			Weight:     input.Weight,
			WeightUnit: input.WeightUnit,
			Notes:      input.Notes,
			Timestamp:  now,
		})
		// First set starts the exercise clock; never overwritten after.
		if ex.StartTime == nil {
			t := now
			ex.StartTime = &t
		}
		exercises[idx] = ex
		s.Exercises = exercises
		logged = ex
		return s, nil
	})
	if err != nil {
		return nil, nil, err
	}

	prs, err := e.tracker.CheckAndUpdate(ctx, records.Entry{
		OwnerID:      ownerID,
		SessionID:    sessionID,
		ExerciseID:   logged.ExerciseID,
		ExerciseName: logged.ExerciseName,
		MuscleGroup:  logged.MuscleGroup,
		Reps:         input.Reps,
		Weight:       input.Weight,
		WeightUnit:   input.WeightUnit,
		Notes:        input.Notes,
		LoggedAt:     now,
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, prs, nil
}

// CompleteInput carries the optional wrap-up fields on completion.
type CompleteInput struct {
	Rating *int   `json:"rating,omitempty"`
	Felt   string `json:"felt,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Complete finishes a running session: stamps the end time, evaluates
// per-exercise completion, and recomputes the derived block a final time.
func (e *Engine) Complete(ctx context.Context, ownerID, sessionID uuid.UUID, input CompleteInput) (*models.WorkoutSession, error) {
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, models.Invalid("rating", "must be between 1 and 5, got %d", *input.Rating)
	}
	now := e.now()
	s, err := e.mutate(ctx, ownerID, sessionID, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		t := now
		s.EndTime = &t
		s.Status = models.StatusCompleted
		s.Exercises = finishExercises(s.Exercises, now, true)
		s.Rating = input.Rating
		if input.Felt != "" {
			s.Felt = input.Felt
		}
		if input.Notes != "" {
			s.Notes = input.Notes
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("session completed",
		"session", sessionID,
		"owner", ownerID,
		"completion_rate", s.CompletionRate,
		"volume_kg", s.TotalVolumeKg,
	)
	return s, nil
}

// AbandonInput carries the optional note on abandonment.
type AbandonInput struct {
	Notes string `json:"notes,omitempty"`
}

// Abandon ends a running session without evaluating exercise completion.
func (e *Engine) Abandon(ctx context.Context, ownerID, sessionID uuid.UUID, input AbandonInput) (*models.WorkoutSession, error) {
	now := e.now()
	s, err := e.mutate(ctx, ownerID, sessionID, func(s models.WorkoutSession) (models.WorkoutSession, error) {
		t := now
		s.EndTime = &t
		s.Status = models.StatusAbandoned
		s.Exercises = finishExercises(s.Exercises, now, false)
		if input.Notes != "" {
			s.Notes = input.Notes
		}
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("session abandoned", "session", sessionID, "owner", ownerID)
	return s, nil
}

// Get returns one of the owner's sessions.
func (e *Engine) Get(ctx context.Context, ownerID, sessionID uuid.UUID) (*models.WorkoutSession, error) {
	return e.sessions.GetSession(ctx, ownerID, sessionID)
}

// mutate runs the read-apply-recompute-write cycle for an in-progress
// session, retrying on version conflicts up to maxWriteAttempts.
func (e *Engine) mutate(ctx context.Context, ownerID, sessionID uuid.UUID, apply func(models.WorkoutSession) (models.WorkoutSession, error)) (*models.WorkoutSession, error) {
	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		current, err := e.sessions.GetSession(ctx, ownerID, sessionID)
		if err != nil {
			return nil, err
		}
		if current.Status.Terminal() {
			return nil, models.ErrInvalidState
		}

		next, err := apply(*current)
		if err != nil {
			return nil, err
		}
		next = Recompute(next)

		stored, err := e.sessions.UpdateSession(ctx, next)
		if err == nil {
			return stored, nil
		}
		if !errors.Is(err, models.ErrConflict) {
			return nil, err
		}
		lastErr = err
		e.log.Warn("session write conflict, retrying",
			"session", sessionID, "attempt", attempt+1)
	}
	return nil, lastErr
}
