package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, owner_id, template_id, template_name, category, status,
	 start_time, end_time, rating, felt, notes, exercises,
	 duration_minutes, total_sets_planned, total_sets_completed, completion_rate,
	 total_volume_kg, version`

// InsertSession stores a new session document.
func (db *DB) InsertSession(ctx context.Context, s models.WorkoutSession) error {
	exercises, err := json.Marshal(s.Exercises)
	if err != nil {
		return fmt.Errorf("encoding exercises: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_sessions (`+sessionColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		s.ID, s.OwnerID, s.TemplateID, s.TemplateName, s.Category, s.Status,
		s.StartTime, s.EndTime, s.Rating, s.Felt, s.Notes, exercises,
		s.DurationMinutes, s.TotalSetsPlanned, s.TotalSetsCompleted, s.CompletionRate,
		s.TotalVolumeKg, s.Version)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSession retrieves one of the owner's sessions.
func (db *DB) GetSession(ctx context.Context, ownerID, sessionID uuid.UUID) (*models.WorkoutSession, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions WHERE id = $1 AND owner_id = $2`,
		sessionID, ownerID)
	s, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return s, nil
}

// UpdateSession writes the whole session document back, guarded by the
// version the caller read. A stale version gets models.ErrConflict so the
// caller can re-read and re-apply instead of silently dropping data.
func (db *DB) UpdateSession(ctx context.Context, s models.WorkoutSession) (*models.WorkoutSession, error) {
	exercises, err := json.Marshal(s.Exercises)
	if err != nil {
		return nil, fmt.Errorf("encoding exercises: %w", err)
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_sessions SET
			template_name = $3, category = $4, status = $5,
			start_time = $6, end_time = $7, rating = $8, felt = $9, notes = $10,
			exercises = $11, duration_minutes = $12, total_sets_planned = $13,
			total_sets_completed = $14, completion_rate = $15, total_volume_kg = $16,
			version = version + 1
		 WHERE id = $1 AND owner_id = $2 AND version = $17`,
		s.ID, s.OwnerID, s.TemplateName, s.Category, s.Status,
		s.StartTime, s.EndTime, s.Rating, s.Felt, s.Notes,
		exercises, s.DurationMinutes, s.TotalSetsPlanned,
		s.TotalSetsCompleted, s.CompletionRate, s.TotalVolumeKg,
		s.Version)
	if err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, models.ErrConflict
	}
	s.Version++
	return &s, nil
}

// SessionsInRange retrieves the owner's sessions with start_time in
// [start, end], ordered by start time ascending.
func (db *DB) SessionsInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions
		 WHERE owner_id = $1 AND start_time >= $2 AND start_time <= $3
		 ORDER BY start_time ASC`,
		ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

// AllSessions retrieves the owner's entire session history, oldest first.
func (db *DB) AllSessions(ctx context.Context, ownerID uuid.UUID) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM workout_sessions
		 WHERE owner_id = $1 ORDER BY start_time ASC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()
	return scanSessions(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.WorkoutSession, error) {
	var s models.WorkoutSession
	var exercises []byte
	err := row.Scan(&s.ID, &s.OwnerID, &s.TemplateID, &s.TemplateName, &s.Category, &s.Status,
		&s.StartTime, &s.EndTime, &s.Rating, &s.Felt, &s.Notes, &exercises,
		&s.DurationMinutes, &s.TotalSetsPlanned, &s.TotalSetsCompleted, &s.CompletionRate,
		&s.TotalVolumeKg, &s.Version)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(exercises, &s.Exercises); err != nil {
		return nil, fmt.Errorf("decoding exercises: %w", err)
	}
	return &s, nil
}

func scanSessions(rows pgx.Rows) ([]models.WorkoutSession, error) {
	var result []models.WorkoutSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}
