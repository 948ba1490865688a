package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const recordColumns = `id, owner_id, exercise_id, exercise_name, muscle_group, record_type,
	 value, weight_unit, set_weight_kg, set_date, source_session_id, notes, rep_range, is_active`

// ActiveRecord returns the active record for (owner, exercise, type), or
// nil when none exists yet.
func (db *DB) ActiveRecord(ctx context.Context, ownerID uuid.UUID, exerciseID string, recordType models.RecordType) (*models.PersonalRecord, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM personal_records
		 WHERE owner_id = $1 AND exercise_id = $2 AND record_type = $3 AND is_active`,
		ownerID, exerciseID, recordType)
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying active record: %w", err)
	}
	return r, nil
}

// ReplaceActive deactivates the superseded records and inserts their
// replacements in a single transaction. The partial unique index on
// (owner_id, exercise_id, record_type) WHERE is_active serializes
// concurrent writers: the loser fails instead of producing two actives.
func (db *DB) ReplaceActive(ctx context.Context, deactivate []uuid.UUID, insert []models.PersonalRecord) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning record tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if len(deactivate) > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE personal_records SET is_active = FALSE WHERE id = ANY($1)`,
			deactivate); err != nil {
			return fmt.Errorf("deactivating records: %w", err)
		}
	}

	for _, r := range insert {
		if _, err := tx.Exec(ctx,
			`INSERT INTO personal_records (`+recordColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
			r.ID, r.OwnerID, r.ExerciseID, r.ExerciseName, r.MuscleGroup, r.RecordType,
			r.Value, r.WeightUnit, r.SetWeightKg, r.SetDate, r.SourceSessionID,
			r.Notes, r.RepRange, r.IsActive); err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing record tx: %w", err)
	}
	return nil
}

// ListRecords retrieves the owner's records, optionally filtered to one
// exercise, newest first. History rows (inactive) are included.
func (db *DB) ListRecords(ctx context.Context, ownerID uuid.UUID, exerciseID string) ([]models.PersonalRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM personal_records WHERE owner_id = $1`
	args := []any{ownerID}
	if exerciseID != "" {
		query += ` AND exercise_id = $2`
		args = append(args, exerciseID)
	}
	query += ` ORDER BY set_date DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// RecordsInRange retrieves all records set within [start, end].
func (db *DB) RecordsInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]models.PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+recordColumns+` FROM personal_records
		 WHERE owner_id = $1 AND set_date >= $2 AND set_date <= $3
		 ORDER BY set_date DESC`,
		ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// BestActiveRecord returns the highest-value active record of one type
// across all of the owner's exercises, or nil when none exists.
func (db *DB) BestActiveRecord(ctx context.Context, ownerID uuid.UUID, recordType models.RecordType) (*models.PersonalRecord, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM personal_records
		 WHERE owner_id = $1 AND record_type = $2 AND is_active
		 ORDER BY value DESC LIMIT 1`,
		ownerID, recordType)
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying best record: %w", err)
	}
	return r, nil
}

func scanRecord(row rowScanner) (*models.PersonalRecord, error) {
	var r models.PersonalRecord
	err := row.Scan(&r.ID, &r.OwnerID, &r.ExerciseID, &r.ExerciseName, &r.MuscleGroup,
		&r.RecordType, &r.Value, &r.WeightUnit, &r.SetWeightKg, &r.SetDate,
		&r.SourceSessionID, &r.Notes, &r.RepRange, &r.IsActive)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func scanRecords(rows pgx.Rows) ([]models.PersonalRecord, error) {
	var result []models.PersonalRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		result = append(result, *r)
	}
	return result, rows.Err()
}
