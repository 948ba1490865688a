package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/ironlog/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const templateColumns = `id, owner_id, name, category, exercises, total_uses, last_used_at, created_at`

// InsertTemplate stores a new workout template.
func (db *DB) InsertTemplate(ctx context.Context, t models.WorkoutTemplate) error {
	exercises, err := json.Marshal(t.Exercises)
	if err != nil {
		return fmt.Errorf("encoding exercises: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_templates (`+templateColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.OwnerID, t.Name, t.Category, exercises, t.TotalUses, t.LastUsedAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

// GetTemplate retrieves one of the owner's templates.
func (db *DB) GetTemplate(ctx context.Context, ownerID, templateID uuid.UUID) (*models.WorkoutTemplate, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM workout_templates WHERE id = $1 AND owner_id = $2`,
		templateID, ownerID)
	t, err := scanTemplate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying template: %w", err)
	}
	return t, nil
}

// ListTemplates retrieves the owner's templates, most recently used first.
func (db *DB) ListTemplates(ctx context.Context, ownerID uuid.UUID) ([]models.WorkoutTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+templateColumns+` FROM workout_templates
		 WHERE owner_id = $1
		 ORDER BY last_used_at DESC NULLS LAST, created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

// MarkTemplateUsed bumps the usage counter and last-used timestamp.
func (db *DB) MarkTemplateUsed(ctx context.Context, ownerID, templateID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_templates SET total_uses = total_uses + 1, last_used_at = NOW()
		 WHERE id = $1 AND owner_id = $2`,
		templateID, ownerID)
	if err != nil {
		return fmt.Errorf("marking template used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DeleteTemplate removes a template unless any session still references it.
func (db *DB) DeleteTemplate(ctx context.Context, ownerID, templateID uuid.UUID) error {
	var referenced bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM workout_sessions WHERE template_id = $1 AND owner_id = $2)`,
		templateID, ownerID).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("checking template references: %w", err)
	}
	if referenced {
		return fmt.Errorf("template referenced by sessions: %w", models.ErrConflict)
	}

	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_templates WHERE id = $1 AND owner_id = $2`,
		templateID, ownerID)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func scanTemplate(row rowScanner) (*models.WorkoutTemplate, error) {
	var t models.WorkoutTemplate
	var exercises []byte
	err := row.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Category, &exercises,
		&t.TotalUses, &t.LastUsedAt, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(exercises, &t.Exercises); err != nil {
		return nil, fmt.Errorf("decoding exercises: %w", err)
	}
	return &t, nil
}
