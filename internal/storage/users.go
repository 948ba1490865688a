package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetOrCreateUser finds or creates a user by login name. Returns the user
// ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (id, login, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($3, ''), users.display_name)
		RETURNING id
	`, uuid.New(), login, displayName).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upserting user: %w", err)
	}
	return id, nil
}
