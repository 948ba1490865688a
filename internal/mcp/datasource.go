package mcp

import (
	"context"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/stats"
	"github.com/claude/ironlog/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools, combining raw storage
// reads with the stats engine.
type DataSource interface {
	GetPeriodStats(ctx context.Context, ownerID uuid.UUID, period stats.Period, referenceDate time.Time) (*stats.UserPeriodStats, error)
	GetAllTimeStats(ctx context.Context, ownerID uuid.UUID) (*stats.AllTimeStats, error)
	ListRecords(ctx context.Context, ownerID uuid.UUID, exerciseID string) ([]models.PersonalRecord, error)
	SessionsInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]models.WorkoutSession, error)
}

// Local serves MCP tools straight from the database and stats engine.
type Local struct {
	DB    *storage.DB
	Stats *stats.Aggregator
}

// Compile-time check: *Local satisfies DataSource.
var _ DataSource = (*Local)(nil)

func (l *Local) GetPeriodStats(ctx context.Context, ownerID uuid.UUID, period stats.Period, referenceDate time.Time) (*stats.UserPeriodStats, error) {
	return l.Stats.GetPeriodStats(ctx, ownerID, period, referenceDate)
}

func (l *Local) GetAllTimeStats(ctx context.Context, ownerID uuid.UUID) (*stats.AllTimeStats, error) {
	return l.Stats.GetAllTimeStats(ctx, ownerID)
}

func (l *Local) ListRecords(ctx context.Context, ownerID uuid.UUID, exerciseID string) ([]models.PersonalRecord, error) {
	return l.DB.ListRecords(ctx, ownerID, exerciseID)
}

func (l *Local) SessionsInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]models.WorkoutSession, error) {
	return l.DB.SessionsInRange(ctx, ownerID, start, end)
}
