// Package stats computes period-bounded and all-time training statistics
// from the session history. Aggregation is read-only and side-effect free;
// a malformed legacy session is skipped and logged rather than aborting
// the whole computation.
package stats

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/units"
	"github.com/google/uuid"
)

const (
	// topExercisesPeriod is the default top-exercise list length.
	topExercisesPeriod = 5
	// topExercisesAllTime is the shorter list used in all-time summaries.
	topExercisesAllTime = 3
	// streakAchievementDays is the streak length that earns an achievement.
	streakAchievementDays = 7
)

// SessionSource provides session history reads.
type SessionSource interface {
	SessionsInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]models.WorkoutSession, error)
	AllSessions(ctx context.Context, ownerID uuid.UUID) ([]models.WorkoutSession, error)
}

// RecordSource provides personal-record reads.
type RecordSource interface {
	RecordsInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]models.PersonalRecord, error)
	BestActiveRecord(ctx context.Context, ownerID uuid.UUID, recordType models.RecordType) (*models.PersonalRecord, error)
}

// Logger is the subset of slog used by the aggregator.
type Logger interface {
	Warn(msg string, args ...any)
}

// MuscleGroupStats is the per-muscle-group slice of a period.
type MuscleGroupStats struct {
	MuscleGroup     string  `json:"muscle_group"`
	TotalVolumeKg   float64 `json:"total_volume_kg"`
	TotalSets       int     `json:"total_sets"`
	TotalReps       int     `json:"total_reps"`
	Sessions        int     `json:"sessions"`
	AverageWeightKg float64 `json:"average_weight_kg"`
}

// ExerciseStats is one entry of the top-exercises list.
type ExerciseStats struct {
	ExerciseID    string  `json:"exercise_id"`
	ExerciseName  string  `json:"exercise_name"`
	TotalVolumeKg float64 `json:"total_volume_kg"`
	TotalSets     int     `json:"total_sets"`
	SessionCount  int     `json:"session_count"`
	BestWeightKg  float64 `json:"best_weight_kg"`
	BestReps      int     `json:"best_reps"`
}

// TrendDirection labels a metric's movement against the prior period.
type TrendDirection string

const (
	TrendUp      TrendDirection = "up"
	TrendDown    TrendDirection = "down"
	TrendNeutral TrendDirection = "neutral"
)

// Trend compares one metric between the current and previous period.
type Trend struct {
	Current       float64        `json:"current"`
	Previous      float64        `json:"previous"`
	PercentChange float64        `json:"percent_change"`
	Direction     TrendDirection `json:"direction"`
}

// Trends holds the per-metric comparisons against the prior period.
type Trends struct {
	Workouts          Trend `json:"workouts"`
	CompletedWorkouts Trend `json:"completed_workouts"`
	DurationMinutes   Trend `json:"duration_minutes"`
	VolumeKg          Trend `json:"volume_kg"`
	CompletionRate    Trend `json:"completion_rate"`
}

// Achievement is a notable event within a period: a new PR or a streak.
type Achievement struct {
	Type         string            `json:"type"`
	Title        string            `json:"title"`
	Date         time.Time         `json:"date"`
	ExerciseName string            `json:"exercise_name,omitempty"`
	RecordType   models.RecordType `json:"record_type,omitempty"`
	Value        float64           `json:"value,omitempty"`
}

// UserPeriodStats is the full statistics bundle for one calendar period.
// It is computed on demand and never persisted.
type UserPeriodStats struct {
	Period                  Period             `json:"period"`
	StartDate               time.Time          `json:"start_date"`
	EndDate                 time.Time          `json:"end_date"`
	TotalWorkouts           int                `json:"total_workouts"`
	CompletedWorkouts       int                `json:"completed_workouts"`
	TotalDurationMinutes    int                `json:"total_duration_minutes"`
	TotalVolumeKg           float64            `json:"total_volume_kg"`
	AverageCompletionRate   int                `json:"average_completion_rate"`
	WorkoutFrequencyPerWeek float64            `json:"workout_frequency_per_week"`
	MuscleGroupBreakdown    []MuscleGroupStats `json:"muscle_group_breakdown"`
	Trends                  Trends             `json:"trends"`
	TopExercises            []ExerciseStats    `json:"top_exercises"`
	CurrentStreak           int                `json:"current_streak"`
	RecentAchievements      []Achievement      `json:"recent_achievements"`
}

// PersonalBests is the single best active record of each produced type.
type PersonalBests struct {
	HeaviestLift  *models.PersonalRecord `json:"heaviest_lift,omitempty"`
	HighestVolume *models.PersonalRecord `json:"highest_volume,omitempty"`
	MostReps      *models.PersonalRecord `json:"most_reps,omitempty"`
}

// AllTimeStats aggregates the unbounded session history.
type AllTimeStats struct {
	TotalWorkouts           int                `json:"total_workouts"`
	CompletedWorkouts       int                `json:"completed_workouts"`
	TotalDurationMinutes    int                `json:"total_duration_minutes"`
	TotalVolumeKg           float64            `json:"total_volume_kg"`
	AverageCompletionRate   int                `json:"average_completion_rate"`
	WorkoutFrequencyPerWeek float64            `json:"workout_frequency_per_week"`
	MuscleGroupBreakdown    []MuscleGroupStats `json:"muscle_group_breakdown"`
	TopExercises            []ExerciseStats    `json:"top_exercises"`
	PersonalBests           PersonalBests      `json:"personal_bests"`
	CurrentStreak           int                `json:"current_streak"`
	TrainingSince           *time.Time         `json:"training_since,omitempty"`
}

// Aggregator computes statistics over stored sessions and records.
type Aggregator struct {
	sessions SessionSource
	records  RecordSource
	log      Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(sessions SessionSource, records RecordSource, log Logger) *Aggregator {
	return &Aggregator{sessions: sessions, records: records, log: log}
}

// GetPeriodStats computes the statistics bundle for the period containing
// referenceDate.
func (a *Aggregator) GetPeriodStats(ctx context.Context, ownerID uuid.UUID, period Period, referenceDate time.Time) (*UserPeriodStats, error) {
	start, end, err := PeriodRange(period, referenceDate)
	if err != nil {
		return nil, err
	}

	current, err := a.sessions.SessionsInRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	current = a.usable(current)

	prevStart, prevEnd := previousRange(start, end)
	previous, err := a.sessions.SessionsInRange(ctx, ownerID, prevStart, prevEnd)
	if err != nil {
		return nil, fmt.Errorf("loading previous sessions: %w", err)
	}
	previous = a.usable(previous)

	cur := aggregate(current, end)
	prev := aggregate(previous, prevEnd)
	streak := currentStreak(current)

	achievements, err := a.achievements(ctx, ownerID, start, end, streak)
	if err != nil {
		return nil, err
	}

	return &UserPeriodStats{
		Period:                  period,
		StartDate:               start,
		EndDate:                 end,
		TotalWorkouts:           cur.totalWorkouts,
		CompletedWorkouts:       cur.completedWorkouts,
		TotalDurationMinutes:    cur.totalDurationMinutes,
		TotalVolumeKg:           cur.totalVolumeKg,
		AverageCompletionRate:   cur.averageCompletionRate,
		WorkoutFrequencyPerWeek: cur.frequencyPerWeek,
		MuscleGroupBreakdown:    a.muscleGroupBreakdown(current),
		Trends:                  trends(cur, prev),
		TopExercises:            a.topExercises(current, topExercisesPeriod),
		CurrentStreak:           streak,
		RecentAchievements:      achievements,
	}, nil
}

// GetAllTimeStats computes the same aggregates over the unbounded history
// plus the single best active record of each produced type.
func (a *Aggregator) GetAllTimeStats(ctx context.Context, ownerID uuid.UUID) (*AllTimeStats, error) {
	sessions, err := a.sessions.AllSessions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	sessions = a.usable(sessions)

	now := time.Now()
	agg := aggregate(sessions, now)

	stats := &AllTimeStats{
		TotalWorkouts:           agg.totalWorkouts,
		CompletedWorkouts:       agg.completedWorkouts,
		TotalDurationMinutes:    agg.totalDurationMinutes,
		TotalVolumeKg:           agg.totalVolumeKg,
		AverageCompletionRate:   agg.averageCompletionRate,
		WorkoutFrequencyPerWeek: agg.frequencyPerWeek,
		MuscleGroupBreakdown:    a.muscleGroupBreakdown(sessions),
		TopExercises:            a.topExercises(sessions, topExercisesAllTime),
		CurrentStreak:           currentStreak(sessions),
	}

	for _, s := range sessions {
		if stats.TrainingSince == nil || s.StartTime.Before(*stats.TrainingSince) {
			t := s.StartTime
			stats.TrainingSince = &t
		}
	}

	bests := []struct {
		recordType models.RecordType
		dst        **models.PersonalRecord
	}{
		{models.RecordWeight, &stats.PersonalBests.HeaviestLift},
		{models.RecordVolume, &stats.PersonalBests.HighestVolume},
		{models.RecordReps, &stats.PersonalBests.MostReps},
	}
	for _, b := range bests {
		rec, err := a.records.BestActiveRecord(ctx, ownerID, b.recordType)
		if err != nil {
			return nil, fmt.Errorf("loading best %s record: %w", b.recordType, err)
		}
		*b.dst = rec
	}

	return stats, nil
}

// usable filters out sessions too malformed to aggregate, logging each one.
// Aggregation never aborts on a single bad legacy row.
func (a *Aggregator) usable(sessions []models.WorkoutSession) []models.WorkoutSession {
	out := sessions[:0:0]
	for _, s := range sessions {
		if s.StartTime.IsZero() || s.Status == "" {
			a.log.Warn("skipping malformed session in aggregation", "session", s.ID)
			continue
		}
		out = append(out, s)
	}
	return out
}

// aggregated holds the scalar aggregates shared by period and all-time
// views and reused for the trend comparison window.
type aggregated struct {
	totalWorkouts         int
	completedWorkouts     int
	totalDurationMinutes  int
	totalVolumeKg         float64
	averageCompletionRate int
	frequencyPerWeek      float64
}

func aggregate(sessions []models.WorkoutSession, rangeEnd time.Time) aggregated {
	var agg aggregated
	rateSum := 0
	var earliestCompleted *time.Time

	for _, s := range sessions {
		agg.totalWorkouts++
		agg.totalDurationMinutes += s.DurationMinutes
		agg.totalVolumeKg += s.TotalVolumeKg
		rateSum += s.CompletionRate
		if s.Status == models.StatusCompleted {
			agg.completedWorkouts++
			if earliestCompleted == nil || s.StartTime.Before(*earliestCompleted) {
				t := s.StartTime
				earliestCompleted = &t
			}
		}
	}

	if agg.totalWorkouts > 0 {
		agg.averageCompletionRate = int(math.Round(float64(rateSum) / float64(agg.totalWorkouts)))
	}
	if earliestCompleted != nil {
		weeks := int(math.Ceil(rangeEnd.Sub(*earliestCompleted).Hours() / (24 * 7)))
		if weeks < 1 {
			weeks = 1
		}
		agg.frequencyPerWeek = float64(agg.completedWorkouts) / float64(weeks)
	}
	return agg
}

// muscleGroupBreakdown groups completed sets by muscle group. A session
// counts once per group even when several of its exercises share one.
func (a *Aggregator) muscleGroupBreakdown(sessions []models.WorkoutSession) []MuscleGroupStats {
	type acc struct {
		MuscleGroupStats
		seen map[uuid.UUID]bool
	}
	groups := make(map[string]*acc)

	for _, s := range sessions {
		for _, ex := range s.Exercises {
			if len(ex.CompletedSets) == 0 {
				continue
			}
			group := ex.MuscleGroup
			if group == "" {
				group = "other"
			}
			g, ok := groups[group]
			if !ok {
				g = &acc{MuscleGroupStats: MuscleGroupStats{MuscleGroup: group}, seen: make(map[uuid.UUID]bool)}
				groups[group] = g
			}
			for _, cs := range ex.CompletedSets {
				kg, err := units.ToKg(cs.Weight, cs.WeightUnit)
				if err != nil {
					a.log.Warn("skipping set with bad unit in aggregation",
						"session", s.ID, "exercise", ex.ExerciseID, "unit", cs.WeightUnit)
					continue
				}
				g.TotalSets++
				g.TotalReps += cs.Reps
				g.TotalVolumeKg += float64(cs.Reps) * kg
			}
			if !g.seen[s.ID] {
				g.seen[s.ID] = true
				g.Sessions++
			}
		}
	}

	out := make([]MuscleGroupStats, 0, len(groups))
	for _, g := range groups {
		if g.TotalReps > 0 {
			g.AverageWeightKg = g.TotalVolumeKg / float64(g.TotalReps)
		}
		out = append(out, g.MuscleGroupStats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalVolumeKg > out[j].TotalVolumeKg })
	return out
}

// topExercises ranks exercises by total volume across the session set.
func (a *Aggregator) topExercises(sessions []models.WorkoutSession, limit int) []ExerciseStats {
	type acc struct {
		ExerciseStats
		seen map[uuid.UUID]bool
	}
	exercises := make(map[string]*acc)

	for _, s := range sessions {
		for _, ex := range s.Exercises {
			if len(ex.CompletedSets) == 0 {
				continue
			}
			e, ok := exercises[ex.ExerciseID]
			if !ok {
				e = &acc{
					ExerciseStats: ExerciseStats{ExerciseID: ex.ExerciseID, ExerciseName: ex.ExerciseName},
					seen:          make(map[uuid.UUID]bool),
				}
				exercises[ex.ExerciseID] = e
			}
			for _, cs := range ex.CompletedSets {
				kg, err := units.ToKg(cs.Weight, cs.WeightUnit)
				if err != nil {
					continue
				}
				e.TotalSets++
				e.TotalVolumeKg += float64(cs.Reps) * kg
				if kg > e.BestWeightKg {
					e.BestWeightKg = kg
				}
				if cs.Reps > e.BestReps {
					e.BestReps = cs.Reps
				}
			}
			if !e.seen[s.ID] {
				e.seen[s.ID] = true
				e.SessionCount++
			}
		}
	}

	out := make([]ExerciseStats, 0, len(exercises))
	for _, e := range exercises {
		out = append(out, e.ExerciseStats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalVolumeKg > out[j].TotalVolumeKg })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// trends compares the current aggregates against the previous window.
func trends(cur, prev aggregated) Trends {
	return Trends{
		Workouts:          trend(float64(cur.totalWorkouts), float64(prev.totalWorkouts)),
		CompletedWorkouts: trend(float64(cur.completedWorkouts), float64(prev.completedWorkouts)),
		DurationMinutes:   trend(float64(cur.totalDurationMinutes), float64(prev.totalDurationMinutes)),
		VolumeKg:          trend(cur.totalVolumeKg, prev.totalVolumeKg),
		CompletionRate:    trend(float64(cur.averageCompletionRate), float64(prev.averageCompletionRate)),
	}
}

func trend(current, previous float64) Trend {
	t := Trend{Current: current, Previous: previous, Direction: TrendNeutral}
	switch {
	case previous == 0 && current > 0:
		t.PercentChange = 100
	case previous != 0:
		t.PercentChange = math.Round(100*(current-previous)/previous*10) / 10
	}
	if t.PercentChange > 0 {
		t.Direction = TrendUp
	} else if t.PercentChange < 0 {
		t.Direction = TrendDown
	}
	return t
}

// currentStreak walks completed sessions in start-time order, counting
// consecutive calendar days. Same-day repeats do not affect the running
// streak; any gap longer than one day resets it.
func currentStreak(sessions []models.WorkoutSession) int {
	var days []time.Time
	for _, s := range sessions {
		if s.Status != models.StatusCompleted {
			continue
		}
		days = append(days, truncateDay(s.StartTime))
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	streak := 1
	for i := 1; i < len(days); i++ {
		gap := int(days[i].Sub(days[i-1]).Hours() / 24)
		switch {
		case gap == 0:
			// Same day, streak unchanged.
		case gap == 1:
			streak++
		default:
			streak = 1
		}
	}
	return streak
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// achievements lists PRs set within the range plus a streak achievement
// when the running streak has reached a week, newest first.
func (a *Aggregator) achievements(ctx context.Context, ownerID uuid.UUID, start, end time.Time, streak int) ([]Achievement, error) {
	recs, err := a.records.RecordsInRange(ctx, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	out := make([]Achievement, 0, len(recs)+1)
	for _, r := range recs {
		out = append(out, Achievement{
			Type:         "personal_record",
			Title:        fmt.Sprintf("New %s PR: %s", r.RecordType, r.ExerciseName),
			Date:         r.SetDate,
			ExerciseName: r.ExerciseName,
			RecordType:   r.RecordType,
			Value:        r.Value,
		})
	}
	if streak >= streakAchievementDays {
		out = append(out, Achievement{
			Type:  "streak",
			Title: fmt.Sprintf("%d-day workout streak", streak),
			Date:  end,
			Value: float64(streak),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}
