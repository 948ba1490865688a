package session

import (
	"math"
	"sort"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/units"
)

// Recompute returns s with every derived field recalculated from the full
// exercise/set list. Derivation is always from scratch, never incremental,
// so repeated saves of the same document are idempotent.
func Recompute(s models.WorkoutSession) models.WorkoutSession {
	s.DurationMinutes = 0
	if s.EndTime != nil {
		s.DurationMinutes = int(math.Round(s.EndTime.Sub(s.StartTime).Minutes()))
	}

	planned, completed := 0, 0
	volume := 0.0
	for _, ex := range s.Exercises {
		planned += ex.TargetSets
		completed += len(ex.CompletedSets)
		for _, cs := range ex.CompletedSets {
			kg, err := units.ToKg(cs.Weight, cs.WeightUnit)
			if err != nil {
				// Units are validated at log time; skip anything legacy.
				continue
			}
			volume += float64(cs.Reps) * kg
		}
	}

	s.TotalSetsPlanned = planned
	s.TotalSetsCompleted = completed
	s.CompletionRate = 0
	if planned > 0 {
		s.CompletionRate = int(math.Round(100 * float64(completed) / float64(planned)))
	}
	s.TotalVolumeKg = volume
	return s
}

// upsertSet inserts or overwrites the set with cs.SetNumber, keeping the
// list ordered by set number. Last write wins for a given set number.
func upsertSet(sets []models.CompletedSet, cs models.CompletedSet) []models.CompletedSet {
	for i := range sets {
		if sets[i].SetNumber == cs.SetNumber {
			out := make([]models.CompletedSet, len(sets))
			copy(out, sets)
			out[i] = cs
			return out
		}
	}
	out := make([]models.CompletedSet, len(sets), len(sets)+1)
	copy(out, sets)
	out = append(out, cs)
	sort.Slice(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out
}

// finishExercises applies completion bookkeeping at session end. When
// evaluate is true each exercise is marked completed when it reached its
// target set count; an exercise with zero logged sets is always incomplete.
// Exercises with at least one set and no end time get one stamped.
func finishExercises(exercises []models.SessionExercise, now time.Time, evaluate bool) []models.SessionExercise {
	out := make([]models.SessionExercise, len(exercises))
	copy(out, exercises)
	for i := range out {
		done := len(out[i].CompletedSets)
		if evaluate {
			out[i].ExerciseCompleted = done > 0 && done >= out[i].TargetSets
		}
		if done > 0 && out[i].EndTime == nil {
			t := now
			out[i].EndTime = &t
		}
	}
	return out
}
