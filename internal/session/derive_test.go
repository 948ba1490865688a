package session

import (
	"math"
	"testing"
	"time"

	"github.com/claude/ironlog/internal/models"
)

// TestRecomputeDerivedFields verifies set counts, completion rate, and kg
// volume across a mixed-unit session.
func TestRecomputeDerivedFields(t *testing.T) {
	s := models.WorkoutSession{
		StartTime: time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC),
		Exercises: []models.SessionExercise{
			{
				ExerciseID: "barbell-bench-press",
				TargetSets: 3,
				CompletedSets: []models.CompletedSet{
					{SetNumber: 1, Reps: 10, Weight: 100, WeightUnit: models.UnitKg},
					{SetNumber: 2, Reps: 8, Weight: 220.462, WeightUnit: models.UnitLbs},
				},
			},
			{
				ExerciseID: "back-squat",
				TargetSets: 3,
				CompletedSets: []models.CompletedSet{
					{SetNumber: 1, Reps: 5, Weight: 140, WeightUnit: models.UnitKg},
				},
			},
		},
	}

	got := Recompute(s)

	if got.TotalSetsPlanned != 6 {
		t.Errorf("TotalSetsPlanned = %d, want 6", got.TotalSetsPlanned)
	}
	if got.TotalSetsCompleted != 3 {
		t.Errorf("TotalSetsCompleted = %d, want 3", got.TotalSetsCompleted)
	}
	if got.CompletionRate != 50 {
		t.Errorf("CompletionRate = %d, want 50", got.CompletionRate)
	}
	// 10*100 + 8*100 (220.462 lbs is 100 kg) + 5*140 = 2500.
	if math.Abs(got.TotalVolumeKg-2500) > 0.001 {
		t.Errorf("TotalVolumeKg = %f, want 2500", got.TotalVolumeKg)
	}
	if got.DurationMinutes != 0 {
		t.Errorf("DurationMinutes = %d, want 0 for open session", got.DurationMinutes)
	}
}

// TestRecomputeDuration verifies duration is rounded minutes between start
// and end.
func TestRecomputeDuration(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	end := start.Add(45*time.Minute + 40*time.Second)
	s := models.WorkoutSession{StartTime: start, EndTime: &end}

	if got := Recompute(s).DurationMinutes; got != 46 {
		t.Errorf("DurationMinutes = %d, want 46", got)
	}
}

// TestRecomputeNoPlannedSets verifies a session with no exercises reports a
// zero completion rate instead of dividing by zero.
func TestRecomputeNoPlannedSets(t *testing.T) {
	s := Recompute(models.WorkoutSession{StartTime: time.Now()})
	if s.CompletionRate != 0 {
		t.Errorf("CompletionRate = %d, want 0", s.CompletionRate)
	}
}

// TestRecomputeSkipsBadUnit verifies a legacy set with an unknown unit is
// excluded from volume but still counted as a completed set.
func TestRecomputeSkipsBadUnit(t *testing.T) {
	s := models.WorkoutSession{
		StartTime: time.Now(),
		Exercises: []models.SessionExercise{{
			ExerciseID: "deadlift",
			TargetSets: 2,
			CompletedSets: []models.CompletedSet{
				{SetNumber: 1, Reps: 5, Weight: 100, WeightUnit: models.UnitKg},
				{SetNumber: 2, Reps: 5, Weight: 100, WeightUnit: "stone"},
			},
		}},
	}

	got := Recompute(s)
	if got.TotalVolumeKg != 500 {
		t.Errorf("TotalVolumeKg = %f, want 500", got.TotalVolumeKg)
	}
	if got.TotalSetsCompleted != 2 {
		t.Errorf("TotalSetsCompleted = %d, want 2", got.TotalSetsCompleted)
	}
}

// TestUpsertSetOverwrite verifies re-logging a set number replaces the
// previous entry in place.
func TestUpsertSetOverwrite(t *testing.T) {
	sets := []models.CompletedSet{
		{SetNumber: 1, Reps: 10, Weight: 60, WeightUnit: models.UnitKg},
		{SetNumber: 2, Reps: 8, Weight: 70, WeightUnit: models.UnitKg},
	}

	out := upsertSet(sets, models.CompletedSet{SetNumber: 2, Reps: 9, Weight: 72.5, WeightUnit: models.UnitKg})

	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[1].Reps != 9 || out[1].Weight != 72.5 {
		t.Errorf("set 2 = %+v, want reps 9 weight 72.5", out[1])
	}
	// Input slice untouched.
	if sets[1].Reps != 8 {
		t.Errorf("original slice mutated: %+v", sets[1])
	}
}

// TestUpsertSetOrdering verifies out-of-order inserts end up sorted by set
// number.
func TestUpsertSetOrdering(t *testing.T) {
	var sets []models.CompletedSet
	for _, n := range []int{3, 1, 2} {
		sets = upsertSet(sets, models.CompletedSet{SetNumber: n})
	}
	for i, want := range []int{1, 2, 3} {
		if sets[i].SetNumber != want {
			t.Errorf("sets[%d].SetNumber = %d, want %d", i, sets[i].SetNumber, want)
		}
	}
}

// TestFinishExercisesEvaluate verifies completion evaluation: an exercise
// with zero sets is never completed, one at or over target is.
func TestFinishExercisesEvaluate(t *testing.T) {
	now := time.Now()
	exercises := []models.SessionExercise{
		{ExerciseID: "a", TargetSets: 3, CompletedSets: make([]models.CompletedSet, 3)},
		{ExerciseID: "b", TargetSets: 3, CompletedSets: make([]models.CompletedSet, 2)},
		{ExerciseID: "c", TargetSets: 3},
	}

	out := finishExercises(exercises, now, true)

	if !out[0].ExerciseCompleted {
		t.Error("exercise a: completed = false, want true")
	}
	if out[1].ExerciseCompleted {
		t.Error("exercise b: completed = true, want false")
	}
	if out[2].ExerciseCompleted {
		t.Error("exercise c: completed = true, want false")
	}
	if out[0].EndTime == nil || out[1].EndTime == nil {
		t.Error("exercises with sets should get an end time")
	}
	if out[2].EndTime != nil {
		t.Error("exercise without sets should not get an end time")
	}
}

// TestFinishExercisesAbandon verifies that without evaluation the completed
// flag is left alone.
func TestFinishExercisesAbandon(t *testing.T) {
	exercises := []models.SessionExercise{
		{ExerciseID: "a", TargetSets: 1, CompletedSets: make([]models.CompletedSet, 1)},
	}
	out := finishExercises(exercises, time.Now(), false)
	if out[0].ExerciseCompleted {
		t.Error("completed = true, want false when not evaluating")
	}
}
