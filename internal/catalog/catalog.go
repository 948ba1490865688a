// Package catalog holds read-only exercise metadata. It is injected into
// whichever component needs exercise lookups rather than being a hidden
// global inside business logic.
package catalog

// Exercise is one catalog entry.
type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group"`
	Equipment   string `json:"equipment"`
}

// Catalog maps exercise IDs to metadata.
type Catalog struct {
	byID map[string]Exercise
}

// New builds a catalog from the given entries. Later duplicates win.
func New(exercises []Exercise) *Catalog {
	byID := make(map[string]Exercise, len(exercises))
	for _, e := range exercises {
		byID[e.ID] = e
	}
	return &Catalog{byID: byID}
}

// Lookup returns the entry for id, if present.
func (c *Catalog) Lookup(id string) (Exercise, bool) {
	e, ok := c.byID[id]
	return e, ok
}

// MuscleGroup returns the muscle group for id, or fallback when unknown.
func (c *Catalog) MuscleGroup(id, fallback string) string {
	if e, ok := c.byID[id]; ok && e.MuscleGroup != "" {
		return e.MuscleGroup
	}
	return fallback
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.byID) }

// Default returns the built-in exercise catalog.
func Default() *Catalog {
	return New(defaultExercises)
}

var defaultExercises = []Exercise{
	{ID: "barbell-bench-press", Name: "Barbell Bench Press", MuscleGroup: "chest", Equipment: "barbell"},
	{ID: "incline-dumbbell-press", Name: "Incline Dumbbell Press", MuscleGroup: "chest", Equipment: "dumbbell"},
	{ID: "cable-fly", Name: "Cable Fly", MuscleGroup: "chest", Equipment: "cable"},
	{ID: "overhead-press", Name: "Overhead Press", MuscleGroup: "shoulders", Equipment: "barbell"},
	{ID: "lateral-raise", Name: "Lateral Raise", MuscleGroup: "shoulders", Equipment: "dumbbell"},
	{ID: "barbell-row", Name: "Barbell Row", MuscleGroup: "back", Equipment: "barbell"},
	{ID: "pull-up", Name: "Pull-Up", MuscleGroup: "back", Equipment: "bodyweight"},
	{ID: "lat-pulldown", Name: "Lat Pulldown", MuscleGroup: "back", Equipment: "cable"},
	{ID: "seated-cable-row", Name: "Seated Cable Row", MuscleGroup: "back", Equipment: "cable"},
	{ID: "barbell-curl", Name: "Barbell Curl", MuscleGroup: "biceps", Equipment: "barbell"},
	{ID: "hammer-curl", Name: "Hammer Curl", MuscleGroup: "biceps", Equipment: "dumbbell"},
	{ID: "triceps-pushdown", Name: "Triceps Pushdown", MuscleGroup: "triceps", Equipment: "cable"},
	{ID: "skull-crusher", Name: "Skull Crusher", MuscleGroup: "triceps", Equipment: "barbell"},
	{ID: "back-squat", Name: "Back Squat", MuscleGroup: "quads", Equipment: "barbell"},
	{ID: "front-squat", Name: "Front Squat", MuscleGroup: "quads", Equipment: "barbell"},
	{ID: "leg-press", Name: "Leg Press", MuscleGroup: "quads", Equipment: "machine"},
	{ID: "leg-extension", Name: "Leg Extension", MuscleGroup: "quads", Equipment: "machine"},
	{ID: "deadlift", Name: "Deadlift", MuscleGroup: "back", Equipment: "barbell"},
	{ID: "romanian-deadlift", Name: "Romanian Deadlift", MuscleGroup: "hamstrings", Equipment: "barbell"},
	{ID: "leg-curl", Name: "Leg Curl", MuscleGroup: "hamstrings", Equipment: "machine"},
	{ID: "hip-thrust", Name: "Hip Thrust", MuscleGroup: "glutes", Equipment: "barbell"},
	{ID: "calf-raise", Name: "Calf Raise", MuscleGroup: "calves", Equipment: "machine"},
	{ID: "plank", Name: "Plank", MuscleGroup: "core", Equipment: "bodyweight"},
	{ID: "hanging-leg-raise", Name: "Hanging Leg Raise", MuscleGroup: "core", Equipment: "bodyweight"},
	{ID: "cable-crunch", Name: "Cable Crunch", MuscleGroup: "core", Equipment: "cable"},
}
