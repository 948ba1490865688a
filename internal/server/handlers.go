package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/session"
	"github.com/claude/ironlog/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := OwnerIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "missing user identity"})
	}
	return id, ok
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id", Field: "id"})
		return uuid.Nil, false
	}
	return id, true
}

// --- Sessions ---

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	var input session.StartInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	sess, err := s.engine.StartSession(r.Context(), ownerID, input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	sessions, err := s.store.SessionsInRange(r.Context(), ownerID, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := s.engine.Get(r.Context(), ownerID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// logSetResponse pairs the updated session with any records the set took.
type logSetResponse struct {
	Session *models.WorkoutSession  `json:"session"`
	NewPRs  []models.PersonalRecord `json:"new_prs"`
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var input session.LogSetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	sess, prs, err := s.engine.LogSet(r.Context(), ownerID, id, input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if prs == nil {
		prs = []models.PersonalRecord{}
	}
	writeJSON(w, http.StatusOK, logSetResponse{Session: sess, NewPRs: prs})
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var input session.ExerciseInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}

	sess, err := s.engine.AddExercise(r.Context(), ownerID, id, input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var input session.CompleteInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
			return
		}
	}

	sess, err := s.engine.Complete(r.Context(), ownerID, id, input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var input session.AbandonInput
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
			return
		}
	}

	sess, err := s.engine.Abandon(r.Context(), ownerID, id, input)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// --- Stats ---

func (s *Server) handlePeriodStats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	period := stats.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = stats.PeriodWeek
	}

	ref := time.Now()
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		var err error
		ref, err = time.Parse("2006-01-02", dateStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid date, want YYYY-MM-DD", Field: "date"})
			return
		}
	}

	result, err := s.stats.GetPeriodStats(r.Context(), ownerID, period, ref)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAllTimeStats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	result, err := s.stats.GetAllTimeStats(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	records, err := s.store.ListRecords(r.Context(), ownerID, r.URL.Query().Get("exercise_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if records == nil {
		records = []models.PersonalRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// --- Templates ---

type createTemplateRequest struct {
	Name      string                    `json:"name"`
	Category  models.Category           `json:"category"`
	Exercises []models.TemplateExercise `json:"exercises"`
}

func (req createTemplateRequest) validate() error {
	if req.Name == "" {
		return models.Invalid("name", "required")
	}
	if !models.ValidCategory(req.Category) {
		return models.Invalid("category", "unknown category %q", req.Category)
	}
	for _, ex := range req.Exercises {
		if ex.ExerciseID == "" {
			return models.Invalid("exercises.exercise_id", "required")
		}
		if ex.TargetSets < 1 {
			return models.Invalid("exercises.target_sets", "must be >= 1")
		}
		if ex.TargetWeightKg < 0 {
			return models.Invalid("exercises.target_weight_kg", "must not be negative")
		}
	}
	return nil
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON: " + err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, err)
		return
	}

	tpl := models.WorkoutTemplate{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      req.Name,
		Category:  req.Category,
		Exercises: req.Exercises,
		CreatedAt: time.Now(),
	}
	if err := s.store.InsertTemplate(r.Context(), tpl); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	templates, err := s.store.ListTemplates(r.Context(), ownerID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if templates == nil {
		templates = []models.WorkoutTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	tpl, err := s.store.GetTemplate(r.Context(), ownerID, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := s.owner(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteTemplate(r.Context(), ownerID, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
