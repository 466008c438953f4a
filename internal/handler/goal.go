package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/stridelog/stridelog/internal/ctxkeys"
	"github.com/stridelog/stridelog/internal/model"
	"github.com/stridelog/stridelog/internal/repository"
	"github.com/stridelog/stridelog/internal/service"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

// goalPayload is the wire shape of a goal: the stored document plus the
// derived values, computed at serialization time so they are never stale.
type goalPayload struct {
	*model.Goal
	ProgressPercentage int  `json:"progressPercentage"`
	DaysRemaining      int  `json:"daysRemaining"`
	DaysElapsed        int  `json:"daysElapsed"`
	IsOverdue          bool `json:"isOverdue"`
}

func payload(g *model.Goal) goalPayload {
	now := time.Now()
	return goalPayload{
		Goal:               g,
		ProgressPercentage: g.ProgressPercentage(),
		DaysRemaining:      g.DaysRemaining(now),
		DaysElapsed:        g.DaysElapsed(now),
		IsOverdue:          g.IsOverdue(now),
	}
}

func payloads(goals []*model.Goal) []goalPayload {
	out := make([]goalPayload, len(goals))
	for i, g := range goals {
		out[i] = payload(g)
	}
	return out
}

func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := ctxkeys.OwnerID(r.Context())

	q := r.URL.Query()
	filter := repository.Filter{
		Status: q.Get("status"),
		Type:   q.Get("type"),
	}
	if filter.Status != "" && !model.ValidStatus(filter.Status) {
		respondError(w, http.StatusBadRequest, "unknown status filter")
		return
	}
	if filter.Type != "" && !model.ValidType(filter.Type) {
		respondError(w, http.StatusBadRequest, "unknown type filter")
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	goals, total, err := h.goalService.List(r.Context(), ownerID, filter, page, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, map[string]any{
		"items": payloads(goals),
		"total": total,
	})
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := ctxkeys.OwnerID(r.Context())

	var input service.CreateGoalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.Create(r.Context(), ownerID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusCreated, payload(goal))
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := ctxkeys.OwnerID(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.ByID(r.Context(), ownerID, goalID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, payload(goal))
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := ctxkeys.OwnerID(r.Context())
	goalID := r.PathValue("id")

	var input service.UpdateGoalInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goalService.Update(r.Context(), ownerID, goalID, input)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, payload(goal))
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := ctxkeys.OwnerID(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.Delete(r.Context(), ownerID, goalID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, nil)
}

func (h *GoalHandler) AppendProgress(w http.ResponseWriter, r *http.Request) {
	ownerID := ctxkeys.OwnerID(r.Context())
	goalID := r.PathValue("id")

	var body struct {
		Value *float64 `json:"value"`
		Notes string   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Value == nil {
		respondError(w, http.StatusBadRequest, "value is required")
		return
	}

	goal, err := h.goalService.AppendProgress(r.Context(), ownerID, goalID, *body.Value, body.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, payload(goal))
}
