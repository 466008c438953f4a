package handler

import (
	"net/http"

	"github.com/stridelog/stridelog/internal/ctxkeys"
	"github.com/stridelog/stridelog/internal/service"
)

type DashboardHandler struct {
	goalService *service.GoalService
}

func NewDashboardHandler(goalService *service.GoalService) *DashboardHandler {
	return &DashboardHandler{
		goalService: goalService,
	}
}

// Summary returns the caller's goal rollup for the dashboard.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ownerID := ctxkeys.OwnerID(r.Context())

	summary, err := h.goalService.Summary(r.Context(), ownerID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, summary)
}
