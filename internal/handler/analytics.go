package handler

import (
	"net/http"
	"time"

	"github.com/stridelog/stridelog/internal/service"
)

type AnalyticsHandler struct {
	aggregator *service.AnalyticsAggregator
}

func NewAnalyticsHandler(aggregator *service.AnalyticsAggregator) *AnalyticsHandler {
	return &AnalyticsHandler{
		aggregator: aggregator,
	}
}

// Report serves the cross-user rollup for the admin reporting surface.
// Query parameters: from, to (YYYY-MM-DD) and granularity (day|week|month).
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var from, to time.Time
	var err error
	if v := q.Get("from"); v != "" {
		from, err = time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from date, use YYYY-MM-DD")
			return
		}
	}
	if v := q.Get("to"); v != "" {
		to, err = time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to date, use YYYY-MM-DD")
			return
		}
	}

	granularity := q.Get("granularity")
	switch granularity {
	case "", service.GranularityDay, service.GranularityWeek, service.GranularityMonth:
	default:
		respondError(w, http.StatusBadRequest, "granularity must be day, week or month")
		return
	}

	report, err := h.aggregator.Report(r.Context(), from, to, granularity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondData(w, http.StatusOK, report)
}
