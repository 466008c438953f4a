package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stridelog/stridelog/internal/model"
	"github.com/stridelog/stridelog/internal/repository"
)

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func respond(w http.ResponseWriter, code int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func respondData(w http.ResponseWriter, code int, data any) {
	respond(w, code, envelope{Status: "success", Data: data})
}

func respondError(w http.ResponseWriter, code int, message string) {
	respond(w, code, envelope{Status: "error", Message: message})
}

// respondServiceError maps the error taxonomy onto HTTP statuses: validation
// 400 with field detail, not-found/not-owned 404, version conflict 409,
// anything else (storage) 500 without leaking internals.
func respondServiceError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		respond(w, http.StatusBadRequest, envelope{
			Status:  "error",
			Message: verr.Error(),
			Errors:  verr.Fields,
		})
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, "goal not found")
	case errors.Is(err, repository.ErrConflict):
		respondError(w, http.StatusConflict, "conflicting update, retry the request")
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
