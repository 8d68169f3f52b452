package http

import (
	"clickify/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// TrackResponse is returned on a successful API tracking call.
type TrackResponse struct {
	TargetURL string `json:"target_url"`
}

// ErrorResponse is the body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIHandler serves the JSON tracking endpoint used by front-end code.
type APIHandler struct {
	tracker *service.Tracker
	log     *zap.Logger
}

func NewAPIHandler(tracker *service.Tracker, log *zap.Logger) *APIHandler {
	return &APIHandler{
		tracker: tracker,
		log:     log,
	}
}

// TrackClick records a click and returns the target URL.
//
//	@Summary		Track a click
//	@Description	Records a click on the tracked link and returns its target URL. The referral tag may be sent as a query parameter, form field or JSON field.
//	@Tags			tracking
//	@Accept			json
//	@Produce		json
//	@Param			slug	path		string	true	"Link slug"
//	@Param			ref		query		string	false	"Referral tag"
//	@Success		200		{object}	TrackResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		429		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/api/track/{slug} [post]
func (h *APIHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	outcome, err := h.tracker.Track(r.Context(), service.OperationTrackClickAPI, slug, r)
	if err != nil {
		h.log.Error("failed to track click", zap.String("slug", slug), zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	switch outcome.Kind {
	case service.OutcomeNotFound:
		h.writeError(w, "Not found.", http.StatusNotFound)
	case service.OutcomeRateLimited:
		h.writeError(w, outcome.Message, http.StatusTooManyRequests)
	default:
		h.writeJSON(w, TrackResponse{TargetURL: outcome.TargetURL}, http.StatusOK)
	}
}

// Helper methods

func (h *APIHandler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: message}, statusCode)
}
