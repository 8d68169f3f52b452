package http

import (
	"clickify/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// RedirectHandler serves the browser-facing tracking endpoint.
type RedirectHandler struct {
	tracker         *service.Tracker
	flash           *Flasher
	defaultRedirect string
	log             *zap.Logger
}

// NewRedirectHandler создает обработчик редиректов. defaultRedirect
// используется, если у запроса нет Referer.
func NewRedirectHandler(tracker *service.Tracker, flash *Flasher, defaultRedirect string, log *zap.Logger) *RedirectHandler {
	if defaultRedirect == "" {
		defaultRedirect = "/"
	}
	return &RedirectHandler{
		tracker:         tracker,
		flash:           flash,
		defaultRedirect: defaultRedirect,
		log:             log,
	}
}

// TrackClick records a click and redirects to the link target.
//
//	@Summary		Track a click and redirect
//	@Description	Records a click on the tracked link and redirects to its target URL. When rate limited, redirects back to the Referer with a flash message.
//	@Tags			tracking
//	@Param			slug	path	string	true	"Link slug"
//	@Param			ref		query	string	false	"Referral tag"
//	@Success		302		"Redirect to the target URL"
//	@Failure		404		"Unknown slug"
//	@Failure		500		"Internal server error"
//	@Router			/track/{slug} [get]
//	@Router			/track/{slug} [post]
func (h *RedirectHandler) TrackClick(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	outcome, err := h.tracker.Track(r.Context(), service.OperationTrackClick, slug, r)
	if err != nil {
		h.log.Error("failed to track click", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	switch outcome.Kind {
	case service.OutcomeNotFound:
		http.NotFound(w, r)

	case service.OutcomeRateLimited:
		if err := h.flash.Add(w, r, FlashLevelError, outcome.Message); err != nil {
			h.log.Warn("failed to set flash message", zap.Error(err))
		}
		back := r.Referer()
		if back == "" {
			back = h.defaultRedirect
		}
		http.Redirect(w, r, back, http.StatusFound)

	default:
		h.log.Debug("redirecting", zap.String("slug", slug), zap.String("target_url", outcome.TargetURL))
		http.Redirect(w, r, outcome.TargetURL, http.StatusFound)
	}
}
