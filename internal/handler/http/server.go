package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	redirectHandler *RedirectHandler
	apiHandler      *APIHandler
	healthHandler   *HealthHandler
	allowedOrigins  []string
	log             *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	redirectHandler *RedirectHandler,
	apiHandler *APIHandler,
	healthHandler *HealthHandler,
	allowedOrigins []string,
	log *zap.Logger,
) *Server {
	return &Server{
		redirectHandler: redirectHandler,
		apiHandler:      apiHandler,
		healthHandler:   healthHandler,
		allowedOrigins:  allowedOrigins,
		log:             log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks
	mux.HandleFunc("GET /health", s.healthHandler.Health)
	mux.HandleFunc("GET /ready", s.healthHandler.Ready)

	// Swagger документация
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Redirect surface, with and without the trailing slash
	for _, pattern := range []string{"/track/{slug}", "/track/{slug}/{$}"} {
		mux.HandleFunc("GET "+pattern, s.redirectHandler.TrackClick)
		mux.HandleFunc("POST "+pattern, s.redirectHandler.TrackClick)
	}

	// JSON surface
	for _, pattern := range []string{"/api/track/{slug}", "/api/track/{slug}/{$}"} {
		mux.HandleFunc("POST "+pattern, s.withCORS(s.apiHandler.TrackClick))
		mux.HandleFunc("OPTIONS "+pattern, s.withCORS(preflight))
	}

	return s.logRequests(mux)
}

// withCORS добавляет CORS headers к обработчику
func (s *Server) withCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range s.allowedOrigins {
			if allowed == "*" {
				// Wildcard responses never carry credentials.
				w.Header().Set("Access-Control-Allow-Origin", "*")
				break
			}
			if origin != "" && origin == allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
				break
			}
		}

		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, X-CSRF-Token")

		next(w, r)
	}
}

func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// statusRecorder remembers the response code for access logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status))
	})
}
