package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dvcrn/oura-token/internal/auth"
	"github.com/dvcrn/oura-token/internal/credentials"
	"github.com/rs/zerolog"
)

// Server exposes the admin endpoints used to seed a worker with tokens
type Server struct {
	store    *credentials.TokenStore
	adminKey string
	mux      *http.ServeMux
	logger   zerolog.Logger
}

func New(logger zerolog.Logger, store *credentials.TokenStore, adminKey string) *Server {
	s := &Server{
		store:    store,
		adminKey: adminKey,
		mux:      http.NewServeMux(),
		logger:   logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.healthHandler)
	s.mux.HandleFunc("/admin/tokens", s.adminMiddleware(s.tokensHandler))
	s.mux.HandleFunc("/admin/tokens/status", s.adminMiddleware(s.tokensStatusHandler))
	s.mux.HandleFunc("/", s.notFoundHandler)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.loggingMiddleware(s.mux).ServeHTTP(w, r)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("Incoming request")
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Dur("duration", time.Since(start)).
			Msg("Finished request")
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Warn().
		Str("method", r.Method).
		Str("uri", r.RequestURI).
		Str("remote_addr", r.RemoteAddr).
		Msg("Unhandled route")

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "Not found",
	})
}

// tokensHandler handles POST /admin/tokens for seeding the stored tokens
func (s *Server) tokensHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var reqBody credentials.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		s.logger.Error().Err(err).Msg("Failed to parse request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if reqBody.RefreshToken == "" {
		http.Error(w, "Missing required field: refresh_token", http.StatusBadRequest)
		return
	}

	rec := credentials.TokenRecord{RefreshToken: reqBody.RefreshToken}
	if reqBody.AccessToken != "" {
		rec.AccessToken = reqBody.AccessToken
		rec.AccessExpires = auth.CalculateExpiresAt(reqBody.ExpiresIn)
	}

	if err := s.store.Update(rec); err != nil {
		s.logger.Error().Err(err).Msg("❌ Failed to update stored tokens")
		http.Error(w, "Failed to update tokens", http.StatusInternalServerError)
		return
	}

	s.logger.Info().
		Bool("has_access_token", rec.AccessToken != "").
		Msg("✅ Tokens updated successfully")

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Tokens updated successfully",
	})
}

// tokensStatusHandler handles GET /admin/tokens/status. Token values are
// never included.
func (s *Server) tokensStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	status, err := s.store.Status()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read token status")
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"hasRefreshToken": false,
			"error":           err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
