package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// adminMiddleware checks for valid admin API key from either
// 'Authorization: Bearer <key>' or 'X-API-Key: <key>' headers.
func (s *Server) adminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminKey == "" {
			s.logger.Error().Msg("ADMIN_API_KEY is not configured")
			http.Error(w, "Admin API not configured", http.StatusInternalServerError)
			return
		}

		provided, ok := adminKeyFromRequest(r)
		if !ok {
			s.rejectAdmin(w, r, "Missing or malformed admin credentials")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(s.adminKey)) != 1 {
			s.rejectAdmin(w, r, "Invalid admin API key provided")
			return
		}

		next(w, r)
	}
}

// adminKeyFromRequest prefers a case-insensitive "Bearer <key>" Authorization
// header and falls back to X-API-Key.
func adminKeyFromRequest(r *http.Request) (string, bool) {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		scheme, key, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || key == "" {
			return "", false
		}
		return key, true
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key, true
	}
	return "", false
}

func (s *Server) rejectAdmin(w http.ResponseWriter, r *http.Request, reason string) {
	s.logger.Warn().
		Str("method", r.Method).
		Str("uri", r.RequestURI).
		Str("remote_addr", r.RemoteAddr).
		Msg(reason)
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}
