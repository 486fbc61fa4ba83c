package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"aiwriter/internal/events"
	"aiwriter/internal/lifecycle"
	"aiwriter/internal/models"
	"aiwriter/internal/repositories"
)

// UserHeader carries the id of the user the upstream host authenticated.
const UserHeader = "X-User-ID"

type ctxKey int

const userKey ctxKey = iota

func userFrom(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// authenticate resolves the acting user and, for mutating methods, checks
// the CSRF token.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserHeader))
		id, err := strconv.ParseUint(raw, 10, 64)
		if raw == "" || err != nil || id == 0 {
			WriteJSONError(w, http.StatusUnauthorized, "Authentication required.", "")
			return
		}
		user, err := s.services.Users.Get(r.Context(), uint(id))
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				WriteJSONError(w, http.StatusUnauthorized, "Authentication required.", "")
				return
			}
			s.logger.Error("resolve user", "user_id", id, "error", err)
			WriteJSONError(w, http.StatusInternalServerError, "Unknown error occurred.", "")
			return
		}
		if mutating(r.Method) && !s.csrf.Valid(user.ID, r.Header.Get(lifecycle.CSRFHeader)) {
			WriteJSONError(w, http.StatusForbidden, "Invalid authenticity token.", "")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = events.WithSession(ctx, "user:"+strconv.FormatUint(id, 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wrote {
		r.status = code
		r.wrote = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(b)
}

// logRequests logs one line per request and turns panics into 500s. A panic
// after the response has started only gets logged.
func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				logger.Error("panic serving request", "path", r.URL.Path, "panic", p, "stack", string(debug.Stack()))
				if !rec.wrote {
					WriteJSONError(rec, http.StatusInternalServerError, "Unknown error occurred.", "")
				}
			}
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		}()
		next.ServeHTTP(rec, r)
	})
}
