package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey int

const ownerIDKey contextKey = iota

// OwnerIDFromContext extracts the caller's owner ID injected by UserAuth.
func OwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ownerIDKey).(uuid.UUID)
	return id, ok
}

// WithOwnerID returns a context carrying the given owner ID.
func WithOwnerID(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// UserResolver maps a login name to a stable owner ID.
type UserResolver interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (uuid.UUID, error)
}

// APIKeyAuth returns middleware that validates the X-API-Key header.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				http.Error(w, `{"error":"missing API key"}`, http.StatusUnauthorized)
				return
			}
			if key != apiKey {
				http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserAuth resolves the caller identity from the X-User-Login header into
// an owner ID on the request context. When the server runs behind tsnet
// the transport fills the header from the Tailscale login name.
func UserAuth(users UserResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			login := r.Header.Get("X-User-Login")
			if login == "" {
				http.Error(w, `{"error":"missing user identity"}`, http.StatusUnauthorized)
				return
			}
			ownerID, err := users.GetOrCreateUser(r.Context(), login, r.Header.Get("X-User-Name"))
			if err != nil {
				log.Error("resolving user", "login", login, "error", err)
				http.Error(w, `{"error":"user resolution failed"}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), ownerID)))
		})
	}
}

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS adds permissive CORS headers for local development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-User-Login, X-User-Name")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
