package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/stp-archive/catalog/internal/server"
	"github.com/stp-archive/catalog/pkg/models"
)

type contextKey int

const (
	identityContextKey contextKey = iota
	entityContextKey
	requestIDContextKey
)

// IdentityEmail returns the verified caller email stored by VerifyToken.
func IdentityEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(identityContextKey).(string)
	return email, ok
}

// EntityFromContext returns the authorization entity stored by ResolveEntity.
func EntityFromContext(ctx context.Context) (models.Entity, bool) {
	entity, ok := ctx.Value(entityContextKey).(models.Entity)
	return entity, ok
}

// RequestIDFromContext returns the request ID stored by RequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}

// RequestID assigns each request a UUID, echoes it in the X-Request-Id
// response header, and writes an access log line.
func RequestID(log hclog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)

		log.Debug("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
		)

		ctx := context.WithValue(r.Context(), requestIDContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CORS allows cross-origin requests from any origin, matching the browser
// frontend the catalog serves.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods",
			"GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			"Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// VerifyToken extracts the bearer token from the Authorization header,
// verifies it against the configured identity provider, and stores the
// verified email in the request context. Verification failures yield a
// generic unauthorized response; details go to the log only.
func VerifyToken(srv server.Server, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			srv.Logger.Warn("missing authorization header",
				"path", r.URL.Path,
				"method", r.Method,
			)
			respondUnauthorized(w, srv.Logger, http.StatusUnauthorized,
				"Unauthorized.")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			srv.Logger.Warn("invalid authorization header format",
				"path", r.URL.Path,
				"method", r.Method,
			)
			respondUnauthorized(w, srv.Logger, http.StatusUnauthorized,
				"Unauthorized.")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			respondUnauthorized(w, srv.Logger, http.StatusUnauthorized,
				"Unauthorized.")
			return
		}

		identity, err := srv.TokenVerifier.Verify(r.Context(), token)
		if err != nil {
			srv.Logger.Warn("token verification failed",
				"error", err,
				"path", r.URL.Path,
				"method", r.Method,
			)
			respondUnauthorized(w, srv.Logger, http.StatusUnauthorized,
				"Unauthorized.")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ResolveEntity maps the verified email to its authorization entity (User
// before Domain) and stores it in the request context. Identity-provider
// verification succeeding is not enough: a caller with no matching User or
// Domain is unauthenticated for application purposes.
func ResolveEntity(srv server.Server, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, ok := IdentityEmail(r.Context())
		if !ok {
			respondUnauthorized(w, srv.Logger, http.StatusUnauthorized,
				"Unauthorized.")
			return
		}

		entity, err := models.ResolveEntity(srv.DB, email)
		if err != nil {
			if models.IsNotFound(err) {
				srv.Logger.Warn("no entity for verified email",
					"email", email,
					"path", r.URL.Path,
				)
				respondUnauthorized(w, srv.Logger, http.StatusUnauthorized,
					"Unauthorized.")
				return
			}
			srv.Logger.Error("error resolving entity",
				"error", err,
				"email", email,
			)
			respondFail(w, srv.Logger, http.StatusInternalServerError,
				"Something went wrong.")
			return
		}

		ctx := context.WithValue(r.Context(), entityContextKey, entity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSuperuser rejects any caller whose resolved entity is not a
// superuser User. Only superusers manage the user and domain rosters.
func RequireSuperuser(srv server.Server, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entity, ok := EntityFromContext(r.Context())
		if !ok || !entity.IsSuperuser() {
			srv.Logger.Warn("superuser privilege required",
				"path", r.URL.Path,
				"method", r.Method,
			)
			respondUnauthorized(w, srv.Logger, http.StatusForbidden,
				"Not authorized.")
			return
		}

		next.ServeHTTP(w, r)
	})
}
