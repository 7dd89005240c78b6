package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophtodo/internal/common"
	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

// Authenticator resolves an Authorization header value to an identity.
type Authenticator interface {
	Authenticate(authorization string) (auth.Identity, error)
}

// RequireAuth guards next with bearer authentication. Requests without a
// valid token are answered with 401 and never reach next; authenticated
// requests carry the caller in their context (see auth.IdentityFromContext).
func RequireAuth(a Authenticator, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r.Header.Get(common.AuthorizationHeaderName))
			if err != nil {
				log.Debug(r.Context(), "request rejected", "reason", err.Error(), "path", r.URL.Path)
				respondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := auth.WithIdentity(r.Context(), id)
			ctx = logging.ContextWithFields(ctx, "user_id", id.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestLogger tags the request context with the chi request id and logs
// one line per request after it completes.
func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := logging.ContextWithFields(r.Context(), "request_id", middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(ctx))

			log.Info(ctx, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).String(),
			)
		})
	}
}
