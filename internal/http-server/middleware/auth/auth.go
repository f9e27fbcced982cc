package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"clinic-service/internal/session"
	"clinic-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ctxKey struct{}

// FromContext returns the session placed by RequireRole.
func FromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(session.Session)
	return s, ok
}

// RequireRole guards a route group: the request must carry a bearer token of
// a live session with the given role. Authentication failure degrades to a
// 401 response, never a crash.
func RequireRole(log *slog.Logger, sessions session.Provider, role session.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth.RequireRole"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				log.Info("Missing bearer token")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "missing token"))
				return
			}

			sess, ok := sessions.Current(token)
			if !ok {
				log.Info("Unknown session token")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "invalid token"))
				return
			}

			if sess.Role != role {
				log.Info("Role mismatch", slog.String("role", string(sess.Role)))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "insufficient role"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
