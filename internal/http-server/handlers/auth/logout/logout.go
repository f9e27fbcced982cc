package logout

import (
	"log/slog"
	"net/http"
	"strings"

	"clinic-service/internal/session"

	"github.com/go-chi/chi/middleware"
)

func New(log *slog.Logger, sessions session.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.logout.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token != "" {
			sessions.Logout(token)
			log.Info("Session discarded")
		}

		// Logging out an unknown token is not an error.
		w.WriteHeader(http.StatusNoContent)
	}
}
