package delete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"clinic-service/internal/http-server/middleware/auth"
	"clinic-service/pkg/response"
	"clinic-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ScheduleDeleter interface {
	DeleteSchedule(ctx context.Context, doctorID, id string) error
}

func New(log *slog.Logger, deleter ScheduleDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.delete.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess, ok := auth.FromContext(r.Context())
		if !ok {
			log.Error("No session in context")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "unauthorized"))
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		err := deleter.DeleteSchedule(r.Context(), sess.UserID, id)

		if errors.Is(err, response.ErrHasBookings) {
			log.Error("schedule has bookings")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.HAS_BOOKINGS), "schedule has bookings and cannot be deleted"))
			return
		}

		if errors.Is(err, response.ErrUnauthorized) {
			log.Error("schedule belongs to another doctor")
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "schedule belongs to another doctor"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to delete schedule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete schedule"))
			return
		}

		log.Info("Schedule deleted", slog.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
