package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"clinic-service/api"
	"clinic-service/internal/http-server/middleware/auth"
	"clinic-service/pkg/response"
	"clinic-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ScheduleUpdater interface {
	UpdateSchedule(ctx context.Context, doctorID, id string, req *api.ScheduleRequest) (*api.ScheduleResponse, error)
}

type Request struct {
	api.ScheduleRequest
}

type Response struct {
	response.Response
	Schedule *api.ScheduleResponse `json:"schedule,omitempty"`
}

func New(log *slog.Logger, updater ScheduleUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.update.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		schedule, err := updater.UpdateSchedule(r.Context(), sess.UserID, id, &req.ScheduleRequest)

		var ve *response.ValidationError
		if errors.As(err, &ve) {
			log.Info("Schedule validation failed", slog.Any("fields", ve.Fields))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Validation(ve.Fields))
			return
		}

		if errors.Is(err, response.ErrHasBookings) {
			log.Error("schedule has bookings")
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.HAS_BOOKINGS), "schedule has bookings and cannot be edited"))
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

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("Bad request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid time format"))
			return
		}

		if err != nil {
			log.Error("Failed to update schedule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to update schedule"))
			return
		}

		log.Info("Schedule updated", slog.Any("schedule", schedule))

		render.JSON(w, r, Response{
			Schedule: schedule,
		})
	}
}
