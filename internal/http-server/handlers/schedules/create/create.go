package create

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
	"github.com/go-chi/render"
)

type ScheduleCreator interface {
	CreateSchedule(ctx context.Context, doctorID string, req *api.ScheduleRequest) (*api.ScheduleResponse, error)
}

type Request struct {
	api.ScheduleRequest
}

type Response struct {
	response.Response
	Schedule *api.ScheduleResponse `json:"schedule,omitempty"`
}

func New(log *slog.Logger, creator ScheduleCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.create.New"

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

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		log.Info("Request body decoded", slog.Any("request", req))

		schedule, err := creator.CreateSchedule(r.Context(), sess.UserID, &req.ScheduleRequest)

		var ve *response.ValidationError
		if errors.As(err, &ve) {
			log.Info("Schedule validation failed", slog.Any("fields", ve.Fields))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Validation(ve.Fields))
			return
		}

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("Bad request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid time format"))
			return
		}

		if err != nil {
			log.Error("Failed to create schedule", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to create schedule"))
			return
		}

		log.Info("Schedule created", slog.Any("schedule", schedule))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Schedule: schedule,
		})
	}
}
