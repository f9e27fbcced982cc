package get

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"clinic-service/api"
	"clinic-service/pkg/response"
	"clinic-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ScheduleGetter interface {
	GetSchedule(ctx context.Context, id string) (*api.ScheduleResponse, error)
	ListSchedules(ctx context.Context, doctorID *string, from, to *time.Time) ([]*api.ScheduleResponse, error)
}

type Response struct {
	response.Response
	Schedules []api.ScheduleResponse `json:"schedules,omitempty"`
	Schedule  *api.ScheduleResponse  `json:"schedule,omitempty"`
}

func New(log *slog.Logger, getter ScheduleGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.get.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")

		if id != "" {
			schedule, err := getter.GetSchedule(r.Context(), id)

			if errors.Is(err, response.ErrNotFound) {
				log.Error("resource not found")
				w.WriteHeader(http.StatusNotFound)
				render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
				return
			}

			if err != nil {
				log.Error("Failed to get schedule", sl.Err(err))
				w.WriteHeader(http.StatusInternalServerError)
				render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get schedule"))
				return
			}

			log.Info("Schedule retrieved", slog.Any("schedule", schedule))
			render.JSON(w, r, Response{Schedule: schedule})
			return
		}

		var doctorID *string
		if d := r.URL.Query().Get("doctor_id"); d != "" {
			doctorID = &d
		}

		var from, to *time.Time
		if fromStr := r.URL.Query().Get("from"); fromStr != "" {
			if t, err := time.Parse("2006-01-02", fromStr); err == nil {
				from = &t
			} else if t, err := time.Parse(time.RFC3339, fromStr); err == nil {
				from = &t
			}
		}
		if toStr := r.URL.Query().Get("to"); toStr != "" {
			if t, err := time.Parse("2006-01-02", toStr); err == nil {
				to = &t
			} else if t, err := time.Parse(time.RFC3339, toStr); err == nil {
				to = &t
			}
		}

		schedules, err := getter.ListSchedules(r.Context(), doctorID, from, to)
		if err != nil {
			log.Error("Failed to list schedules", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list schedules"))
			return
		}

		log.Info("Schedules retrieved", slog.Int("count", len(schedules)))

		schedulesResponse := make([]api.ScheduleResponse, len(schedules))
		for i, s := range schedules {
			schedulesResponse[i] = *s
		}
		render.JSON(w, r, Response{
			Schedules: schedulesResponse,
		})
	}
}
