package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"clinic-service/api"
	"clinic-service/pkg/response"
	"clinic-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type StatusChanger interface {
	ChangeBookingStatus(ctx context.Context, req *api.ChangeStatusRequest) (*api.BookingResponse, error)
}

type Request struct {
	Status string `json:"status"`
}

type Response struct {
	response.Response
	Booking *api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, changer StatusChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.status.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		patientID := chi.URLParam(r, "patientId")
		scheduleID := chi.URLParam(r, "scheduleId")
		if patientID == "" || scheduleID == "" {
			log.Error("patientId or scheduleId is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "patientId and scheduleId are required"))
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

		booking, err := changer.ChangeBookingStatus(r.Context(), &api.ChangeStatusRequest{
			PatientID:  patientID,
			ScheduleID: scheduleID,
			Status:     req.Status,
		})

		if errors.Is(err, response.ErrBadRequest) {
			log.Error("invalid status", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid status"))
			return
		}

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if errors.Is(err, response.ErrConflict) {
			log.Error("status transition not allowed", sl.Err(err))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error(string(response.CONFLICT), "status transition not allowed"))
			return
		}

		if err != nil {
			log.Error("Failed to change booking status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to change booking status"))
			return
		}

		log.Info("Booking status changed", slog.Any("booking", booking))

		render.JSON(w, r, Response{
			Booking: booking,
		})
	}
}
