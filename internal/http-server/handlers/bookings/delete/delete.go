package delete

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"clinic-service/pkg/response"
	"clinic-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingDeleter interface {
	DeleteBooking(ctx context.Context, patientID, scheduleID string) error
}

func New(log *slog.Logger, deleter BookingDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.delete.New"

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

		err := deleter.DeleteBooking(r.Context(), patientID, scheduleID)

		if errors.Is(err, response.ErrNotFound) {
			log.Error("resource not found")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error(string(response.NOT_FOUND), "resource not found"))
			return
		}

		if err != nil {
			log.Error("Failed to delete booking", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to delete booking"))
			return
		}

		log.Info("Booking deleted",
			slog.String("patient_id", patientID),
			slog.String("schedule_id", scheduleID),
		)
		w.WriteHeader(http.StatusNoContent)
	}
}
