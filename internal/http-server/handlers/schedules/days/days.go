package days

import (
	"context"
	"log/slog"
	"net/http"

	"clinic-service/api"
	"clinic-service/pkg/response"
	"clinic-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type DayGetter interface {
	GetDoctorDays(ctx context.Context, doctorID string) ([]*api.DayResponse, error)
}

type Response struct {
	response.Response
	Days []api.DayResponse `json:"days,omitempty"`
}

func New(log *slog.Logger, getter DayGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.days.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		doctorID := r.URL.Query().Get("doctor_id")
		if doctorID == "" {
			log.Error("doctor_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "doctor_id is required"))
			return
		}

		days, err := getter.GetDoctorDays(r.Context(), doctorID)
		if err != nil {
			log.Error("Failed to get booking days", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to get booking days"))
			return
		}

		log.Info("Booking days retrieved", slog.Int("count", len(days)))

		daysResponse := make([]api.DayResponse, len(days))
		for i, d := range days {
			daysResponse[i] = *d
		}
		render.JSON(w, r, Response{
			Days: daysResponse,
		})
	}
}
