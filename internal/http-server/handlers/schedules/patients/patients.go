package patients

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

type PatientLister interface {
	ListSchedulePatients(ctx context.Context, doctorID, scheduleID string) ([]*api.ScheduledPatientResponse, error)
}

type Response struct {
	response.Response
	Patients []api.ScheduledPatientResponse `json:"patients,omitempty"`
}

func New(log *slog.Logger, lister PatientLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.patients.New"

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

		patients, err := lister.ListSchedulePatients(r.Context(), sess.UserID, id)

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
			log.Error("Failed to list patients", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to list patients"))
			return
		}

		log.Info("Patients retrieved", slog.Int("count", len(patients)))

		patientsResponse := make([]api.ScheduledPatientResponse, len(patients))
		for i, p := range patients {
			patientsResponse[i] = *p
		}
		render.JSON(w, r, Response{
			Patients: patientsResponse,
		})
	}
}
