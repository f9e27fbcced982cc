package batch

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

type ScheduleImporter interface {
	ImportSchedules(ctx context.Context, doctorID string, rows []api.ScheduleRequest) (int, error)
}

type Request struct {
	api.ScheduleImportRequest
}

type Response struct {
	response.Response
	Created int `json:"created"`
}

func New(log *slog.Logger, importer ScheduleImporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.schedules.batch.New"

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

		if len(req.Rows) == 0 {
			log.Error("rows is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "rows is required"))
			return
		}

		log.Info("Request body decoded", slog.Int("rows", len(req.Rows)))

		created, err := importer.ImportSchedules(r.Context(), sess.UserID, req.Rows)

		var ve *response.ValidationError
		if errors.As(err, &ve) {
			log.Info("Import validation failed", slog.Any("fields", ve.Fields))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Validation(ve.Fields))
			return
		}

		if err != nil {
			log.Error("Failed to import schedules", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), "failed to import schedules"))
			return
		}

		log.Info("Schedules imported", slog.Int("created", created))

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, Response{
			Created: created,
		})
	}
}
