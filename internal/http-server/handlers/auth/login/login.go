package login

import (
	"log/slog"
	"net/http"

	"clinic-service/api"
	"clinic-service/internal/session"
	"clinic-service/pkg/response"
	"clinic-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Request struct {
	api.LoginRequest
}

type Response struct {
	response.Response
	api.LoginResponse
}

func New(log *slog.Logger, sessions session.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.auth.login.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if req.UserID == "" {
			log.Error("user_id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "user_id is required"))
			return
		}

		role := session.Role(req.Role)
		if role != session.RolePatient && role != session.RoleDoctor && role != session.RoleSupporter {
			log.Error("invalid role", slog.String("role", req.Role))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "invalid role"))
			return
		}

		sess := sessions.Login(req.UserID, role)

		log.Info("Session created", slog.String("user_id", req.UserID), slog.String("role", req.Role))

		render.JSON(w, r, Response{
			LoginResponse: api.LoginResponse{
				Token: sess.Token,
				Role:  string(sess.Role),
			},
		})
	}
}
