package handler

import (
	"encoding/json"
	"net/http"

	"auth_api/internal/api/middleware"
	"auth_api/internal/app/service"
	"auth_api/internal/common"
	"auth_api/internal/common/messages"
	"auth_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService *service.AuthService
	msgs        *messages.Table
	log         logrus.FieldLogger
}

func NewAuthHandler(authService *service.AuthService, msgs *messages.Table, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{authService: authService, msgs: msgs, log: log}
}

// RegisterRoutes mounts the auth endpoints. usersGuard, when given, wraps
// only the listing route.
func (h *AuthHandler) RegisterRoutes(r chi.Router, usersGuard ...func(http.Handler) http.Handler) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.With(usersGuard...).Get("/users", h.users)
}

type registerResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

type usersResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Users   []model.User `json:"users"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, common.KindInvalidPayload, h.msgs.Text(messages.InvalidPayload))
		return
	}

	user, err := h.authService.Register(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, registerResponse{
		Success: true,
		Message: h.msgs.Text(messages.UserCreated),
		User:    user,
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, common.KindInvalidPayload, h.msgs.Text(messages.InvalidPayload))
		return
	}

	token, err := h.authService.Login(r.Context(), req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, loginResponse{
		Success: true,
		Message: h.msgs.Text(messages.LoginSucceeded),
		Token:   token,
	})
}

func (h *AuthHandler) users(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	if requesterID, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		h.log.WithField("user_id", requesterID).WithField("count", len(users)).Debug("users listed")
	}
	common.RespondWithJSON(w, http.StatusOK, usersResponse{
		Success: true,
		Message: h.msgs.Text(messages.UsersListed),
		Users:   users,
	})
}

// respondWithServiceError renders auth failures with their message and hides
// everything else behind a generic 500.
func (h *AuthHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if authErr, ok := common.AsAuthError(err); ok {
		common.RespondWithError(w, common.HTTPStatusFromError(err), authErr.Kind, h.msgs.Text(authErr.Key))
		return
	}
	h.log.WithError(err).
		WithField("request_id", chiMiddleware.GetReqID(r.Context())).
		WithField("path", r.URL.Path).
		Error("request failed")
	common.RespondWithError(w, http.StatusInternalServerError, common.KindInternal, h.msgs.Text(messages.InternalError))
}
