package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lodgelist/lodgelist/internal/core"
	"github.com/lodgelist/lodgelist/internal/platform/httpx"
)

// Handler wires HTTP endpoints for login and logout.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token string    `json:"token"`
	Actor loginUser `json:"actor"`
}

type loginUser struct {
	ID          string   `json:"id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.BadRequest(w, "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.BadRequest(w, "email and password are required")
		return
	}

	token, actor, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			httpx.Unauthorized(w, "invalid email or password")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, core.Fail[struct{}](core.NewError(core.CodeInternal, "internal error")))
		return
	}

	httpx.JSON(w, http.StatusOK, core.Ok(loginResponse{
		Token: token,
		Actor: loginUser{ID: actor.ID, Role: string(actor.Role), Permissions: actor.Permissions},
	}))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			h.logger.Warn("logout", slog.Any("error", err))
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
