package auth

import (
	"net/http"

	"github.com/user/portfolio-go/render"
)

// Handlers wraps the Service to provide HTTP handlers.
type Handlers struct {
	service *Service
	rd      *render.Renderer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service, rd *render.Renderer) *Handlers {
	return &Handlers{service: service, rd: rd}
}

// HandleRegister godoc
// @Summary Register
// @Description Creates a standard user and returns a bearer token.
// @Tags Users
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Registration details"
// @Success 201 {object} auth.AuthResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input, or email/username already taken"
// @Failure 500 {object} apperror.ErrorResponse
// @Router /users/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := h.rd.Decode(w, r, &req); err != nil {
			h.rd.Error(w, r, err)
			return
		}

		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			h.rd.Error(w, r, err)
			return
		}
		h.rd.JSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary Login
// @Description Exchanges email and password for a bearer token.
// @Tags Users
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.AuthResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid email or password"
// @Router /users/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := h.rd.Decode(w, r, &req); err != nil {
			h.rd.Error(w, r, err)
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			h.rd.Error(w, r, err)
			return
		}
		h.rd.JSON(w, http.StatusOK, resp)
	}
}
