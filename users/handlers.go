// Package users serves the authenticated caller's own profile.
package users

import (
	"net/http"
	"time"

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/render"
)

// Profile is the identity projection returned to its owner. It never carries the secret.
type Profile struct {
	ID        string    `json:"id" example:"6f1c2b0e-8d0a-4e53-9f0a-2f7d1f4d0b11"`
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	Role      auth.Role `json:"role" example:"user"`
	CreatedAt time.Time `json:"createdAt"`
}

// Handlers provides HTTP handlers for user profiles.
type Handlers struct {
	rd *render.Renderer
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(rd *render.Renderer) *Handlers {
	return &Handlers{rd: rd}
}

// HandleMe godoc
// @Summary Current user
// @Description Returns the profile of the authenticated caller.
// @Tags Users
// @Produce json
// @Success 200 {object} users.Profile
// @Failure 401 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /users/me [get]
func (h *Handlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.FromContext(r.Context())
		if !ok {
			h.rd.Error(w, r, apperror.NewUnauthorizedError(auth.MsgNoToken, nil))
			return
		}
		h.rd.JSON(w, http.StatusOK, Profile{
			ID:        identity.ID,
			Username:  identity.Username,
			Email:     identity.Email,
			Role:      identity.Role,
			CreatedAt: identity.CreatedAt,
		})
	}
}
