// Package contact accepts messages from the public contact form and lists them
// to administrators.
package contact

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/render"
)

// Message is a submitted contact form.
type Message struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// MessageRequest is the payload for POST /api/contact.
type MessageRequest struct {
	Name    string `json:"name" validate:"required,max=100" example:"Bob"`
	Email   string `json:"email" validate:"required,email" example:"bob@example.com"`
	Message string `json:"message" validate:"required,max=5000" example:"Hi there"`
}

// SubmitResponse acknowledges a submission.
type SubmitResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"message received"`
}

// Store persists contact messages.
type Store interface {
	Create(ctx context.Context, msg *Message) error
	// List returns all messages, newest first.
	List(ctx context.Context) ([]Message, error)
}

// Handler serves the /api/contact routes.
type Handler struct {
	store  Store
	guard  *auth.Guard
	rd     *render.Renderer
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store Store, guard *auth.Guard, rd *render.Renderer, logger *slog.Logger) *Handler {
	return &Handler{store: store, guard: guard, rd: rd, logger: logger}
}

// RegisterRoutes mounts the contact routes on a router scoped to /api/contact.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.submit)
	r.With(h.guard.Authenticate, h.guard.RequireRole(auth.RoleAdmin)).Get("/", h.list)
}

// submit godoc
// @Summary Send a contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param message body contact.MessageRequest true "Message"
// @Success 201 {object} contact.SubmitResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Router /contact [post]
func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := h.rd.Decode(w, r, &req); err != nil {
		h.rd.Error(w, r, err)
		return
	}

	msg := Message{ID: uuid.NewString(), Name: req.Name, Email: req.Email, Message: req.Message}
	if err := h.store.Create(r.Context(), &msg); err != nil {
		h.rd.Error(w, r, apperror.NewDatabaseError("failed to save message", err))
		return
	}
	h.logger.InfoContext(r.Context(), "contact message received", "message_id", msg.ID)
	h.rd.JSON(w, http.StatusCreated, SubmitResponse{Success: true, Message: "message received"})
}

// list godoc
// @Summary List contact messages
// @Description Administrators only.
// @Tags Contact
// @Produce json
// @Success 200 {array} contact.Message
// @Failure 403 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /contact [get]
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.store.List(r.Context())
	if err != nil {
		h.rd.Error(w, r, apperror.NewDatabaseError("failed to list messages", err))
		return
	}
	h.rd.JSON(w, http.StatusOK, msgs)
}
