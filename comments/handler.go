package comments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/render"
)

// MessageResponse acknowledges a deletion.
type MessageResponse struct {
	Message string `json:"message" example:"comment removed"`
}

// Handler serves the comment routes.
type Handler struct {
	service *Service
	guard   *auth.Guard
	rd      *render.Renderer
}

// NewHandler creates a new Handler.
func NewHandler(service *Service, guard *auth.Guard, rd *render.Renderer) *Handler {
	return &Handler{service: service, guard: guard, rd: rd}
}

// RegisterRoutes mounts the comment routes on a router scoped to /api/blog/{postId}/comments.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticate)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

// list godoc
// @Summary List comments of a post
// @Tags Comments
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {array} comments.Comment
// @Failure 404 {object} apperror.ErrorResponse
// @Router /blog/{postId}/comments [get]
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.List(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, comments)
}

// create godoc
// @Summary Comment on a post
// @Tags Comments
// @Accept json
// @Produce json
// @Param postId path string true "Post ID"
// @Param comment body comments.CommentRequest true "Comment"
// @Success 201 {object} comments.Comment
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /blog/{postId}/comments [post]
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := h.rd.Decode(w, r, &req); err != nil {
		h.rd.Error(w, r, err)
		return
	}
	comment, err := h.service.Create(r.Context(), chi.URLParam(r, "postId"), req)
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusCreated, comment)
}

// update godoc
// @Summary Edit a comment
// @Description Author or administrator only.
// @Tags Comments
// @Accept json
// @Produce json
// @Param postId path string true "Post ID"
// @Param id path string true "Comment ID"
// @Param comment body comments.CommentRequest true "Comment"
// @Success 200 {object} comments.Comment
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /blog/{postId}/comments/{id} [put]
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if err := h.rd.Decode(w, r, &req); err != nil {
		h.rd.Error(w, r, err)
		return
	}
	comment, err := h.service.Update(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "id"), req)
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, comment)
}

// delete godoc
// @Summary Delete a comment
// @Description Author or administrator only.
// @Tags Comments
// @Produce json
// @Param postId path string true "Post ID"
// @Param id path string true "Comment ID"
// @Success 200 {object} comments.MessageResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /blog/{postId}/comments/{id} [delete]
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "id")); err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, MessageResponse{Message: "comment removed"})
}
