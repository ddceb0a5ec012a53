package blog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/render"
)

// MessageResponse acknowledges a deletion.
type MessageResponse struct {
	Message string `json:"message" example:"post removed"`
}

// Handler serves the /api/blog routes.
type Handler struct {
	service *Service
	guard   *auth.Guard
	rd      *render.Renderer
}

// NewHandler creates a new Handler.
func NewHandler(service *Service, guard *auth.Guard, rd *render.Renderer) *Handler {
	return &Handler{service: service, guard: guard, rd: rd}
}

// RegisterRoutes mounts the post routes on a router scoped to /api/blog.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{postId}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticate)
		r.Post("/", h.create)
		r.Put("/{postId}", h.update)
		r.Delete("/{postId}", h.delete)
	})
}

// list godoc
// @Summary List posts
// @Tags Blog
// @Produce json
// @Success 200 {array} blog.Post
// @Router /blog [get]
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, posts)
}

// get godoc
// @Summary Get a post
// @Tags Blog
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} blog.Post
// @Failure 404 {object} apperror.ErrorResponse
// @Router /blog/{postId} [get]
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.Get(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, post)
}

// create godoc
// @Summary Create a post
// @Tags Blog
// @Accept json
// @Produce json
// @Param post body blog.CreatePostRequest true "Post"
// @Success 201 {object} blog.Post
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /blog [post]
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := h.rd.Decode(w, r, &req); err != nil {
		h.rd.Error(w, r, err)
		return
	}
	post, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusCreated, post)
}

// update godoc
// @Summary Update a post
// @Description Author or administrator only.
// @Tags Blog
// @Accept json
// @Produce json
// @Param postId path string true "Post ID"
// @Param post body blog.UpdatePostRequest true "Fields to change"
// @Success 200 {object} blog.Post
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /blog/{postId} [put]
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePostRequest
	if err := h.rd.Decode(w, r, &req); err != nil {
		h.rd.Error(w, r, err)
		return
	}
	post, err := h.service.Update(r.Context(), chi.URLParam(r, "postId"), req)
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, post)
}

// delete godoc
// @Summary Delete a post and its comments
// @Description Author or administrator only.
// @Tags Blog
// @Produce json
// @Param postId path string true "Post ID"
// @Success 200 {object} blog.MessageResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /blog/{postId} [delete]
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "postId")); err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, MessageResponse{Message: "post removed"})
}
