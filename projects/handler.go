package projects

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/render"
)

// MessageResponse acknowledges a deletion.
type MessageResponse struct {
	Message string `json:"message" example:"project removed"`
}

// Handler serves the /api/projects routes.
type Handler struct {
	service *Service
	guard   *auth.Guard
	rd      *render.Renderer
}

// NewHandler creates a new Handler.
func NewHandler(service *Service, guard *auth.Guard, rd *render.Renderer) *Handler {
	return &Handler{service: service, guard: guard, rd: rd}
}

// RegisterRoutes mounts the project routes on a router scoped to /api/projects.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticate)
		r.With(h.guard.RequireRole(auth.RoleAdmin)).Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

// list godoc
// @Summary List projects
// @Tags Projects
// @Produce json
// @Success 200 {array} projects.Project
// @Router /projects [get]
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.List(r.Context())
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, projects)
}

// get godoc
// @Summary Get a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} projects.Project
// @Failure 404 {object} apperror.ErrorResponse
// @Router /projects/{id} [get]
func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	project, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, project)
}

// create godoc
// @Summary Create a project
// @Description Administrators only.
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body projects.CreateProjectRequest true "Project"
// @Success 201 {object} projects.Project
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /projects [post]
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := h.rd.Decode(w, r, &req); err != nil {
		h.rd.Error(w, r, err)
		return
	}
	project, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusCreated, project)
}

// update godoc
// @Summary Update a project
// @Description Owner or administrator only.
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Param project body projects.UpdateProjectRequest true "Fields to change"
// @Success 200 {object} projects.Project
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /projects/{id} [put]
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := h.rd.Decode(w, r, &req); err != nil {
		h.rd.Error(w, r, err)
		return
	}
	project, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, project)
}

// delete godoc
// @Summary Delete a project
// @Description Owner or administrator only.
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} projects.MessageResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /projects/{id} [delete]
func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.rd.Error(w, r, err)
		return
	}
	h.rd.JSON(w, http.StatusOK, MessageResponse{Message: "project removed"})
}
