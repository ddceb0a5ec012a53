package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/blog"
	"github.com/user/portfolio-go/comments"
	"github.com/user/portfolio-go/config"
	"github.com/user/portfolio-go/contact"
	"github.com/user/portfolio-go/logging"
	"github.com/user/portfolio-go/projects"
	"github.com/user/portfolio-go/render"
	"github.com/user/portfolio-go/storage"
	"github.com/user/portfolio-go/users"
)

// application holds the process-wide dependencies built once at start-up.
type application struct {
	cfg    *config.AppConfig
	logger *slog.Logger
	store  *storage.Store
	tokens *auth.TokenService
	rd     *render.Renderer
	guard  *auth.Guard
}

func newApplication(cfg *config.AppConfig, logger *slog.Logger, store *storage.Store) (*application, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	if err != nil {
		return nil, apperror.NewConfigError("invalid token configuration", err)
	}
	rd := render.New(logger, cfg.IsProduction())
	return &application{
		cfg:    cfg,
		logger: logger,
		store:  store,
		tokens: tokens,
		rd:     rd,
		guard:  auth.NewGuard(tokens, store.Identities, rd, logger, cfg.Auth.LookupTimeout),
	}, nil
}

func (a *application) routes() http.Handler {
	authHandlers := auth.NewHandlers(auth.NewService(a.store.Identities, a.tokens, a.logger), a.rd)
	userHandlers := users.NewHandlers(a.rd)
	blogHandler := blog.NewHandler(blog.NewService(a.store.Posts, a.logger), a.guard, a.rd)
	commentHandler := comments.NewHandler(comments.NewService(a.store.Comments, a.store.Posts, a.logger), a.guard, a.rd)
	projectHandler := projects.NewHandler(projects.NewService(a.store.Projects, a.logger), a.guard, a.rd)
	contactHandler := contact.NewHandler(a.store.Messages, a.guard, a.rd, a.logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Middleware(a.logger))
	r.Use(a.rd.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))
	r.Use(middleware.SetHeader("Referrer-Policy", "no-referrer"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.rd.Error(w, r, apperror.NewNotFoundError("not found - "+r.URL.Path, nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.rd.Error(w, r, apperror.NewMethodNotAllowedError("method not allowed - "+r.Method+" "+r.URL.Path, nil))
	})

	r.Get("/healthz", a.handleHealth)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", authHandlers.HandleRegister())
			r.Post("/login", authHandlers.HandleLogin())
			r.With(a.guard.Authenticate).Get("/me", userHandlers.HandleMe())
		})
		r.Route("/blog", func(r chi.Router) {
			blogHandler.RegisterRoutes(r)
			r.Route("/{postId}/comments", commentHandler.RegisterRoutes)
		})
		r.Route("/projects", projectHandler.RegisterRoutes)
		r.Route("/contact", contactHandler.RegisterRoutes)
	})

	return r
}

type healthResponse struct {
	Status string `json:"status"`
}

func (a *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.store.Ping(ctx); err != nil {
		a.logger.ErrorContext(r.Context(), "health check failed", "error", err)
		a.rd.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	a.rd.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
