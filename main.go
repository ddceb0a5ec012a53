// Command portfolio-go is the backend of a personal site: accounts, a blog with comments,
// a portfolio project listing and a contact form.
//
// @title Portfolio API
// @version 1.0
// @description Accounts, blog with comments, portfolio projects and a contact form.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/user/portfolio-go/apperror"
	"github.com/user/portfolio-go/auth"
	"github.com/user/portfolio-go/config"
	"github.com/user/portfolio-go/db"
	_ "github.com/user/portfolio-go/docs"
	"github.com/user/portfolio-go/logging"
	"github.com/user/portfolio-go/storage"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "portfolio-go",
		Usage: "personal site backend",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP server",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "apply pending migrations before serving"},
				},
				Action: serveCommand,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending migrations",
				Action: migrateCommand,
			},
			{
				Name:  "promote",
				Usage: "grant the administrator role to a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "email of the user to promote", Required: true},
				},
				Action: promoteCommand,
			},
		},
		DefaultCommand: "serve",
	}
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap(ctx context.Context) (*config.AppConfig, *slog.Logger, *db.Handle, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, nil, apperror.NewConfigError("failed to load config", err)
	}

	logger := logging.New(os.Stdout, cfg.IsProduction())
	slog.SetDefault(logger)

	handle, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	logger.Info("database connected", "driver", handle.Driver)
	return cfg, logger, handle, nil
}

func migrateCommand(c *cli.Context) error {
	cfg, logger, handle, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer handle.Close()

	if err := db.Migrate(c.Context, handle, cfg.Database, logger); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func promoteCommand(c *cli.Context) error {
	cfg, logger, handle, err := bootstrap(c.Context)
	if err != nil {
		return err
	}
	defer handle.Close()

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	if err != nil {
		return apperror.NewConfigError("invalid token configuration", err)
	}
	store := storage.New(handle.DB)
	identity, err := auth.NewService(store.Identities, tokens, logger).Promote(c.Context, c.String("email"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s (%s) is now an administrator\n", identity.Username, identity.Email)
	return nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, handle, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer handle.Close()

	if c.Bool("migrate") {
		if err := db.Migrate(ctx, handle, cfg.Database, logger); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	app, err := newApplication(cfg, logger, storage.New(handle.DB))
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      app.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
