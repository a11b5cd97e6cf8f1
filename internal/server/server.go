// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where the
// database, services, handlers, and middleware are assembled and bound to
// URL patterns. main.go stays minimal: load config, create the server,
// start it.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/boardnomore/internal/auth"
	"github.com/sakif/boardnomore/internal/config"
	"github.com/sakif/boardnomore/internal/handler"
	"github.com/sakif/boardnomore/internal/middleware"
	sqliteRepo "github.com/sakif/boardnomore/internal/repository/sqlite"
	"github.com/sakif/boardnomore/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The server owns the database connection: graceful shutdown closes it
// after in-flight requests drain, flushing the WAL and releasing the file
// lock.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the given config.
//
// DEPENDENCY CHAIN:
//  1. sqlite.New opens the database (and runs migrations)
//  2. services receive the repository interfaces
//  3. handlers receive the services
//  4. setupRoutes binds handlers to URL patterns
//
// Each layer only receives what it needs: handlers never touch SQL,
// services never touch HTTP.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /api/auth/register                          → create account, set cookie
//	POST   /api/auth/login                             → verify credentials, set cookie
//	POST   /api/auth/logout                            → clear cookie
//	GET    /api/auth/me                                → current user           [auth]
//	GET    /api/games                                  → catalog (?search=, ?tags=)
//	GET    /api/games/{id}                             → one game
//	GET    /api/sessions                               → list with filters
//	POST   /api/sessions                               → create                 [auth]
//	GET    /api/sessions/{id}                          → detail view
//	PUT    /api/sessions/{id}                          → edit                   [auth, host]
//	DELETE /api/sessions/{id}                          → delete                 [auth, host]
//	POST   /api/sessions/{id}/join                     → join                   [auth]
//	DELETE /api/sessions/{id}/leave                    → leave                  [auth]
//	GET    /api/sessions/{id}/comments                 → flat comment log
//	POST   /api/sessions/{id}/comments                 → post comment           [auth]
//	PUT    /api/comments/{id}                          → edit comment           [auth, author]
//	DELETE /api/comments/{id}                          → delete comment         [auth, author/host]
//	GET    /api/users/{id}                             → public profile
//	PUT    /api/users/{id}                             → edit profile           [auth, owner]
//	GET    /api/users/{id}/availability                → weekly availability
//	PUT    /api/users/{id}/availability                → set weekly availability [auth, owner]
//	POST   /api/users/{id}/favorites/{gameId}          → add favorite game      [auth, owner]
//	DELETE /api/users/{id}/favorites/{gameId}          → remove favorite game   [auth, owner]
//	GET    /api/users/{id}/sessions/hosted             → sessions the user hosts
//	GET    /api/users/{id}/sessions/attending          → sessions the user attends
func (s *Server) setupRoutes() error {
	// Global middleware, in order: request ID, real IP, panic recovery,
	// then our structured request log.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authSvc := service.NewAuthService(s.db, passwords, tokens, s.logger)
	gameSvc := service.NewGameService(s.db)
	sessionSvc := service.NewSessionService(s.db, s.db, s.db, s.db, s.config.HostLeavePolicy, s.logger)
	commentSvc := service.NewCommentService(s.db, s.db, s.logger)
	profileSvc := service.NewProfileService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, s.logger)
	gameHandler := handler.NewGameHandler(gameSvc, s.logger)
	sessionHandler := handler.NewSessionHandler(sessionSvc, commentSvc, s.logger)
	commentHandler := handler.NewCommentHandler(commentSvc, s.logger)
	profileHandler := handler.NewProfileHandler(profileSvc, sessionSvc, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/logout", authHandler.HandleLogout)
			r.With(requireAuth).Get("/me", authHandler.HandleMe)
		})

		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.HandleList)
			r.Get("/{id}", gameHandler.HandleGet)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.HandleList)
			r.Get("/{id}", sessionHandler.HandleGet)
			r.Get("/{id}/comments", sessionHandler.HandleListComments)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", sessionHandler.HandleCreate)
				r.Put("/{id}", sessionHandler.HandleUpdate)
				r.Delete("/{id}", sessionHandler.HandleDelete)
				r.Post("/{id}/join", sessionHandler.HandleJoin)
				r.Delete("/{id}/leave", sessionHandler.HandleLeave)
				r.Post("/{id}/comments", sessionHandler.HandlePostComment)
			})
		})

		r.Route("/comments", func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/{id}", commentHandler.HandleUpdate)
			r.Delete("/{id}", commentHandler.HandleDelete)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{id}", profileHandler.HandleGet)
			r.Get("/{id}/availability", profileHandler.HandleGetAvailability)
			r.Get("/{id}/sessions/hosted", profileHandler.HandleHostedSessions)
			r.Get("/{id}/sessions/attending", profileHandler.HandleAttendingSessions)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Put("/{id}", profileHandler.HandleUpdate)
				r.Put("/{id}/availability", profileHandler.HandleSetAvailability)
				r.Post("/{id}/favorites/{gameId}", profileHandler.HandleAddFavorite)
				r.Delete("/{id}/favorites/{gameId}", profileHandler.HandleRemoveFavorite)
			})
		})
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// Shutdown sequence: stop accepting connections, wait up to 30s for
// in-flight requests, then close the database connection.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
