// Package server is the composition root: it opens the store, builds the
// services and handlers, and mounts them on a chi router.
//
//	config.Config → Store (sqlite | memory) → services → handlers → routes
//
// Handlers only see services and services only see repository interfaces,
// so swapping the storage backend is a matter of which Store New builds.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/problemspark/internal/auth"
	"github.com/sakif/problemspark/internal/config"
	"github.com/sakif/problemspark/internal/handler"
	"github.com/sakif/problemspark/internal/middleware"
	"github.com/sakif/problemspark/internal/repository"
	"github.com/sakif/problemspark/internal/repository/memory"
	sqliteRepo "github.com/sakif/problemspark/internal/repository/sqlite"
	"github.com/sakif/problemspark/internal/seed"
	"github.com/sakif/problemspark/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server owns the router and the store. The store is closed when Start
// returns.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	store  repository.Store
}

// New opens the configured store and wires every route.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		store:  store,
	}

	if err := s.setupRoutes(); err != nil {
		store.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// OpenStore opens the backend named by cfg.Store. A memory store is seeded
// with the sample problems when cfg.Seed is set.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		store := memory.New()
		if cfg.Seed {
			data, err := seed.Default()
			if err != nil {
				return nil, err
			}
			sum, err := seed.Apply(ctx, store, data)
			if err != nil {
				return nil, fmt.Errorf("seeding memory store: %w", err)
			}
			logger.Info("memory store seeded",
				slog.Int("problems", sum.Problems),
				slog.Int("comments", sum.Comments),
			)
		}
		return store, nil

	case config.StoreSQLite:
		if cfg.DBPath != ":memory:" {
			dir := filepath.Dir(cfg.DBPath)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes mounts every route.
//
// GET    /                              feed page
// GET    /problems/{id}                 problem page
// GET    /static/*                      CSS
// GET    /api/industries                industry labels
// GET    /api/problems                  feed (industry, q, sort, limit, offset)
// POST   /api/problems                  create                       [auth]
// GET    /api/problems/{id}             problem + comment tree
// PATCH  /api/problems/{id}             author-only partial update   [auth]
// GET    /api/problems/{id}/comments    comment tree
// POST   /api/problems/{id}/comments    comment or reply             [auth]
// POST   /api/problems/{id}/vote        upvote / downvote            [auth]
// GET    /api/users/{id}/problems       problems by author
// GET    /api/me                        current user                 [auth]
// POST   /auth/signup, /auth/login, /auth/logout
// GET    /auth/github/login, /auth/github/callback   (GitHub configured only)
//
// Middleware order: RequestID first so the logger can print it, Recoverer
// innermost so a panic still gets logged as a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret, auth.DefaultSessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	problemService := service.NewProblemService(s.store, s.store, s.logger)
	commentService := service.NewCommentService(s.store, s.store, s.logger)
	voteService := service.NewVoteService(s.store, s.logger)
	authService := service.NewAuthService(s.store, tokens, auth.NewPasswordService(), s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	}

	problemHandler := handler.NewProblemHandler(problemService, s.logger)
	commentHandler := handler.NewCommentHandler(commentService, s.logger)
	voteHandler := handler.NewVoteHandler(voteService, s.logger)
	authHandler := handler.NewAuthHandler(authService, github, tokens.TTL(), s.config.SecureCookies, s.logger)
	pageHandler, err := handler.NewPageHandler(s.config.TemplateDir, problemService, authService, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	s.router.Group(func(r chi.Router) {
		r.Use(optionalAuth)
		r.Get("/", pageHandler.HandleFeed)
		r.Get("/problems/{id}", pageHandler.HandleProblem)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/industries", problemHandler.HandleIndustries)
		r.Get("/problems", problemHandler.HandleFeed)
		r.Get("/problems/{id}", problemHandler.HandleGet)
		r.Get("/problems/{id}/comments", commentHandler.HandleList)
		r.Get("/users/{id}/problems", problemHandler.HandleListByAuthor)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/problems", problemHandler.HandleCreate)
			r.Patch("/problems/{id}", problemHandler.HandleUpdate)
			r.Post("/problems/{id}/comments", commentHandler.HandleCreate)
			r.Post("/problems/{id}/vote", voteHandler.HandleVote)
			r.Get("/me", authHandler.HandleMe)
		})
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	return nil
}

// Start serves HTTP until ctx is cancelled, then drains in-flight requests
// for up to 30 seconds and closes the store.
func (s *Server) Start(ctx context.Context) error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("store", s.config.Store),
			slog.Bool("github", s.config.GitHubEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}

// Close releases the store without starting the server. Tests use it.
func (s *Server) Close() error {
	return s.store.Close()
}
