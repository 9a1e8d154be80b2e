// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config.Config and a logger, then
//
//	Server.New() creates: sqlite.DB → services → handlers → chi routes
//
// This is the "composition root" pattern — all dependencies are wired in one place
// (New/setupRoutes), rather than scattered across the codebase.
package server

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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/faq-chatbot/internal/auth"
	"github.com/sakif/faq-chatbot/internal/classifier"
	"github.com/sakif/faq-chatbot/internal/config"
	"github.com/sakif/faq-chatbot/internal/handler"
	"github.com/sakif/faq-chatbot/internal/middleware"
	sqliteRepo "github.com/sakif/faq-chatbot/internal/repository/sqlite"
	"github.com/sakif/faq-chatbot/internal/seed"
	"github.com/sakif/faq-chatbot/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. Start closes it after a graceful
// shutdown; callers that never call Start (tests) must call Close.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	tokens *auth.TokenService // nil when authentication is disabled
}

// New opens the database, applies the seed file if one is configured, and wires
// every route.
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
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                       → store ping
// GET    /chatbot                       → liveness message
// POST   /chatbot                       → answer (never stores)
// POST   /chatbot/nlp                   → ask the NLP classifier
// POST   /chatbot/add                   → add a question/answer pair
// GET    /chatbot/questions             → list
// POST   /admin/login, /admin/logout    → admin session
// *      /admin/questions[/{id}]        → question CRUD            (auth)
// *      /admin/admins[/{id}[/questions]] → admin CRUD             (auth)
// GET,POST /api/questions[/{id}]        → list, read, create-if-absent
// PUT,DELETE /api/questions/{id}        → edit, delete                 (auth)
// POST   /api/questions/chatbot         → answer, record unknown questions
// GET    /api/questions/test            → controller check
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Logger — logs each request with timing info and the request ID
// 4. Recoverer — catches panics and returns 500 instead of crashing
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	// === AUTH ===
	// Without JWT_SECRET, /admin is open. Useful locally, never in production.
	if s.config.AuthEnabled() {
		tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.JWTTTL)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		s.tokens = tokens
	} else {
		s.logger.Warn("JWT_SECRET not set, admin authentication is disabled")
	}

	// === CLASSIFIER ===
	// A nil interface (not a typed nil pointer) tells LookupService there is none.
	var cls service.Classifier
	if cc, ok := s.config.Classifier(); ok {
		cls = classifier.New(cc, s.logger)
		s.logger.Info("NLP classifier enabled",
			slog.String("baseURL", cc.BaseURL),
			slog.Duration("timeout", cc.Timeout),
			slog.Bool("oauth2", cc.TokenURL != ""),
		)
	}

	// === SERVICES ===
	// s.db implements both repository interfaces; services only see the interfaces.
	questionService := service.NewQuestionService(s.db, s.logger)
	lookupService := service.NewLookupService(s.db, cls, s.config.AnswerSource, s.logger)
	adminService := service.NewAdminService(s.db, s.db, auth.NewPasswordService(), s.tokens, s.logger)

	if s.config.SeedFile != "" {
		if _, err := seed.ApplyFile(context.Background(), questionService, s.config.SeedFile, s.logger); err != nil {
			return fmt.Errorf("applying seed file: %w", err)
		}
	}

	// === HANDLERS ===
	healthHandler := handler.NewHealthHandler(s.db, s.logger)
	chatbotHandler := handler.NewChatbotHandler(lookupService, questionService, s.logger)
	questionHandler := handler.NewQuestionHandler(questionService, lookupService, s.logger)
	adminHandler := handler.NewAdminHandler(questionService, adminService, s.logger)
	authHandler := handler.NewAuthHandler(adminService, s.logger)

	// requireAdmin guards the /admin surface and every other route that edits or
	// deletes stored questions. Without a token service it is a no-op.
	requireAdmin := func(r chi.Router) {
		if s.tokens != nil {
			r.Use(auth.RequireAuth(s.tokens, adminService.AdminExists))
		}
	}

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/chatbot", func(r chi.Router) {
		r.Get("/", chatbotHandler.HandleStatus)
		r.Post("/", chatbotHandler.HandleAsk)
		r.Post("/nlp", chatbotHandler.HandleClassify)
		r.Post("/add", chatbotHandler.HandleAdd)
		r.Get("/questions", chatbotHandler.HandleList)
	})

	s.router.Route("/api/questions", func(r chi.Router) {
		r.Get("/", questionHandler.HandleList)
		r.Post("/", questionHandler.HandleCreate)
		// Static segments are matched before {id}, so these never parse as ids.
		r.Get("/test", questionHandler.HandleTest)
		r.Post("/chatbot", questionHandler.HandleChatbot)
		r.Get("/{id}", questionHandler.HandleGet)

		// Same edits as /admin/questions/{id}, so the same token is required.
		r.Group(func(r chi.Router) {
			requireAdmin(r)
			r.Put("/{id}", questionHandler.HandleUpdate)
			r.Delete("/{id}", questionHandler.HandleDelete)
		})
	})

	s.router.Route("/admin", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			requireAdmin(r)

			r.Get("/questions", adminHandler.HandleListQuestions)
			r.Post("/questions", adminHandler.HandleCreateQuestion)
			r.Get("/questions/{id}", adminHandler.HandleGetQuestion)
			r.Put("/questions/{id}", adminHandler.HandleUpdateQuestion)
			r.Delete("/questions/{id}", adminHandler.HandleDeleteQuestion)

			r.Get("/admins", adminHandler.HandleListAdmins)
			r.Post("/admins", adminHandler.HandleCreateAdmin)
			r.Get("/admins/{id}", adminHandler.HandleGetAdmin)
			r.Put("/admins/{id}", adminHandler.HandleUpdateAdmin)
			r.Delete("/admins/{id}", adminHandler.HandleDeleteAdmin)
			r.Get("/admins/{id}/questions", adminHandler.HandleListAdminQuestions)
		})
	})

	return nil
}

// Handler exposes the router, for tests and for embedding in another server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.router,
		// The write timeout must outlast the classifier timeout on /chatbot/nlp.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15*time.Second + s.config.NLPTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("answerSource", string(s.config.AnswerSource)),
			slog.Bool("auth", s.tokens != nil),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
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
