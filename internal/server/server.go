// Package server wires the application together: router, middleware, the
// dependency graph from database to handlers, and graceful shutdown.
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

	"github.com/tiktik/tiktik/internal/auth"
	"github.com/tiktik/tiktik/internal/handler"
	"github.com/tiktik/tiktik/internal/middleware"
	sqliteRepo "github.com/tiktik/tiktik/internal/repository/sqlite"
	"github.com/tiktik/tiktik/internal/service"
	"github.com/tiktik/tiktik/internal/upload"
)

// Config holds server configuration, populated from env vars in main.
type Config struct {
	Port               int
	TemplateDir        string
	StaticDir          string
	DBPath             string
	UploadDir          string
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the database connection. The connection is
// closed during shutdown, after in-flight requests drain.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and assembles the whole dependency chain:
// database → repositories → services → handlers → routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the database connection. Start does this itself; Close is
// for callers that never Start, such as tests.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" && s.config.GitHubClientSecret != "" {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	} else {
		s.logger.Warn("GitHub OAuth not configured — only email/password login available")
	}

	store, err := upload.NewStore(s.config.UploadDir)
	if err != nil {
		return fmt.Errorf("creating upload store: %w", err)
	}

	users := s.db.Users()
	authService := service.NewAuthService(users, tokens, auth.NewPasswordService(), s.logger)
	videoService := service.NewVideoService(s.db.Videos(), s.db.Engagement(), store, s.logger)
	socialService := service.NewSocialService(
		s.db.Comments(), s.db.Engagement(), s.db.Playlists(), s.db.Activity(), s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	videoHandler := handler.NewVideoHandler(videoService, s.logger)
	commentHandler := handler.NewCommentHandler(socialService, s.logger)
	socialHandler := handler.NewSocialHandler(socialService, s.logger)
	adminHandler := handler.NewAdminHandler(videoService, authService, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)
	requireAdmin := auth.RequireAdmin(users)

	// Static files and stored uploads.
	s.router.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.Dir(s.config.StaticDir))))
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(store.Dir()))))

	// OAuth lives outside /api: these are browser navigations, not XHR.
	s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.With(requireAuth).Get("/me", authHandler.HandleMe)

		r.Get("/videos", videoHandler.HandleList)
		r.Get("/videos/{id}", videoHandler.HandleGet)
		r.With(requireAuth).Post("/videos", videoHandler.HandleCreate)
		r.With(requireAuth).Post("/videos/upload", videoHandler.HandleUpload)
		r.With(optionalAuth).Post("/videos/{id}/view", videoHandler.HandleView)
		r.With(requireAuth).Post("/videos/{id}/like", videoHandler.HandleReact)
		r.Get("/videos/{id}/chapters", videoHandler.HandleListChapters)
		r.With(requireAuth).Post("/videos/{id}/chapters", videoHandler.HandleAddChapter)
		r.Get("/videos/{id}/subtitles", videoHandler.HandleListSubtitles)
		r.With(requireAuth).Post("/videos/{id}/subtitles", videoHandler.HandleAddSubtitle)
		r.With(requireAuth).Get("/feed", videoHandler.HandleFeed)
		r.Get("/analytics/{videoId}", videoHandler.HandleAnalytics)

		r.Get("/comments/{videoId}", commentHandler.HandleList)
		r.With(requireAuth).Post("/comments", commentHandler.HandleCreate)
		r.With(requireAuth).Delete("/comments/{id}", commentHandler.HandleDelete)
		r.With(requireAuth).Post("/comments/{id}/like", commentHandler.HandleReact)

		r.With(requireAuth).Post("/subscriptions", socialHandler.HandleToggleSubscription)
		r.Get("/subscriptions/{userId}", socialHandler.HandleListSubscriptions)
		r.Get("/subscriptions/{userId}/videos", videoHandler.HandleSubscriptionVideos)

		r.With(requireAuth).Post("/watch-later", socialHandler.HandleToggleWatchLater)
		r.Get("/watch-later/{userId}", socialHandler.HandleWatchLater)
		r.With(requireAuth).Post("/watch-history", socialHandler.HandleReportWatchTime)
		r.Get("/watch-history/{userId}", socialHandler.HandleWatchHistory)

		r.With(requireAuth).Post("/playlists", socialHandler.HandleCreatePlaylist)
		r.Get("/playlists/{userId}", socialHandler.HandleListPlaylists)
		r.With(requireAuth).Post("/playlists/{id}/videos", socialHandler.HandleAddToPlaylist)
		r.Get("/playlists/{id}/videos", socialHandler.HandlePlaylistVideos)

		r.Get("/notifications/{userId}", socialHandler.HandleNotifications)
		r.Post("/notifications/{id}/read", socialHandler.HandleMarkNotificationRead)

		r.With(requireAuth).Post("/reports", socialHandler.HandleCreateReport)
		r.With(requireAuth).Get("/revenue/{userId}", socialHandler.HandleRevenue)
		r.With(requireAuth).Get("/memberships", socialHandler.HandleMemberships)

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(requireAdmin)
			r.Get("/videos", adminHandler.HandleListPending)
			r.Post("/videos/{id}/approve", adminHandler.HandleApprove)
			r.Post("/videos/{id}/reject", adminHandler.HandleReject)
			r.Delete("/videos/{id}", adminHandler.HandleDeleteVideo)
			r.Get("/users", adminHandler.HandleListUsers)
		})
	})

	// The SPA shell answers every remaining path so client-side routes
	// survive a reload.
	appHandler, err := handler.NewAppHandler(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating app handler: %w", err)
	}
	s.router.Get("/", appHandler.HandleApp)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) >= 5 && r.URL.Path[:5] == "/api/" {
			http.NotFound(w, r)
			return
		}
		appHandler.HandleApp(w, r)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	// ReadTimeout must cover a full video upload on a slow link.
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       10 * time.Minute,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
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
