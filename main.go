package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Thobbytosin/flowva-server/internal/config"
	"github.com/Thobbytosin/flowva-server/internal/container"
	"github.com/Thobbytosin/flowva-server/internal/handler"
	"github.com/Thobbytosin/flowva-server/internal/middleware"
	"github.com/Thobbytosin/flowva-server/internal/repository"
	"github.com/Thobbytosin/flowva-server/pkg/database"
	"github.com/Thobbytosin/flowva-server/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting flowva-server")

	ctx := context.Background()
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	users := repository.NewUserRepository(db)

	c, err := container.New(cfg, log, users)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}
	defer c.Close()

	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()

	r := chi.NewRouter()

	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.ClientOrigin), log))
	r.Use(middleware.RequestID(log))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.RateLimit(c.GetRedisClient(), middleware.RateLimitRequests, middleware.RateLimitWindow, log))

	authHandler := handler.NewAuthHandler(c)
	userHandler := handler.NewUserHandler(c)
	healthHandler := handler.NewHealthHandler(c)

	sessionAuth := middleware.SessionAuth(c.GetTokenService(), log)
	refreshTokens := middleware.RefreshTokens(c.GetAuthService(), c.GetTokenService(), c.GetCookieOptions(), log)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/account-verification", authHandler.AccountVerification)
			r.Post("/resend-verification-code", authHandler.ResendVerificationCode)
			r.Post("/signin", authHandler.Signin)
			r.Post("/login", authHandler.Signin)
			r.Post("/google-signin", authHandler.GoogleSignin)

			r.Group(func(r chi.Router) {
				r.Use(refreshTokens)
				r.Get("/refresh-tokens", authHandler.RefreshTokens)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Post("/forgot-password", userHandler.ForgotPassword)

			r.Group(func(r chi.Router) {
				r.Use(sessionAuth)
				r.Get("/me", userHandler.Me)
				r.Put("/update-user-preference", userHandler.UpdatePreferences)
			})
		})
	})

	r.Get("/test", healthHandler.Check)

	// Unknown routes answer 400, not 404, matching the error contract the
	// clients were built against.
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, `{"success":false,"message":"Route %s not found"}`, req.URL.Path)
	})

	log.Info("Router configured successfully")
	return r
}
