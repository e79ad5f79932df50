package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"yamdb/internal/api/handler"
	"yamdb/internal/api/middleware"
	"yamdb/internal/api/router"
	"yamdb/internal/api/service"
	"yamdb/internal/api/validation"
	"yamdb/internal/cache"
	"yamdb/internal/logging"
	"yamdb/internal/mail"
	"yamdb/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server (default)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	validation.Register()

	rdb, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		log.Warn().Msg("REDIS_URL not set, signup resend throttle disabled")
	}

	m := metrics.New()

	sender, err := mail.NewSender(cfg, logging.For(log, "mail"))
	if err != nil {
		return err
	}
	dispatcher := mail.NewDispatcher(sender, cfg.MailTimeout, logging.For(log, "mail"), m)

	repos := newRepositories(db.Gorm)
	authService := service.NewAuthService(
		repos.users,
		service.NewConfirmationCodes(cfg.JWTSecret, cfg.ConfirmationCodeTTL),
		service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry),
		dispatcher,
		cache.NewSignupThrottle(rdb, cfg.SignupResendCooldown, logging.For(log, "throttle")),
		m,
		logging.For(log, "auth"),
	)

	checks := map[string]handler.Pinger{"database": db}
	if rdb != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	} else {
		checks["redis"] = nil
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.New(router.Deps{
			Logger:          log,
			Metrics:         m,
			AuthService:     authService,
			UserService:     repos.userService(),
			TaxonomyService: service.NewTaxonomyService(repos.categories, repos.genres),
			TitleService:    service.NewTitleService(repos.titles, repos.categories, repos.genres),
			ReviewService:   service.NewReviewService(repos.reviews, repos.titles),
			CommentService:  service.NewCommentService(repos.comments, repos.reviews),
			AuthLimiter:     middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
			HealthChecks:    checks,
			PageSize:        cfg.PageSize,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.GoEnv).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		log.Info().Msg("received shutdown signal")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped gracefully")
	return nil
}
