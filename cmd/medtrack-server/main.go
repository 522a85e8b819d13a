package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medtrack/medtrack/internal/config"
	"github.com/medtrack/medtrack/internal/domain/audit"
	"github.com/medtrack/medtrack/internal/domain/course"
	"github.com/medtrack/medtrack/internal/domain/medicine"
	"github.com/medtrack/medtrack/internal/domain/reminder"
	"github.com/medtrack/medtrack/internal/domain/user"
	"github.com/medtrack/medtrack/internal/platform/auth"
	"github.com/medtrack/medtrack/internal/platform/db"
	"github.com/medtrack/medtrack/internal/platform/middleware"
	"github.com/medtrack/medtrack/internal/platform/notify"
	"github.com/medtrack/medtrack/internal/platform/timezone"
	"github.com/medtrack/medtrack/internal/platform/worker"
)

// devUserID is the identity every request runs as when the server starts in
// development mode without a JWT secret.
var devUserID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// intakeActions adapts the course service to the narrower interface the
// inbound Telegram command path needs.
type intakeActions struct {
	svc *course.Service
}

func (a intakeActions) MarkTaken(ctx context.Context, intakeID, actorID uuid.UUID, now time.Time) error {
	_, err := a.svc.MarkTaken(ctx, intakeID, actorID, now)
	return err
}

func (a intakeActions) MarkSkipped(ctx context.Context, intakeID, actorID uuid.UUID, reason string, now time.Time) error {
	_, err := a.svc.MarkSkipped(ctx, intakeID, actorID, reason, now)
	return err
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "medtrack-server",
		Short: "Medication intake tracking API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and background workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s).\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (default from config)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "", "Path to migrations directory (default from config)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			country, _ := cmd.Flags().GetString("country")

			u := &user.User{Email: email, Name: name}
			if country != "" {
				u.CountryCode = &country
			}
			svc := user.NewService(user.NewRepoPG(pool), timezone.NewResolver())
			if err := svc.Create(ctx, u); err != nil {
				return err
			}
			fmt.Println(u.ID)
			return nil
		},
	}
	createCmd.Flags().String("email", "", "User email")
	createCmd.Flags().String("name", "", "Display name")
	createCmd.Flags().String("country", "", "ISO country code for time zone resolution")
	_ = createCmd.MarkFlagRequired("email")
	_ = createCmd.MarkFlagRequired("name")
	cmd.AddCommand(createCmd)

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for a user (local testing)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}
			userArg, _ := cmd.Flags().GetString("user")
			userID, err := uuid.Parse(userArg)
			if err != nil {
				return fmt.Errorf("--user must be a UUID: %w", err)
			}
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := auth.IssueToken([]byte(cfg.JWTSecret), userID, ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User id the token is issued for")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	txRunner := db.NewTxRunner(pool)
	zones := timezone.NewResolver()

	// Services
	auditRepo := audit.NewRepoPG(pool)
	auditRec := audit.NewRecorder(auditRepo, logger)

	userRepo := user.NewRepoPG(pool)
	userSvc := user.NewService(userRepo, zones)

	medRepo := medicine.NewRepoPG(pool)
	medSvc := medicine.NewService(medRepo)

	courseRepo := course.NewCourseRepoPG(pool)
	intakeRepo := course.NewIntakeRepoPG(pool)
	courseSvc := course.NewService(courseRepo, intakeRepo, medSvc, userSvc, auditRec, txRunner)

	// Notification channels
	router := notify.NewRouter()
	if cfg.PushoverAppToken != "" {
		router.Register(notify.KindPushover, notify.NewPushoverSender(cfg.PushoverAppToken))
	}
	var telegramListener *notify.TelegramListener
	if cfg.TelegramBotToken != "" {
		bot, err := notify.NewTelegramBot(cfg.TelegramBotToken, cfg.NotifyTimeout)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Telegram")
		}
		router.Register(notify.KindTelegram, notify.NewTelegramSender(bot))
		telegramListener = notify.NewTelegramListener(bot, userSvc, intakeActions{svc: courseSvc}, logger)
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	if cfg.JWTSecret != "" {
		apiV1.Use(auth.JWTMiddleware([]byte(cfg.JWTSecret)))
	} else {
		logger.Warn().Msg("JWT_SECRET not set; every request runs as the development user")
		apiV1.Use(auth.DevAuthMiddleware(devUserID))
	}

	user.NewHandler(userSvc).RegisterRoutes(apiV1)
	medicine.NewHandler(medSvc).RegisterRoutes(apiV1)
	course.NewHandler(courseSvc).RegisterRoutes(apiV1)
	audit.NewHandler(auditRec).RegisterRoutes(apiV1)

	// Background workers
	runner := worker.NewRunner(logger)
	sweeper := course.NewStatusSweeper(courseRepo, auditRec, txRunner, logger)
	if err := runner.Schedule(cfg.SweepInterval, sweeper); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule status sweep")
	}
	dispatcher := reminder.NewDispatcher(reminder.NewDueListerPG(pool), userSvc, router, logger).
		WithLookahead(cfg.ReminderLookahead).
		WithSendTimeout(cfg.NotifyTimeout)
	if err := runner.Schedule(cfg.ReminderInterval, dispatcher); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule reminder dispatch")
	}
	runner.Start()

	listenerCtx, listenerCancel := context.WithCancel(ctx)
	defer listenerCancel()
	if telegramListener != nil {
		go telegramListener.Run(listenerCtx)
	}

	// Serve until signalled
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	listenerCancel()
	runner.Stop(10 * time.Second)

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
