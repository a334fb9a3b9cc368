package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusface/attendance-api/internal/config"
	"github.com/campusface/attendance-api/internal/database"
	"github.com/campusface/attendance-api/internal/handler"
	"github.com/campusface/attendance-api/internal/middleware"
	"github.com/campusface/attendance-api/internal/models"
	"github.com/campusface/attendance-api/internal/repository"
	"github.com/campusface/attendance-api/internal/router"
	"github.com/campusface/attendance-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Enrollment{},
		&models.ClassSession{},
		&models.AttendanceRecord{},
		&models.AuditEntry{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, analytics cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	} else {
		logger.Warn().Msg("nats url not configured, roster feed runs single-node")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	studentRepo := repository.NewStudentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	feedCtx, cancelFeed := context.WithCancel(context.Background())
	defer cancelFeed()

	rosterFeed := service.NewRosterFeed(natsConn, "attendance.roster", logger)
	rosterFeed.Start(feedCtx)

	dedup := service.NewDeduplicator(cfg.SuppressionInterval, cfg.DedupConfidenceMargin, logger)
	proxy := service.NewProxyDetector(attendanceRepo, cfg.ConfidenceFloor, logger)

	sessionService := service.NewSessionService(
		sessionRepo,
		studentRepo,
		attendanceRepo,
		dedup,
		proxy,
		validate,
		rosterFeed,
		service.SystemClock(),
		service.SessionConfig{
			DefaultGraceWindow: cfg.DefaultGraceWindow,
			CorrectionWindow:   cfg.CorrectionWindow,
		},
		logger,
	)
	studentService := service.NewStudentService(studentRepo, validate, logger)
	exportService := service.NewExportService(sessionRepo, studentRepo, attendanceRepo, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, redisClient, cfg.AnalyticsCacheTTL, cfg.LowAttendanceThreshold, logger)

	eventHandler := handler.NewEventHandler(sessionService, validate, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, rosterFeed, validate, logger)
	studentHandler := handler.NewStudentHandler(studentService, logger)
	exportHandler := handler.NewExportHandler(exportService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EventHandler:     eventHandler,
		SessionHandler:   sessionHandler,
		StudentHandler:   studentHandler,
		ExportHandler:    exportHandler,
		AnalyticsHandler: analyticsHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, sessionService)
}

func waitForShutdown(app *fiber.App, sessions service.SessionService) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	sessions.Shutdown()

	log.Println("server stopped")
}
