package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/iliyamo/alumni-connect/internal/config"
	"github.com/iliyamo/alumni-connect/internal/database"
	"github.com/iliyamo/alumni-connect/internal/handler"
	"github.com/iliyamo/alumni-connect/internal/logger"
	"github.com/iliyamo/alumni-connect/internal/middleware"
	"github.com/iliyamo/alumni-connect/internal/queue"
	"github.com/iliyamo/alumni-connect/internal/repository"
	"github.com/iliyamo/alumni-connect/internal/router"
	"github.com/iliyamo/alumni-connect/internal/service"
	"github.com/iliyamo/alumni-connect/internal/storage"
	"github.com/iliyamo/alumni-connect/internal/validator"
)

func main() {
	cfg := config.Load() // Load environment config
	if err := logger.Init(cfg.LogLevel, cfg.IsDev()); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	lg := logger.WithModule("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	})
	if err != nil {
		lg.Fatal("connect database", zap.Error(err))
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			lg.Fatal("migrate database", zap.Error(err))
		}
	}

	upload := config.LoadUploadConfig()
	pictures, err := storage.NewPictureStore(upload.Dir, upload.PublicPrefix, upload.MaxBytes)
	if err != nil {
		lg.Fatal("prepare upload dir", zap.Error(err))
	}

	// Redis is optional: without it caching and rate limiting pass through.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		lg.Warn("redis unavailable, cache and rate limit disabled")
	}

	qcfg := config.LoadQueueConfig()
	var (
		events    service.EventPublisher
		publisher *queue.Publisher
	)
	if qcfg.Enabled {
		publisher = queue.NewPublisher(qcfg.URL, qcfg.Name)
		events = publisher
	}

	mail := config.LoadMailConfig()
	consumerDone := make(chan struct{})
	if qcfg.Enabled && mail.Enabled() {
		consumer := queue.NewConsumer(qcfg.URL, qcfg.Name, queue.NewSMTPMailer(mail))
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("notification consumer stopped", zap.Error(err))
			}
		}()
	} else {
		close(consumerDone)
	}

	users := repository.NewUserRepo(db)
	opps := repository.NewOpportunityRepo(db)
	apps := repository.NewApplicationRepo(db)
	mentorship := repository.NewMentorshipRepo(db)
	workshops := repository.NewWorkshopRepo(db)

	notifications := service.NewNotificationService(repository.NewNotificationRepo(db), users, events)
	handlers := router.Handlers{
		Auth:  handler.NewAuthHandler(service.NewAuthService(users, cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute, cfg.BcryptCost)),
		Users: handler.NewUserHandler(service.NewUserService(users, pictures)),
		Opportunities: handler.NewOpportunityHandler(
			service.NewOpportunityService(opps, apps, users),
			service.NewApplicationService(opps, apps, notifications),
		),
		Mentorship:    handler.NewMentorshipHandler(service.NewMentorshipService(users, mentorship, notifications)),
		Workshops:     handler.NewWorkshopHandler(service.NewWorkshopService(workshops, users, notifications)),
		Notifications: handler.NewNotificationHandler(notifications),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.EchoValidator{}
	e.HTTPErrorHandler = handler.ErrorHandler(cfg.IsDev())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: splitOrigins(cfg.CORSOrigins)}))
	e.Use(echomw.BodyLimit(fmt.Sprintf("%dK", (upload.MaxBytes+(1<<20))/1024)))

	router.Register(e, handlers, router.Options{
		JWTSecret: cfg.JWTSecret,
		UploadDir: upload.Dir,
		UploadURL: upload.PublicPrefix,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Redis:     rdb,
		DB:        db,
	})

	addr := ":" + cfg.Port
	go func() {
		lg.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = e.Shutdown(shutdownCtx)
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
	}
	if publisher != nil {
		err = multierr.Append(err, publisher.Close())
	}
	if rdb != nil {
		err = multierr.Append(err, rdb.Close())
	}
	err = multierr.Append(err, db.Close())
	if err != nil {
		lg.Error("shutdown", zap.Error(err))
		os.Exit(1)
	}
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
