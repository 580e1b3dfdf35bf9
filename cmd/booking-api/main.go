package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/tutorhive/booking-api/internal/catalog"
	"github.com/tutorhive/booking-api/internal/handler"
	"github.com/tutorhive/booking-api/internal/lock"
	"github.com/tutorhive/booking-api/internal/meeting"
	"github.com/tutorhive/booking-api/internal/middleware"
	"github.com/tutorhive/booking-api/internal/payment"
	"github.com/tutorhive/booking-api/internal/repository"
	"github.com/tutorhive/booking-api/internal/service"
	"github.com/tutorhive/booking-api/pkg/clock"
	"github.com/tutorhive/booking-api/pkg/config"
	"github.com/tutorhive/booking-api/pkg/jobs"
	"github.com/tutorhive/booking-api/pkg/logger"
	corsmiddleware "github.com/tutorhive/booking-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tutorhive/booking-api/pkg/middleware/requestid"
)

// @title TutorHive Booking API
// @version 0.1.0
// @description Booking and scheduling engine for the tutoring marketplace
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	validate := validator.New()
	clk := clock.System()

	teachers := catalog.Seeded(cfg.Booking.DefaultDayStartHour, cfg.Booking.DefaultDayEndHour, cfg.Booking.SlotGranularity)
	bookings := repository.NewInMemoryBookingRepository()

	var locker lock.Locker
	if cfg.Redis.Enabled {
		redisLocker, err := lock.NewRedisLocker(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis lock", "error", err)
		}
		defer redisLocker.Close() //nolint:errcheck
		locker = redisLocker
	} else {
		locker = lock.NewMutexLocker()
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	availability := service.NewAvailabilityService(teachers, bookings, clk, logr)
	search := service.NewSearchService(teachers, logr)
	pricing := service.NewPricingService(validate, logr)
	planner := service.NewPlannerService(validate, logr)

	dispatcher := service.NewEventDispatcher(meeting.NewStubIssuer(""), jobs.QueueConfig{
		Workers:    cfg.Jobs.Workers,
		MaxRetries: cfg.Jobs.MaxRetries,
		RetryDelay: cfg.Jobs.RetryDelay,
		Logger:     logr,
	}, logr)

	ledger := service.NewLedgerService(bookings, availability, pricing, planner, locker, payment.NewStubProcessor(logr), service.LedgerOptions{
		Metrics:            metrics,
		Events:             dispatcher,
		Clock:              clk,
		Validator:          validate,
		Logger:             logr,
		CancellationNotice: cfg.Booking.CancellationNotice,
	})
	dispatcher.Bind(ledger, ledger)
	dispatcher.Start(context.Background())
	defer dispatcher.Stop()

	wizard := service.NewWizardService(teachers, availability, pricing, planner, ledger, service.WizardOptions{
		TTL:       cfg.Booking.WizardSessionTTL,
		Metrics:   metrics,
		Clock:     clk,
		Validator: validate,
		Logger:    logr,
	})

	var exports *service.HistoryExportService
	if cfg.Exports.Enabled {
		exports = service.NewHistoryExportService(ledger, teachers, clk, logr)
	}

	teacherHandler := handler.NewTeacherHandler(search, availability, cfg.Booking.MaxSearchDateRange)
	quoteHandler := handler.NewQuoteHandler(pricing)
	bookingHandler := handler.NewBookingHandler(ledger, exports)
	wizardHandler := handler.NewWizardHandler(wizard)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if metrics != nil {
		metricsHandler := handler.NewMetricsHandler(metrics)
		r.GET("/metrics", metricsHandler.Scrape)
	}

	r.GET("/teachers", teacherHandler.List)
	r.GET("/teachers/:id", teacherHandler.Get)
	r.GET("/teachers/:id/slots", teacherHandler.Slots)

	r.POST("/quotes", quoteHandler.Quote)

	r.POST("/bookings", bookingHandler.Create)
	r.GET("/bookings", bookingHandler.List)
	r.GET("/bookings/export", bookingHandler.Export)
	r.GET("/bookings/:id", bookingHandler.Get)
	r.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	r.POST("/bookings/:id/cancel", bookingHandler.Cancel)
	r.POST("/bookings/:id/reschedule", bookingHandler.Reschedule)
	r.POST("/bookings/:id/complete", bookingHandler.Complete)

	r.POST("/wizard", wizardHandler.Start)
	r.GET("/wizard/:id", wizardHandler.Get)
	r.POST("/wizard/:id/teacher", wizardHandler.SelectTeacher)
	r.POST("/wizard/:id/datetime", wizardHandler.SelectDateTime)
	r.POST("/wizard/:id/session-type", wizardHandler.SelectSessionType)
	r.POST("/wizard/:id/back", wizardHandler.Back)
	r.POST("/wizard/:id/confirm", wizardHandler.Confirm)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
