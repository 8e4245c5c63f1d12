package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Eursukkul/booking-microservice/reservation-service/config"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/consumer"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/handler"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/jobs"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/lock"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/middleware"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/repository"
	"github.com/Eursukkul/booking-microservice/reservation-service/internal/service"
	"github.com/Eursukkul/booking-microservice/reservation-service/pkg/database"
	"github.com/Eursukkul/booking-microservice/reservation-service/pkg/rabbitmq"
	"github.com/Eursukkul/booking-microservice/reservation-service/pkg/websocket"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
)

const serviceName = "reservation-service"

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db := database.NewDB(cfg)

	// Per-site write lock: redis when configured, in-process otherwise
	var locker lock.Locker = lock.NewLocalLocker()
	redisClient := database.NewRedisClient(cfg.RedisURL)
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient, 0)
	}

	// Live calendar hub
	hub := websocket.NewHub()
	go hub.Run(ctx)
	publishers := service.MultiPublisher{hub}

	// RabbitMQ is optional: without it events only reach websocket clients
	// and park configuration must be loaded directly into the DB.
	if cfg.RabbitURL != "" {
		mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqPublisher.Close()
		publishers = append(publishers, mqPublisher)

		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatalf("failed to start consuming: %v", err)
		}
		consumer.NewParkConsumer(db).Start(msgs)
	}

	// Repositories
	tx := repository.NewTransactor(db)
	siteRepo := repository.NewSiteRepository(db)
	resRepo := repository.NewReservationRepository(db)
	holdRepo := repository.NewHoldRepository(db)
	rateRepo := repository.NewRateRepository(db)

	// Services
	availabilitySvc := service.NewAvailabilityService(siteRepo, resRepo)
	quoteSvc := service.NewQuoteService(siteRepo, resRepo, rateRepo)
	holdSvc := service.NewHoldService(tx, siteRepo, resRepo, holdRepo, locker, publishers, cfg.HoldTTL)
	reservationSvc := service.NewReservationService(tx, siteRepo, resRepo, holdRepo, rateRepo, quoteSvc, locker, publishers, service.ReservationOptions{
		StrictHolds:     cfg.StrictHolds(),
		BulkConcurrency: cfg.BulkConcurrency,
	})
	depositSvc := service.NewDepositService(rateRepo)
	forecastSvc := service.NewForecastService(siteRepo, resRepo, rateRepo)

	// Scheduled jobs
	scheduler := jobs.NewScheduler(holdSvc, reservationSvc)
	if err := scheduler.Start(cfg.HoldSweepSchedule, cfg.UnderpaidScanSchedule); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer scheduler.Stop()

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewValidator()
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": serviceName})
	})
	e.GET("/ready", func(c echo.Context) error {
		reqCtx := c.Request().Context()
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(reqCtx)
		}
		if err == nil && redisClient != nil {
			err = redisClient.Ping(reqCtx).Err()
		}
		if err != nil {
			log.Printf("[Ready] %v", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "service": serviceName})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready", "service": serviceName})
	})
	e.GET("/ws", echo.WrapHandler(hub))

	handler.NewAvailabilityHandler(availabilitySvc).RegisterRoutes(e)
	handler.NewHoldHandler(holdSvc).RegisterRoutes(e)
	handler.NewQuoteHandler(quoteSvc).RegisterRoutes(e)
	handler.NewReservationHandler(reservationSvc).RegisterRoutes(e)
	handler.NewDepositHandler(depositSvc).RegisterRoutes(e)
	handler.NewForecastHandler(forecastSvc).RegisterRoutes(e)

	go func() {
		log.Printf("Reservation Service starting on :%s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Reservation Service shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
