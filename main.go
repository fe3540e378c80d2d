package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"autoshop-server/internal/config"
	"autoshop-server/internal/handlers"
	"autoshop-server/internal/middleware"
	"autoshop-server/internal/models"
	"autoshop-server/internal/notify"
	"autoshop-server/internal/repository"
	"autoshop-server/internal/routes"
	"autoshop-server/internal/scheduling"
	"autoshop-server/internal/services"
	"autoshop-server/internal/utils"
)

func main() {
	// Environment variables may also come from the process environment.
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger := utils.NewLogger(cfg.Environment, cfg.LogLevel)
	if envErr != nil {
		logger.WithError(envErr).Debug("no .env file loaded")
	}

	db, err := models.InitDB(models.DatabaseConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.WithError(err).Fatal("error connecting to database")
	}

	store := repository.NewStore(db, cfg.Database.TxOptions())
	settings := services.Settings{
		Hours:   scheduling.ShopHoursFromConfig(cfg.Shop),
		TaxRate: cfg.Shop.TaxRate,
	}

	notifier, closeNotifier := newNotifier(cfg, logger)
	defer closeNotifier()

	invoiceService := services.NewInvoiceService(store, settings, logger)
	appointmentService := services.NewAppointmentService(store, settings, invoiceService, notifier, logger)
	modificationService := services.NewModificationService(store, settings, logger)
	scheduleService := services.NewScheduleService(store, settings, logger)

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	var extra []gin.HandlerFunc
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer rdb.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, rate limiting will fail open")
		}
		cancel()

		limiter := middleware.NewRateLimiter(rdb, cfg.Redis.RateLimitPerMinute, time.Minute, "autoshop:rl")
		extra = append(extra, limiter.Middleware(logger))
	}

	routes.SetupRoutes(router, routes.Handlers{
		Appointments:  handlers.NewAppointmentHandler(appointmentService, logger),
		Modifications: handlers.NewModificationHandler(modificationService, logger),
		Schedules:     handlers.NewScheduleHandler(scheduleService, logger),
		Invoices:      handlers.NewInvoiceHandler(invoiceService, logger),
	}, cfg.JWTSecret, extra...)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	logger.WithFields(logrus.Fields{
		"port":      cfg.Port,
		"db_driver": cfg.Database.Driver,
		"timezone":  settings.Hours.Location.String(),
	}).Info("server starting")
	if err := router.Run(serverAddr); err != nil {
		logger.WithError(err).Fatal("failed to start server")
	}
}

// newNotifier picks the customer notification channel: Kafka when brokers are
// configured, SMTP when a mail host is, log output otherwise.
func newNotifier(cfg *config.Config, logger *logrus.Logger) (notify.Notifier, func()) {
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		n := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic)
		logger.WithField("topic", cfg.Kafka.NotifyTopic).Info("notifications go to kafka")
		return n, func() {
			if err := n.Close(); err != nil {
				logger.WithError(err).Warn("closing kafka writer failed")
			}
		}
	case cfg.Mailer.Host != "":
		logger.WithField("smtp_host", cfg.Mailer.Host).Info("notifications go to smtp")
		return notify.NewSMTPNotifier(cfg.Mailer.Host, cfg.Mailer.Port, cfg.Mailer.DefaultFrom), func() {}
	default:
		logger.Info("notifications are logged only")
		return notify.NewLogNotifier(logger), func() {}
	}
}
