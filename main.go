package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookline/config"
	"bookline/cron"
	"bookline/database"
	appointmentRepoPkg "bookline/database/repository/appointment"
	notificationRepoPkg "bookline/database/repository/notification"
	requestRepoPkg "bookline/database/repository/request"
	"bookline/handlers"
	"bookline/middleware"
	"bookline/realtime"
	"bookline/routes"
	"bookline/services/directory"
	"bookline/services/notification"
	"bookline/services/scheduling"
	"bookline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.FirebaseInit()

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	requestRepo := requestRepoPkg.NewMongoRequestRepo()
	appointmentRepo := appointmentRepoPkg.NewMongoAppointmentRepo()
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo()

	// async task queue client (shared by the dispatcher and reminder scanner).
	taskQueue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	})
	defer taskQueue.Close()

	// services.
	hub := realtime.NewHub()
	tokenStore := &notification.RedisTokenStore{Client: utils.GetCacheClient()}
	directorySvc := directory.NewHTTPDirectory(config.AppConfig.DirectoryBaseURL, utils.GetCacheClient())

	dispatcher := &notification.DefaultDispatcher{
		Repo:      notificationRepo,
		Live:      hub,
		Directory: directorySvc,
		Tokens:    tokenStore,
		Queue:     taskQueue,
		Cache:     utils.GetCacheClient(),
		FCM:       utils.FCMClient,
	}

	schedulingService := &scheduling.DefaultSchedulingService{
		Requests:     requestRepo,
		Appointments: appointmentRepo,
		Dispatcher:   dispatcher,
	}

	notificationService := &notification.DefaultNotificationService{
		Repo:  notificationRepo,
		Cache: utils.GetCacheClient(),
	}

	// background workers.
	cron.InitNotificationWorker(dispatcher, appointmentRepo)
	scannerCtx, stopScanner := context.WithCancel(context.Background())
	defer stopScanner()
	cron.StartReminderScanner(scannerCtx, appointmentRepo, taskQueue)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Requests:      handlers.NewRequestHandler(schedulingService),
		Appointments:  handlers.NewAppointmentHandler(schedulingService),
		Notifications: handlers.NewNotificationHandler(notificationService),
		Stream:        handlers.NewStreamHandler(hub),
		Devices:       handlers.NewDeviceHandler(tokenStore),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	stopScanner()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
