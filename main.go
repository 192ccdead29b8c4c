// File: venuebook/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venuebook/config"
	"venuebook/cron"
	"venuebook/database"
	bookingRepo "venuebook/database/repository/booking"
	venueRepo "venuebook/database/repository/venue"
	"venuebook/handlers"
	"venuebook/middleware"
	"venuebook/routes"
	"venuebook/services/availability"
	"venuebook/services/booking"
	"venuebook/services/cancellation"
	"venuebook/services/notification"
	"venuebook/services/verification"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// Backends.
	var mongoClient *mongo.Client
	if cfg.StoreDriver == "mongo" {
		if err := database.InitDB(); err != nil {
			logger.Fatal("main: failed to initialize MongoDB", zap.Error(err))
		}
		mongoClient = database.MongoClient
	}
	if cfg.VerificationStore == "redis" || cfg.WorkerEnabled {
		if err := utils.InitRedis(); err != nil {
			logger.Fatal("main: failed to initialize Redis", zap.Error(err))
		}
	}
	utils.StartHealthMonitor(rootCtx, utils.RedisClients(), mongoClient)

	// Repositories.
	repo, venues, err := buildRepositories(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("main: failed to build repositories", zap.Error(err))
	}

	// Services.
	clock := utils.NewClock()
	loc := cfg.Location()

	bookingService, err := booking.NewDefaultBookingService(repo, venues, clock, loc, cfg.InitialStatus(), logger.Named("booking"))
	if err != nil {
		logger.Fatal("main: booking service", zap.Error(err))
	}
	availabilityService, err := availability.NewDefaultAvailabilityService(repo, clock, loc)
	if err != nil {
		logger.Fatal("main: availability service", zap.Error(err))
	}

	codeStore, err := buildCodeStore(cfg)
	if err != nil {
		logger.Fatal("main: verification store", zap.Error(err))
	}
	verificationService, err := verification.NewDefaultVerificationService(codeStore, clock, cfg.OTPTTL, cfg.OTPRetention, logger.Named("verification"))
	if err != nil {
		logger.Fatal("main: verification service", zap.Error(err))
	}

	gateway, err := buildGateway(cfg, logger.Named("notification"))
	if err != nil {
		logger.Fatal("main: notification gateway", zap.Error(err))
	}
	cancellationService, err := cancellation.NewDefaultCancellationService(bookingService, verificationService, gateway, logger.Named("cancellation"))
	if err != nil {
		logger.Fatal("main: cancellation service", zap.Error(err))
	}

	// Background sweep of dead verification codes.
	var worker *cron.Worker
	if cfg.WorkerEnabled {
		worker, err = cron.NewWorker(cfg, verificationService, logger.Named("worker"))
		if err != nil {
			logger.Fatal("main: worker", zap.Error(err))
		}
		if err := worker.Start(rootCtx); err != nil {
			logger.Fatal("main: worker failed to start", zap.Error(err))
		}
	}

	// Handlers and routes.
	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(bookingService, availabilityService, logger.Named("http")),
		handlers.NewCancellationHandler(cancellationService, logger.Named("http")),
		handlers.NewAdminHandler(bookingService, logger.Named("http")),
	)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	err = routes.RegisterRoutes(router, handlerBundle, routes.Options{
		AdminSecret:                []byte(cfg.JWTSecret),
		CancellationRequestsPerMin: cfg.CancelRequestsPerMin,
		ConfirmAttemptsPerMin:      cfg.ConfirmAttemptsPerMin,
		TrustedProxies:             cfg.TrustedProxies,
	})
	if err != nil {
		logger.Fatal("main: routes", zap.Error(err))
	}

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	if worker != nil {
		worker.Shutdown()
	}
	utils.CloseRedis()
	if err := database.CloseDB(ctx); err != nil {
		logger.Sugar().Warnf("main: error disconnecting MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

// buildRepositories picks the booking store and venue directory for
// STORE_DRIVER. Mongo venue lookups go through the Redis capacity cache
// when Redis is connected.
func buildRepositories(ctx context.Context, cfg config.Config, logger *zap.Logger) (bookingRepo.BookingRepository, venueRepo.VenueDirectory, error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("Using in-memory booking store; bookings are lost on restart")
		return bookingRepo.NewMemoryBookingRepo(), venueRepo.NewMemoryVenueDirectory(cfg.Venues...), nil
	}

	db := database.Database()
	repo := bookingRepo.NewMongoBookingRepo(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}

	var venues venueRepo.VenueDirectory = venueRepo.NewMongoVenueDirectory(db)
	if client := utils.GetCacheClient(); client != nil {
		cached, err := venueRepo.NewCachedDirectory(venues, client, cfg.VenueCacheTTL, logger.Named("venue-cache"))
		if err != nil {
			return nil, nil, err
		}
		venues = cached
	}
	return repo, venues, nil
}

func buildCodeStore(cfg config.Config) (verification.CodeStore, error) {
	if cfg.VerificationStore == "memory" {
		return verification.NewMemoryCodeStore(), nil
	}
	return verification.NewRedisCodeStore(utils.GetOTPCacheClient())
}

func buildGateway(cfg config.Config, logger *zap.Logger) (notification.Gateway, error) {
	if cfg.NotifyDriver == "whatsapp" {
		return notification.NewWhatsAppGateway(cfg.NotifyAPIURL, cfg.NotifyAPIToken, logger)
	}
	return notification.NewLogGateway(logger), nil
}
