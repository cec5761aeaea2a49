// Command server is the process entry point, wiring config, logging,
// storage and every manager/handler together before starting the HTTP
// listener. Adapted from the teacher's root main.go: load config, init
// logger and database, construct dependencies, register routes, run.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"caretime/auth"
	"caretime/availability"
	"caretime/booking"
	"caretime/config"
	"caretime/credentials"
	"caretime/database"
	"caretime/database/availabilityrepo"
	"caretime/database/patientrepo"
	"caretime/database/providerrepo"
	"caretime/database/securityeventrepo"
	"caretime/database/sessionrepo"
	"caretime/database/verificationrepo"
	"caretime/handlers"
	"caretime/logging"
	"caretime/middleware"
	"caretime/models"
	"caretime/notify"
	"caretime/ratelimit"
	"caretime/registration"
	"caretime/retention"
	"caretime/routes"
	"caretime/search"
)

func main() {
	config.Load()
	logging.Init(config.AppConfig.Env)
	logger := logging.L()
	defer logger.Sync()

	if err := database.Connect(config.AppConfig.MongoURI, config.AppConfig.MongoDatabase); err != nil {
		logger.Fatal("connect to mongodb", zap.Error(err))
	}

	providers := providerrepo.New(database.DB)
	patients := patientrepo.New(database.DB)
	templates := availabilityrepo.New(database.DB)
	sessions := sessionrepo.New(database.DB)
	events := securityeventrepo.New(database.DB)
	verifications := verificationrepo.New(database.DB)
	ensureIndexes(logger, providers, patients, templates, sessions, events, verifications)

	authCacheClient := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAuthCacheDB,
	})
	rateLimitClient := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisRateLimitDB,
	})
	asynqOpt := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisAsynqDB,
	}

	minter := credentials.NewTokenMinter(config.AppConfig.AccessTokenSecret, config.AppConfig.RefreshTokenSecret)
	sessionCache := auth.NewSessionCache(authCacheClient)
	authManager := auth.New(sessions, events, sessionCache, minter, logger)
	limiter := ratelimit.NewGuard(rateLimitClient)

	verifySvc := registration.NewVerificationService(verifications, patients, logger)
	providerReg := registration.NewProviderService(providers, logger)
	patientReg := registration.NewPatientService(patients, verifySvc, logger)

	availabilityMgr := availability.New(templates, providers, logger)
	dispatcher := notify.NewDispatcher(asynqOpt)
	defer dispatcher.Close()
	bookingMgr := booking.New(templates, patients, logger).WithNotifier(dispatcher)
	searchSvc := search.New(templates, providers)

	worker := notify.NewWorker(asynqOpt, logger)
	go func() {
		if err := worker.Run(); err != nil {
			logger.Error("notification worker stopped", zap.Error(err))
		}
	}()
	defer worker.Shutdown()

	retentionScheduler := retention.New(events, sessions, logger)
	if err := retentionScheduler.Start(); err != nil {
		logger.Fatal("start retention scheduler", zap.Error(err))
	}
	defer retentionScheduler.Stop()

	providerHandler := handlers.NewProviderHandler(providerReg, authManager, providers, limiter, logger)
	patientHandler := handlers.NewPatientHandler(patientReg, verifySvc, authManager, patients, limiter, logger)
	availabilityHandler := handlers.NewAvailabilityHandler(availabilityMgr, logger)
	searchHandler := handlers.NewSearchHandler(searchSvc, logger)
	appointmentHandler := handlers.NewAppointmentHandler(bookingMgr, logger)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	routes.RegisterRoutes(router, routes.Handlers{
		Provider:     providerHandler,
		Patient:      patientHandler,
		Availability: availabilityHandler,
		Search:       searchHandler,
		Appointment:  appointmentHandler,
	}, routes.Auth{
		ProviderBearer: middleware.BearerAuth(minter, models.RoleProvider, logger),
		PatientBearer:  middleware.BearerAuth(minter, models.RolePatient, logger),
	}, logger)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}

	go func() {
		logger.Info("starting server", zap.String("port", config.AppConfig.AppPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error("mongo disconnect error", zap.Error(err))
	}
}

func ensureIndexes(logger *zap.Logger, providers providerrepo.Repository, patients patientrepo.Repository, templates availabilityrepo.Repository, sessions sessionrepo.Repository, events securityeventrepo.Repository, verifications verificationrepo.Repository) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	type indexer interface {
		EnsureIndexes(ctx context.Context) error
	}
	for name, repo := range map[string]indexer{
		"providers":     providers,
		"patients":      patients,
		"availability":  templates,
		"sessions":      sessions,
		"securityEvents": events,
		"verifications": verifications,
	} {
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Fatal("ensure indexes", zap.String("collection", name), zap.Error(err))
		}
	}
}
