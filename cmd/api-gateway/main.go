package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/Ragul198/Event/api/swagger"
	"github.com/Ragul198/Event/internal/handler"
	"github.com/Ragul198/Event/internal/middleware"
	"github.com/Ragul198/Event/internal/repository"
	"github.com/Ragul198/Event/internal/service"
	"github.com/Ragul198/Event/pkg/cache"
	"github.com/Ragul198/Event/pkg/config"
	"github.com/Ragul198/Event/pkg/database"
	"github.com/Ragul198/Event/pkg/email"
	"github.com/Ragul198/Event/pkg/logger"
	corsmiddleware "github.com/Ragul198/Event/pkg/middleware/cors"
	reqidmiddleware "github.com/Ragul198/Event/pkg/middleware/requestid"
	"github.com/Ragul198/Event/pkg/storage"
)

// @title College Event Registration API
// @version 1.0.0
// @description Event listings, registrations and the admin dashboard.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect row store", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}

	objects, uploadsDir, err := newObjectStore(cfg.Storage)
	if err != nil {
		logr.Fatal("failed to init object storage", zap.Error(err))
	}
	exportFiles, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}

	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Stats.CacheTTL, logr, cfg.Stats.CacheEnabled && redisClient != nil)

	broker := service.NewSessionBroker(16, logr)
	sessionSvc := service.NewSessionService(cacheRepo, studentRepo, broker, logr, service.SessionConfig{
		JWTSecret:       cfg.Auth.JWTSecret,
		Issuer:          cfg.Auth.Issuer,
		Audience:        cfg.Auth.Audience,
		BackendURL:      cfg.Auth.BackendURL,
		DefaultProvider: cfg.Auth.Provider,
		RedirectURL:     cfg.Auth.RedirectURL,
	})
	authzSvc := service.NewAuthzService(studentRepo, metricsSvc, logr, cfg.Auth.RoleMemoTTL)
	authzSvc.Watch(ctx, sessionSvc)

	notificationSvc := service.NewNotificationService(newSender(cfg.Notifications, logr), metricsSvc, logr, service.NotificationConfig{
		Workers:    cfg.Notifications.Workers,
		MaxRetries: cfg.Notifications.Retries,
		Backoff:    2 * time.Second,
	})
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	eventSvc := service.NewEventService(eventRepo, registrationRepo, objects, cacheSvc, metricsSvc, nil, logr, service.EventServiceConfig{
		Visibility:    cfg.Events.Visibility,
		Location:      cfg.Events.Location(),
		MaxImageBytes: cfg.Storage.MaxImageBytes,
		AllowedMIMEs:  cfg.Storage.AllowedMIMEs,
	})
	registrationSvc := service.NewRegistrationService(eventRepo, registrationRepo, notificationSvc, cacheSvc, metricsSvc, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, nil, logr)
	statsSvc := service.NewStatsService(participantRepo, cacheSvc, logr)
	rosterSvc := service.NewRosterService(eventRepo, participantRepo, registrationRepo, exportFiles,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL), cacheSvc, logr,
		service.RosterConfig{APIPrefix: cfg.APIPrefix, FileTTL: 24 * time.Hour})
	go runExportCleanup(ctx, rosterSvc, logr)

	checks := map[string]handler.ReadinessCheck{"database": database.Probe(db)}
	if redisClient != nil {
		checks["redis"] = cache.Probe(redisClient)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Session(sessionSvc))
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))

	registerRoutes(r, cfg, routeDeps{
		gate:        authzSvc,
		limiter:     middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
		logger:      logr,
		uploadsDir:  uploadsDir,
		auth:        handler.NewAuthHandler(sessionSvc, authzSvc, studentSvc, logr),
		events:      handler.NewEventHandler(eventSvc, registrationSvc, logr),
		students:    handler.NewStudentHandler(studentSvc, logr),
		adminEvents: handler.NewAdminEventHandler(eventSvc, logr),
		dashboard:   handler.NewDashboardHandler(statsSvc, rosterSvc, logr),
		metrics:     handler.NewMetricsHandler(metricsSvc, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(broker.Close)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// newObjectStore returns the configured image store and, for the local driver, the directory
// to serve under /uploads.
func newObjectStore(cfg config.StorageConfig) (storage.ObjectStore, string, error) {
	if cfg.Driver == config.StorageDriverRemote {
		return storage.NewRemoteBucket(cfg.RemoteURL, cfg.Bucket, cfg.ServiceKey, nil), "", nil
	}
	files, err := storage.NewLocalStorage(cfg.LocalDir)
	if err != nil {
		return nil, "", err
	}
	return storage.NewLocalBucket(files, cfg.PublicBaseURL), files.Dir(), nil
}

func newSender(cfg config.NotificationsConfig, logr *zap.Logger) email.Sender {
	if !cfg.Enabled || cfg.ResendAPIKey == "" {
		return email.NopSender{}
	}
	return email.NewResendSender(cfg.ResendAPIKey, cfg.From, logr)
}

func runExportCleanup(ctx context.Context, rosters *service.RosterService, logr *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := rosters.CleanupExports(); err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
			}
		}
	}
}
