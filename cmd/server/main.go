package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	appservice "github.com/Aditya-max148/student-risk-dashboard/internal/application/service"
	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	domainservice "github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/crypto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/messaging"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/monitoring"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/notify"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/persistence/postgres"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/persistence/redis"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/ratelimit"
	"github.com/Aditya-max148/student-risk-dashboard/internal/interfaces/http"
	"github.com/Aditya-max148/student-risk-dashboard/internal/interfaces/http/handlers"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

func main() {
	// Logger for startup
	startupLogger, err := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})
	if err != nil {
		log.Fatalf("Failed to create startup logger: %v", err)
	}

	// Load config
	loader := config.NewLoader(startupLogger, os.Getenv("STUDENT_RISK_CONFIG"))
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	loader.Watch(func(next *config.Config) {
		if next.Log.Level != appLogger.Level() {
			appLogger.SetLevel(next.Log.Level)
			appLogger.Info(context.Background(), "Log level changed", logger.Fields{"level": next.Log.Level})
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal(context.Background(), "Server exited with error", err)
	}
	appLogger.Info(context.Background(), "Server stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger logger.Logger) error {
	gin.SetMode(gin.ReleaseMode)

	// Initialize tracing
	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		return err
	}
	defer shutdownWithTimeout(appLogger, "tracing", tracing.Shutdown)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(registry)
	serviceMetrics := monitoring.NewMetricsAdapter(metrics)

	// Initialize database
	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	// Initialize Redis (optional)
	var (
		redisConn   *redis.RedisConnection
		redisClient goredis.UniversalClient
		limiter     domainservice.RateLimitService = ratelimit.NewLocalRateLimiter()
	)
	if cfg.Redis.Enabled {
		redisConn = redis.NewRedisConnection(&cfg.Redis, appLogger)
		if err := redisConn.Connect(ctx); err != nil {
			return err
		}
		defer redisConn.Close()
		redisClient = redisConn.Client()

		redisLimiter, err := ratelimit.NewRedisRateLimiter(redisClient, appLogger)
		if err != nil {
			return err
		}
		limiter = redisLimiter
	}
	settingsCache := redis.NewSettingsCache(redisClient, cfg.Risk.CacheTTLDuration(), appLogger)

	// Events
	var publisher domainservice.EventPublisher = messaging.NewLogPublisher(appLogger)
	var consumer *messaging.SettingsConsumer
	if cfg.Kafka.Enabled {
		publisher = messaging.NewKafkaPublisher(cfg.Kafka, appLogger)
		consumer = messaging.NewSettingsConsumer(cfg.Kafka, settingsCache, appLogger)
	}
	defer publisher.Close()

	// Initialize repositories
	gdb := db.DB()
	studentRepo := postgres.NewStudentRepository(gdb, serviceMetrics, appLogger)
	settingsRepo := postgres.NewSettingsRepository(gdb, appLogger)
	contactRepo := postgres.NewContactRepository(gdb, appLogger)
	counselorRepo := postgres.NewCounselorRepository(gdb, appLogger)
	uploadRepo := postgres.NewUploadRepository(gdb)
	observationRepo := postgres.NewObservationRepository(gdb)

	// Initialize domain and application services
	evaluator, err := domainservice.NewRiskEvaluator(domainservice.Weights{
		Attendance: cfg.Risk.Weights.Attendance,
		Exam:       cfg.Risk.Weights.Exam,
		Fee:        cfg.Risk.Weights.Fee,
	})
	if err != nil {
		return err
	}
	settingsSvc := appservice.NewSettingsAppService(settingsRepo, settingsCache, publisher, serviceMetrics, appLogger)
	riskSvc := appservice.NewRiskAppService(settingsSvc, evaluator, studentRepo, contactRepo, publisher, serviceMetrics, tracing, appLogger, cfg.Risk.BatchWorkers)
	uploadSvc := appservice.NewUploadAppService(studentRepo, uploadRepo, observationRepo, publisher, serviceMetrics, tracing, appLogger)
	reportSvc := appservice.NewReportAppService(riskSvc, settingsSvc, observationRepo, appLogger)
	alertSvc := appservice.NewAlertAppService(riskSvc, reportSvc, studentRepo, contactRepo, notify.NewNotifiers(cfg.Alerts, appLogger), publisher, serviceMetrics, tracing, appLogger)
	counselorSvc := appservice.NewCounselorAppService(counselorRepo, appLogger)

	jwtManager, err := crypto.NewJWTManager(cfg.Auth)
	if err != nil {
		return err
	}

	// Initialize HTTP handlers and router
	checks := map[string]handlers.Pinger{"database": db}
	if redisConn != nil {
		checks["redis"] = redisConn
	}
	router := http.NewRouter(cfg, appLogger, http.Handlers{
		Health:    handlers.NewHealthHandler(checks, appLogger),
		Settings:  handlers.NewSettingsHandler(settingsSvc, appLogger),
		Risk:      handlers.NewRiskHandler(riskSvc),
		Upload:    handlers.NewUploadHandler(uploadSvc, appLogger),
		Report:    handlers.NewReportHandler(reportSvc),
		Alert:     handlers.NewAlertHandler(alertSvc, appLogger),
		Counselor: handlers.NewCounselorHandler(counselorSvc),
	}, http.Dependencies{
		Verifier:       jwtManager,
		Limiter:        limiter,
		HTTPMetrics:    metrics,
		ServiceMetrics: serviceMetrics,
		Gatherer:       registry,
		Tracing:        tracing,
		Redis:          redisClient,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(router.Start)
	if consumer != nil {
		g.Go(func() error {
			defer consumer.Close()
			return consumer.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		return router.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func shutdownWithTimeout(log logger.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Warn(ctx, "Shutdown failed", logger.Fields{"component": name, "error": err.Error()})
	}
}
