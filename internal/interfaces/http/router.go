package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Aditya-max148/student-risk-dashboard/internal/application/dto"
	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/internal/infrastructure/monitoring"
	"github.com/Aditya-max148/student-risk-dashboard/internal/interfaces/http/handlers"
	"github.com/Aditya-max148/student-risk-dashboard/internal/interfaces/http/middleware"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/errors"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

const idempotencyTTL = 24 * time.Hour

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Health    *handlers.HealthHandler
	Settings  *handlers.SettingsHandler
	Risk      *handlers.RiskHandler
	Upload    *handlers.UploadHandler
	Report    *handlers.ReportHandler
	Alert     *handlers.AlertHandler
	Counselor *handlers.CounselorHandler
}

// Dependencies are the cross-cutting components the middleware chain needs.
// Limiter and Redis may be nil; rate limiting and idempotency are then off.
type Dependencies struct {
	Verifier       middleware.TokenVerifier
	Limiter        service.RateLimitService
	HTTPMetrics    middleware.HTTPMetrics
	ServiceMetrics service.Metrics
	Gatherer       prometheus.Gatherer
	Tracing        *monitoring.TracingManager
	Redis          redis.UniversalClient
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	config   *config.Config
	logger   logger.Logger
	handlers Handlers
	deps     Dependencies
	server   *http.Server
}

// NewRouter 创建路由器
func NewRouter(cfg *config.Config, log logger.Logger, h Handlers, deps Dependencies) *Router {
	if deps.ServiceMetrics == nil {
		deps.ServiceMetrics = service.NoopMetrics{}
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	handlers.RegisterValidatorTagNames()

	r := &Router{
		engine:   gin.New(),
		config:   cfg,
		logger:   log.WithComponent("http_router"),
		handlers: h,
		deps:     deps,
	}
	r.SetupRoutes()
	return r
}

// Engine exposes the gin engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// SetupRoutes 设置路由
func (r *Router) SetupRoutes() {
	// 全局中间件
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Recovery(r.logger))
	if r.deps.Tracing != nil {
		r.engine.Use(middleware.Tracing(r.deps.Tracing))
	}
	if r.deps.HTTPMetrics != nil {
		r.engine.Use(middleware.Metrics(r.deps.HTTPMetrics))
	}
	r.engine.Use(middleware.Logging(r.logger))

	// CORS 配置
	origins := r.config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", "Idempotency-Key", "If-None-Match"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "ETag"},
		AllowCredentials: !containsWildcard(origins),
		MaxAge:           12 * time.Hour,
	}))

	// 健康检查路由（不需要认证）
	r.engine.GET("/health/live", r.handlers.Health.Liveness)
	r.engine.GET("/health/ready", r.handlers.Health.Readiness)

	r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.deps.Gatherer, promhttp.HandlerOpts{})))

	if r.config.Server.EnablePprof {
		pprof.Register(r.engine)
	}

	admin := middleware.RequireAdmin(r.deps.Verifier, r.logger)
	idempotent := middleware.Idempotency(r.deps.Redis, idempotencyTTL, r.logger)

	v1 := r.engine.Group("/api/v1")
	if limit := r.rateLimit("api", r.config.RateLimit.DefaultRPM); limit != nil {
		v1.Use(limit)
	}
	{
		v1.GET("/settings", middleware.ETag(), r.handlers.Settings.GetSettings)
		v1.PUT("/settings", admin, r.handlers.Settings.ReplaceSettings)

		risk := v1.Group("/risk")
		{
			risk.POST("/evaluate", r.handlers.Risk.Evaluate)
			risk.GET("", middleware.ETag(), r.handlers.Risk.ListRisks)
		}

		v1.GET("/students/:id", r.handlers.Risk.GetStudent)
		v1.POST("/students/:id/contacts", admin, r.handlers.Alert.AddContact)
		v1.DELETE("/contacts/:id", admin, r.handlers.Alert.RemoveContact)

		upload := v1.Group("/upload")
		{
			upload.GET("/batches", r.handlers.Upload.RecentBatches)
			upload.POST("/:type", idempotent, r.handlers.Upload.Upload)
		}

		reports := v1.Group("/reports")
		{
			reports.GET("/summary", r.handlers.Report.Summary)
			reports.GET("/weekly", r.handlers.Report.Weekly)
			reports.GET("/export.csv", r.handlers.Report.ExportCSV)
		}

		alerts := v1.Group("/alerts")
		alerts.Use(admin)
		if limit := r.rateLimit("alerts", r.config.RateLimit.AlertsRPM); limit != nil {
			alerts.Use(limit)
		}
		{
			alerts.POST("/send", idempotent, r.handlers.Alert.SendAlerts)
		}

		counselors := v1.Group("/counselors")
		counselors.Use(admin)
		{
			counselors.POST("", r.handlers.Counselor.Create)
			counselors.GET("", r.handlers.Counselor.List)
			counselors.GET("/:id", r.handlers.Counselor.Get)
			counselors.PUT("/:id", r.handlers.Counselor.Update)
			counselors.DELETE("/:id", r.handlers.Counselor.Delete)
		}
	}

	// 404 处理
	r.engine.NoRoute(func(c *gin.Context) {
		dto.SendError(c, errors.NewError(errors.CodeNotFound, http.StatusNotFound,
			"The requested resource was not found", c.Request.Method+" "+c.Request.URL.Path))
	})
}

func (r *Router) rateLimit(scope string, rpm int) gin.HandlerFunc {
	if !r.config.RateLimit.Enabled || r.deps.Limiter == nil || rpm <= 0 {
		return nil
	}
	return middleware.RateLimit(r.deps.Limiter, scope, rpm, r.deps.ServiceMetrics, r.logger)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Start 启动 HTTP 服务器. It blocks until the server stops; a clean
// shutdown through Stop returns nil.
func (r *Router) Start() error {
	addr := r.config.Server.Addr()
	r.server = &http.Server{
		Addr:              addr,
		Handler:           r.engine,
		ReadTimeout:       time.Duration(r.config.Server.ReadTimeout) * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      time.Duration(r.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	r.logger.Info(context.Background(), "Starting HTTP server", logger.Fields{
		"address": addr,
		"service": constants.ServiceName,
	})

	if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop 停止 HTTP 服务器
func (r *Router) Stop(ctx context.Context) error {
	if r.server == nil {
		return nil
	}

	r.logger.Info(ctx, "Stopping HTTP server...")
	return r.server.Shutdown(ctx)
}
