package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/campus-ops/shift-attendance-api/api/swagger"
	"github.com/campus-ops/shift-attendance-api/internal/handler"
	"github.com/campus-ops/shift-attendance-api/internal/middleware"
	"github.com/campus-ops/shift-attendance-api/internal/models"
	"github.com/campus-ops/shift-attendance-api/internal/repository"
	"github.com/campus-ops/shift-attendance-api/internal/service"
	"github.com/campus-ops/shift-attendance-api/pkg/cache"
	"github.com/campus-ops/shift-attendance-api/pkg/config"
	"github.com/campus-ops/shift-attendance-api/pkg/database"
	"github.com/campus-ops/shift-attendance-api/pkg/jobs"
	"github.com/campus-ops/shift-attendance-api/pkg/logger"
	corsmiddleware "github.com/campus-ops/shift-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campus-ops/shift-attendance-api/pkg/middleware/requestid"
)

// @title Shift Attendance API
// @version 1.0.0
// @description Scan ingestion, classification and absence reconciliation for two-shift attendance.
// @BasePath /api/v1
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The engine stays correct without Redis; only report and summary
		// caching degrade to pass-through.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	attendanceRepo := repository.NewAttendanceRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	if err := settingsRepo.SeedDefaults(context.Background(), models.DefaultWindowSettings()); err != nil {
		logr.Sugar().Fatalw("failed to seed shift window settings", "error", err)
	}

	metrics := service.NewMetricsService()
	tokens := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration)
	windows := service.NewWindowService(settingsRepo, cfg.Scan.DefaultTimezone, logr)
	gate := service.NewDebounceGate(cfg.Scan.DebounceInterval, cfg.Scan.DuplicateSuppress, nil, logr)

	scans := service.NewScanService(gate, windows, studentRepo, attendanceRepo, metrics, nil, logr, service.ScanServiceConfig{
		StorageTimeout: cfg.Scan.StorageTimeout,
		RetryBackoff:   cfg.Scan.RetryBackoff,
	})
	reconciler := service.NewReconcilerService(windows, attendanceRepo, cacheRepo, metrics, logr, cfg.Reconciler.ReportTTL, nil)
	dashboard := service.NewDashboardService(attendanceRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	bulkQueue := jobs.NewQueue("bulk_scans", func(ctx context.Context, job jobs.Job) error {
		req, ok := job.Payload.(service.SubmitScanRequest)
		if !ok {
			logr.Sugar().Errorw("unexpected bulk job payload", "job_id", job.ID, "type", job.Type)
			return nil
		}
		_, err := scans.Submit(ctx, req)
		return err
	}, jobs.QueueConfig{
		Workers:    cfg.BulkImport.Workers,
		BufferSize: cfg.BulkImport.BufferSize,
		MaxRetries: cfg.BulkImport.MaxRetries,
		RetryDelay: cfg.BulkImport.RetryDelay,
		Logger:     logr,
	})
	bulkQueue.Start(ctx)
	defer bulkQueue.Stop()

	if cfg.Reconciler.Enabled {
		scheduler := service.NewReconcileScheduler(reconciler, gate, cfg.Reconciler.PollInterval, logr)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	scanHandler := handler.NewScanHandler(scans, bulkQueue)
	reconcileHandler := handler.NewReconcileHandler(reconciler)
	attendanceHandler := handler.NewAttendanceHandler(attendanceRepo, dashboard)
	studentHandler := handler.NewStudentHandler(studentRepo)
	settingsHandler := handler.NewSettingsHandler(windows)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Auth(tokens))
	{
		api.POST("/scans", scanHandler.Submit)
		api.POST("/scans/bulk", scanHandler.SubmitBulk)

		api.GET("/attendance", attendanceHandler.List)
		api.GET("/attendance/summary", attendanceHandler.Summary)

		api.GET("/students", studentHandler.List)
		api.GET("/students/:id", studentHandler.Get)

		api.GET("/reconciliation/last", reconcileHandler.Last)
		api.GET("/settings/windows", settingsHandler.GetWindows)

		admin := api.Group("")
		admin.Use(middleware.RequireAdmin())
		{
			admin.POST("/students", studentHandler.Create)
			admin.POST("/reconciliation/run", reconcileHandler.Run)
			admin.PUT("/settings/windows", settingsHandler.UpdateWindows)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
