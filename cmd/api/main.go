package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/kohei-dev/student-management-api/api/swagger"
	"github.com/kohei-dev/student-management-api/internal/converter"
	"github.com/kohei-dev/student-management-api/internal/handler"
	"github.com/kohei-dev/student-management-api/internal/middleware"
	"github.com/kohei-dev/student-management-api/internal/repository"
	"github.com/kohei-dev/student-management-api/internal/service"
	"github.com/kohei-dev/student-management-api/pkg/cache"
	"github.com/kohei-dev/student-management-api/pkg/config"
	"github.com/kohei-dev/student-management-api/pkg/database"
	appErrors "github.com/kohei-dev/student-management-api/pkg/errors"
	"github.com/kohei-dev/student-management-api/pkg/logger"
	corsmiddleware "github.com/kohei-dev/student-management-api/pkg/middleware/cors"
	reqidmiddleware "github.com/kohei-dev/student-management-api/pkg/middleware/requestid"
	"github.com/kohei-dev/student-management-api/pkg/response"
)

// @title Student Management API
// @version 1.0.0
// @description Admin API for managing student and course registrations.
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
	sugar := logr.Sugar()

	if cfg.Database.Migrate {
		if err := database.Migrate(cfg.Database); err != nil {
			sugar.Fatalw("migration failed", "error", err)
		}
		sugar.Infow("migrations applied", "path", cfg.Database.MigrationsPath)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	cacheSvc := service.NewCacheService(nil, metricsSvc, cfg.Roster.CacheTTL, logr, false)
	if cfg.Roster.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			sugar.Warnw("redis unavailable, roster cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient), metricsSvc, cfg.Roster.CacheTTL, logr, true)
		}
	}

	studentRepo := repository.NewStudentRepository(db)
	conv := converter.NewStudentConverter(cfg.Roster.PlaceholderCourse)
	studentSvc := service.NewStudentService(studentRepo, conv, cacheSvc, logr)

	studentHandler := handler.NewStudentHandler(studentSvc, nil)
	if cfg.Export.Enabled {
		studentHandler = handler.NewStudentHandler(studentSvc, service.NewExportService(studentSvc))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidAccess, "no handler for "+c.Request.URL.Path))
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/students", studentHandler.List)
		api.GET("/students/export", studentHandler.Export)
		api.GET("/students/:studentId", studentHandler.Get)
		api.POST("/students", studentHandler.Register)
		api.PUT("/students", studentHandler.Update)
		api.DELETE("/students/:studentId", studentHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	sugar.Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		sugar.Fatalw("server failed", "error", err)
	}
}
