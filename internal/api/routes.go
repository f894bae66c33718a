package api

import (
	"alcyxob/exercise-tracker/internal/logger"
	"alcyxob/exercise-tracker/internal/repository"
	"alcyxob/exercise-tracker/internal/service"
	"alcyxob/exercise-tracker/web"
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const healthCheckTimeout = 2 * time.Second

// SetupRoutes installs the middleware chain and every route on router.
func SetupRoutes(
	router *gin.Engine,
	log *logger.Logger,
	health repository.HealthChecker,
	userService service.UserService,
	exerciseService service.ExerciseService,
) error {
	userHandler := NewUserHandler(userService, log)
	exerciseHandler := NewExerciseHandler(exerciseService, log)

	zl := log.Desugar()
	router.Use(RequestIDMiddleware())
	router.Use(ginzap.GinzapWithConfig(zl, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/metrics", "/healthz"},
		Context: func(c *gin.Context) []zapcore.Field {
			requestID, _ := getRequestIDFromContext(c)
			return []zapcore.Field{zap.String("request_id", requestID)}
		},
	}))
	router.Use(ginzap.RecoveryWithZap(zl, true))
	router.Use(cors.Default())
	router.Use(MetricsMiddleware())
	router.NoRoute(notFoundHandler)

	// --- Landing page ---
	indexHTML, err := fs.ReadFile(web.Assets, "views/index.html")
	if err != nil {
		return err
	}
	publicFS, err := fs.Sub(web.Assets, "public")
	if err != nil {
		return err
	}
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})
	router.StaticFS("/public", http.FS(publicFS))

	// --- Operational endpoints ---
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		if err := health.Ping(ctx); err != nil {
			log.Warnw("health_check_failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// --- API ---
	apiGroup := router.Group("/api")
	{
		users := apiGroup.Group("/users")
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.POST("/:_id/exercises", exerciseHandler.AddExercise)
			users.GET("/:_id/logs", exerciseHandler.GetLogs)
		}
	}

	return nil
}
