package main

import (
	"alcyxob/exercise-tracker/internal/api"
	"alcyxob/exercise-tracker/internal/config"
	"alcyxob/exercise-tracker/internal/logger"
	"alcyxob/exercise-tracker/internal/repository"
	"alcyxob/exercise-tracker/internal/repository/memory"
	"alcyxob/exercise-tracker/internal/repository/mongo"
	"alcyxob/exercise-tracker/internal/service"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	indexTimeout    = 1 * time.Minute
	shutdownTimeout = 5 * time.Second
)

type stores struct {
	users     repository.UserRepository
	exercises repository.ExerciseRepository
	health    repository.HealthChecker
	close     func()
}

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level)
	defer func() { _ = log.Sync() }()
	log.Infow("configuration loaded", "driver", cfg.Database.Driver, "address", cfg.Server.Address())

	// --- Persistence ---
	st, err := openStores(cfg.Database, log)
	if err != nil {
		log.Fatalw("could not initialise persistence", "err", err)
	}
	defer st.close()

	// --- Services ---
	userService := service.NewUserService(st.users)
	exerciseService := service.NewExerciseService(st.users, st.exercises)

	// --- Router ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	if err := api.SetupRoutes(router, log, st.health, userService, exerciseService); err != nil {
		log.Fatalw("could not set up routes", "err", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Infow("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("listen and serve", "err", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
	log.Infow("server exited")
}

// openStores connects the configured backend. The returned close func releases it.
func openStores(cfg config.DatabaseConfig, log *logger.Logger) (*stores, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warnw("using in-memory store; data is lost on restart")
		return &stores{
			users:     memory.NewUserRepository(),
			exercises: memory.NewExerciseRepository(),
			health:    memory.HealthChecker{},
			close:     func() {},
		}, nil
	}

	client, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	db := client.Database(cfg.Name)
	log.Infow("database connection established", "database", cfg.Name)

	// Index creation does not block serving.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := mongo.EnsureExerciseIndexes(ctx, db.Collection("exercises")); err != nil {
			log.Warnw("failed to create exercise indexes", "err", err)
			return
		}
		log.Infow("index creation completed")
	}()

	return &stores{
		users:     mongo.NewMongoUserRepository(db),
		exercises: mongo.NewMongoExerciseRepository(db),
		health:    mongo.NewHealthChecker(client),
		close: func() {
			log.Infow("disconnecting MongoDB")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Errorw("failed to disconnect MongoDB", "err", err)
			}
		},
	}, nil
}
