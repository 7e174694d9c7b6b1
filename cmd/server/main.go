package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cancer-not-cancer/api/internal/api"
	"github.com/cancer-not-cancer/api/internal/app/service"
	"github.com/cancer-not-cancer/api/internal/common/security"
	"github.com/cancer-not-cancer/api/internal/domain/repository"
	"github.com/cancer-not-cancer/api/internal/platform/config"
	"github.com/cancer-not-cancer/api/internal/platform/database"
	"github.com/cancer-not-cancer/api/internal/platform/session"

	log "github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Configuration
	config.Load()
	log.Info("Configuration loaded")

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	if err := database.CreateSchema(database.DB); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}

	// 4. Initialize Redis session store
	session.ConnectRedis()
	defer session.CloseRedis()
	sessions := session.NewStore(session.RDB)

	if err := os.MkdirAll(config.AppConfig.ImageDir, 0o755); err != nil {
		log.Fatalf("Failed to create image directory: %v", err)
	}

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	imageRepo := repository.NewPgImageRepository(database.DB)
	ratingRepo := repository.NewPgRatingRepository(database.DB)
	taskRepo := repository.NewPgTaskRepository(database.DB)
	tagRepo := repository.NewPgTagRepository(database.DB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, sessions)
	userService := service.NewUserService(userRepo)
	imageService := service.NewImageService(imageRepo)
	ratingService := service.NewRatingService(ratingRepo, database.DB)
	dataService := service.NewDataService(ratingRepo)
	taskService := service.NewTaskService(taskRepo, database.DB)
	tagService := service.NewTagService(tagRepo, database.DB)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(
		authService, userService, imageService,
		ratingService, dataService, taskService, tagService,
		userRepo,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", config.AppConfig.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server stopped gracefully")
}
