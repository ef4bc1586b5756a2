package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lynk-app/backend/internal/models"
	"github.com/lynk-app/backend/internal/realtime"
	"github.com/lynk-app/backend/internal/repositories"
	"github.com/lynk-app/backend/internal/router"
	"github.com/lynk-app/backend/internal/storage"
	"github.com/lynk-app/backend/pkg/config"
	"github.com/lynk-app/backend/pkg/logger"
	"github.com/lynk-app/backend/validators"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel)

	// Initialize database connection
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	mongoDB := db.Mongo.Database("lynk")

	// Provision the system identity used for admin support replies
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	systemUser, err := ensureSystemUser(ctx, userRepo)
	cancel()
	if err != nil {
		log.Fatalf("Failed to provision system user: %v", err)
	}
	logger.L().Info("system user ready", zap.String("id", systemUser.ID.Hex()))

	// Choose file storage backend
	fileStorage, err := buildStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	hub := realtime.NewHub()

	router.SetupMiddleware(e, cfg)
	router.SetupRoutes(e, mongoDB, cfg, fileStorage, hub, systemUser.ID)

	logger.L().Info("server starting", zap.String("port", cfg.Port))
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

func ensureSystemUser(ctx context.Context, userRepo *repositories.MongoUserRepository) (*models.User, error) {
	// The system account never logs in; its password hash is random garbage
	hash, err := bcrypt.GenerateFromPassword([]byte(time.Now().String()), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return userRepo.EnsureSystemUser(ctx, string(hash))
}

func buildStorage(cfg *config.Config) (storage.FileStorage, error) {
	if cfg.S3Region != "" && cfg.S3Bucket != "" {
		return storage.NewS3Client(cfg.S3Region, cfg.S3Bucket)
	}
	return storage.NewLocalStorage(cfg.UploadDir)
}
