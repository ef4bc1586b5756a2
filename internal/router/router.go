package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/lynk-app/backend/internal/apperrors"
	"github.com/lynk-app/backend/internal/handlers"
	"github.com/lynk-app/backend/internal/middleware"
	"github.com/lynk-app/backend/internal/realtime"
	"github.com/lynk-app/backend/internal/repositories"
	"github.com/lynk-app/backend/internal/storage"
	"github.com/lynk-app/backend/pkg/config"
	"github.com/lynk-app/backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SetupMiddleware configures global Echo middleware and the error handler
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins: []string{cfg.CORSOrigin},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.HTTPErrorHandler = errorHandler
	logger.L().Info("global middleware configured")
}

// errorHandler renders every error as the {status: 0, message} envelope
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Server error"

	if appErr, ok := apperrors.AsAppError(err); ok {
		status = appErr.HTTPStatus()
		message = appErr.Message
		if appErr.Err != nil {
			logger.L().Error("request failed",
				zap.Int("code", int(appErr.Code)),
				zap.String("path", c.Path()),
				zap.Error(appErr.Err))
		}
	} else if httpErr, ok := err.(*echo.HTTPError); ok {
		status = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	} else {
		logger.L().Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
	}

	if err := c.JSON(status, echo.Map{"status": 0, "message": message}); err != nil {
		logger.L().Error("error response failed", zap.Error(err))
	}
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, db *mongo.Database, cfg *config.Config, fileStorage storage.FileStorage, hub *realtime.Hub, systemUserID primitive.ObjectID) {
	e.GET("/health", handlers.Health)

	// Repositories
	userRepo := repositories.NewMongoUserRepository(db)
	postRepo := repositories.NewMongoPostRepository(db)
	chatRepo := repositories.NewMongoChatRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)
	supportRepo := repositories.NewMongoSupportRepository(db)

	notifier := handlers.NewNotifier(notificationRepo)

	// Unprotected auth routes
	authGroup := e.Group("/api/users")
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// Everything below requires a bearer token
	auth := middleware.JWTAuthMiddleware(cfg.JWTSecret)

	users := e.Group("/api/users", auth)
	userHandler := handlers.NewUserHandler(userRepo, notifier, fileStorage)
	userHandler.RegisterUserRoutes(users)

	posts := e.Group("/api/posts", auth)
	postHandler := handlers.NewPostHandler(postRepo, userRepo, fileStorage)
	postHandler.RegisterPostRoutes(posts)

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, postHandler)
	feedHandler.RegisterFeedRoutes(posts)

	likeHandler := handlers.NewLikeHandler(postRepo, notifier)
	likeHandler.RegisterLikeRoutes(posts)

	commentHandler := handlers.NewCommentHandler(postRepo, userRepo, notifier)
	commentHandler.RegisterCommentRoutes(posts)

	chats := e.Group("/api/chats", auth)
	chatHandler := handlers.NewChatHandler(chatRepo, userRepo)
	chatHandler.RegisterChatRoutes(chats)

	messages := e.Group("/api/messages", auth)
	messageHandler := handlers.NewMessageHandler(chatRepo, userRepo)
	messageHandler.RegisterMessageRoutes(messages)

	notifications := e.Group("/api/notifications", auth)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(notifications)

	support := e.Group("/api/support", auth)
	supportHandler := handlers.NewSupportHandler(supportRepo, userRepo, notifier, systemUserID)
	supportHandler.RegisterSupportRoutes(support)

	admin := e.Group("/api/support/admin", auth, middleware.AdminOnly(userRepo))
	supportHandler.RegisterAdminRoutes(admin)

	// Realtime gateway; the token rides in the query string
	wsHandler := handlers.NewWSHandler(hub, chatRepo, userRepo, cfg.JWTSecret)
	e.GET("/ws", wsHandler.Serve)

	// Serve local uploads when not backed by S3
	if _, ok := fileStorage.(*storage.LocalStorage); ok {
		e.Static("/uploads", cfg.UploadDir)
	}

	logger.L().Info("routes configured")
}
