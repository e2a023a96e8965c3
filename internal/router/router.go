package router

import (
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/ostrica/minigram/backend/internal/handlers"
	"github.com/ostrica/minigram/backend/internal/middleware"
	"github.com/ostrica/minigram/backend/internal/models"
	"github.com/ostrica/minigram/backend/internal/repositories"
	"github.com/ostrica/minigram/backend/internal/services"
	"github.com/ostrica/minigram/backend/pkg/blobstore"
	"github.com/ostrica/minigram/backend/pkg/config"
	"github.com/ostrica/minigram/backend/pkg/mailer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes runs migrations, wires dependencies, and registers all routes
func SetupRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config, mail mailer.Mailer, blobs blobstore.BlobStore, log *zap.Logger) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.CommentLike{},
		&models.Follow{},
		&models.FollowRequest{},
		&models.Notification{},
	)
	if err != nil {
		return err
	}
	log.Info("auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	// --- Initialize Services ---
	notifEngine := services.NewNotificationEngine(db, mail, log)
	mentionScanner := services.NewMentionScanner()
	followService := services.NewFollowService(db, notifEngine, log)
	likeService := services.NewLikeService(db, notifEngine)
	postService := services.NewPostService(db, notifEngine, mentionScanner)
	discoverFeed := services.NewDiscoverFeed(postRepo)
	visibility := services.NewVisibility(followRepo)
	presenter := handlers.NewPresenter(userRepo, likeRepo, postRepo, blobs)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/auth")
	authHandler := handlers.NewAuthHandler(userRepo, mail, log, cfg.JWTSecret, cfg.FrontendURL)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	userHandler := handlers.NewUserHandler(userRepo, followRepo, visibility, presenter, log)
	userHandler.RegisterUserRoutes(api)

	followHandler := handlers.NewFollowHandler(followService, userRepo, presenter, log)
	followHandler.RegisterFollowRoutes(api)

	postHandler := handlers.NewPostHandler(postService, postRepo, userRepo, visibility, presenter, log)
	postHandler.RegisterPostRoutes(api)

	commentHandler := handlers.NewCommentHandler(postService, likeService, commentRepo, postRepo, likeRepo, userRepo, visibility, presenter, log)
	commentHandler.RegisterCommentRoutes(api)

	likeHandler := handlers.NewLikeHandler(likeService, likeRepo, postRepo, userRepo, visibility, presenter, log)
	likeHandler.RegisterLikeRoutes(api)

	feedHandler := handlers.NewFeedHandler(discoverFeed, postRepo, followRepo, userRepo, presenter, log)
	feedHandler.RegisterFeedRoutes(api)

	notificationHandler := handlers.NewNotificationHandler(notifEngine, notificationRepo, userRepo, presenter, log)
	notificationHandler.RegisterNotificationRoutes(api)

	uploadHandler := handlers.NewUploadHandler(blobs, userRepo, log)
	uploadHandler.RegisterUploadRoutes(api)

	log.Info("all routes configured")
	return nil
}
