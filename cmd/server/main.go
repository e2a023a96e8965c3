package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/ostrica/minigram/backend/internal/router"
	"github.com/ostrica/minigram/backend/internal/validators"
	"github.com/ostrica/minigram/backend/pkg/blobstore"
	"github.com/ostrica/minigram/backend/pkg/config"
	"github.com/ostrica/minigram/backend/pkg/logger"
	"github.com/ostrica/minigram/backend/pkg/mailer"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	// Initialize database connection
	db, err := config.InitDB(cfg.PostgresURL)
	if err != nil {
		zl.Fatal("failed to initialize database", zap.Error(err))
	}
	defer config.CloseDB(db)

	// Mail goes through SES when a sender address is configured, otherwise
	// it is logged locally.
	var mail mailer.Mailer
	if cfg.MailFrom != "" {
		mail, err = mailer.NewSESMailer(cfg.AWSRegion, cfg.MailFrom)
		if err != nil {
			zl.Fatal("failed to initialize SES mailer", zap.Error(err))
		}
	} else {
		mail = mailer.NewLogMailer(zl)
	}

	// Media goes to S3 when a bucket is configured, otherwise in memory.
	var blobs blobstore.BlobStore
	if cfg.S3Bucket != "" {
		blobs, err = blobstore.NewS3Store(cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			zl.Fatal("failed to initialize S3 store", zap.Error(err))
		}
	} else {
		blobs = blobstore.NewMemStore()
	}

	// Create Echo instance
	e := echo.New()
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, db, cfg, mail, blobs, zl); err != nil {
		zl.Fatal("failed to set up routes", zap.Error(err))
	}

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
