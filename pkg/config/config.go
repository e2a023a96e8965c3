package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds server configuration loaded from the environment
type Config struct {
	Port        string
	Env         string
	JWTSecret   string
	PostgresURL string
	AWSRegion   string
	MailFrom    string
	S3Bucket    string
	FrontendURL string
}

// Load reads configuration from environment variables with defaults
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("ENV", "development"),
		JWTSecret:   getEnv("JWT_SECRET", "supersecretjwtkey"),
		PostgresURL: getEnv("POSTGRES_CONN_STR", ""),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		MailFrom:    getEnv("MAIL_FROM", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
