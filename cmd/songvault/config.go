package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	MongoURI      string
	MongoDatabase string
	Addr          string

	AllowedOrigins []string

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	UploadBackend string // "cloudinary" or "local"
	UploadDir     string
	PublicBaseURL string
	UploadTimeout time.Duration

	LogLevel  string
	LogFormat string
}

func loadConfig() (Config, error) {
	_ = godotenv.Load()

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		return Config{}, errors.New("MONGO_URI env var is required")
	}

	cfg := Config{
		MongoURI:      uri,
		MongoDatabase: envOrDefault("MONGO_DB", "songvault"),
		Addr:          fmt.Sprintf(":%s", envOrDefault("PORT", "5000")),

		AllowedOrigins: parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),

		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),

		UploadBackend: envOrDefault("UPLOAD_BACKEND", "cloudinary"),
		UploadDir:     envOrDefault("UPLOAD_DIR", "uploads"),
		PublicBaseURL: envOrDefault("PUBLIC_BASE_URL", "http://localhost:5000/uploads"),

		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
	}

	timeout, err := time.ParseDuration(envOrDefault("UPLOAD_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid UPLOAD_TIMEOUT: %w", err)
	}
	cfg.UploadTimeout = timeout

	switch cfg.UploadBackend {
	case "cloudinary":
		if cfg.CloudinaryURL == "" &&
			(cfg.CloudinaryCloudName == "" || cfg.CloudinaryAPIKey == "" || cfg.CloudinaryAPISecret == "") {
			return Config{}, errors.New("cloudinary credentials are required: set CLOUDINARY_URL or CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET")
		}
	case "local":
		// no credentials needed
	default:
		return Config{}, fmt.Errorf("unknown UPLOAD_BACKEND %q", cfg.UploadBackend)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
