package config

import (
	"os"
	"time"
)

// TokenExpiry is how long an issued bearer token stays valid
const TokenExpiry = 7 * 24 * time.Hour

type Config struct {
	Port       string
	Env        string
	DBURL      string
	JWTSecret  string
	CORSOrigin string
	LogLevel   string
	UploadDir  string
	S3Region   string
	S3Bucket   string
}

func Load() *Config {
	return &Config{
		Port:       getEnv("SERVER_PORT", "8000"),
		Env:        getEnv("ENV", "development"),
		DBURL:      getEnv("DBURL", ""),
		JWTSecret:  getEnv("JWT_SECRET", "supersecretjwtkey"),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		UploadDir:  getEnv("UPLOAD_DIR", "uploads"),
		S3Region:   getEnv("S3_REGION", ""),
		S3Bucket:   getEnv("S3_BUCKET", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
