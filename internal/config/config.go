package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// DatasetConfig holds the on-disk layout of the collected dataset.
type DatasetConfig struct {
	Dir          string
	AudioMaxMB   int
	TextMaxChars int
}

// AudioDir is where committed recordings live: <dataset>/audio.
func (d DatasetConfig) AudioDir() string {
	return filepath.Join(d.Dir, "audio")
}

// MetadataFile is the append-only CSV log: <dataset>/metadata.csv.
func (d DatasetConfig) MetadataFile() string {
	return filepath.Join(d.Dir, "metadata.csv")
}

// MinIOConfig holds object storage settings for the optional S3-compatible
// audio backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LogConfig holds application logger settings.
type LogConfig struct {
	Level      string
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port           string
	StorageBackend string // "local" (default) or "s3"
	Dataset        DatasetConfig
	MinIO          MinIOConfig
	Log            LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:           getEnv("PORT", "8080"),
		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		Dataset: DatasetConfig{
			// Hosted deployments mount the persistent disk elsewhere and set
			// DATASET_DIR; locally this falls back to dataset/ next to the binary.
			Dir:          getEnv("DATASET_DIR", "dataset"),
			AudioMaxMB:   getEnvInt("AUDIO_MAX_MB", 10),
			TextMaxChars: getEnvInt("TEXT_MAX_CHARS", 1000),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Path:       getEnv("LOG_PATH", ""),
			MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 7),
			Compress:   getEnvBool("LOG_COMPRESS", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
