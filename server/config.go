package server

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the HTTP surface settings. Everything comes from the
// environment with local-development defaults.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	EnableCORS     bool
}

// Load reads configuration from the environment, honoring a .env file when
// one is present.
func Load() Config {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	return Config{
		Addr:           getEnv("SHUTDOWND_ADDR", ":8080"),
		MaxUploadBytes: getEnvAsInt64("SHUTDOWND_MAX_UPLOAD_BYTES", 32<<20),
		EnableCORS:     getEnvAsBool("SHUTDOWND_ENABLE_CORS", true),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
