package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// #region settings
// Settings are process-level options for the CLIs and the gRPC server.
// They come from the environment, optionally seeded by a .env file.
type Settings struct {
	ConfigPath string // scoring document; empty means Default()
	DBPath     string // SQLite result store
	GRPCAddr   string
	Workers    int // parallel units for batch replay
}

// LoadSettings reads Settings from the environment. A missing .env file is
// not an error.
func LoadSettings() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] no .env file found, using process environment")
	}
	return Settings{
		ConfigPath: getEnv("MOTIONSCAN_CONFIG", ""),
		DBPath:     getEnv("MOTIONSCAN_DB", "motionscan.db"),
		GRPCAddr:   getEnv("MOTIONSCAN_GRPC_ADDR", ":50061"),
		Workers:    getEnvInt("MOTIONSCAN_WORKERS", 4),
	}
}

// LoadOrDefault loads the scoring document at path, or returns Default()
// when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// #endregion settings
