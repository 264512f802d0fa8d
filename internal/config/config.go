package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
)

type Config struct {
	Addr         string
	AllowOrigins []string
	LogLevel     log.Level
	// games with no connection are dropped after this long without activity
	IdleTimeout time.Duration
}

// Load reads the server settings from the environment, falling back to defaults
// suited to local development.
func Load() (Config, error) {
	level, err := log.ParseLevel(getenv("CHESS_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("CHESS_LOG_LEVEL: %w", err)
	}

	idle, err := time.ParseDuration(getenv("CHESS_IDLE_TIMEOUT", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("CHESS_IDLE_TIMEOUT: %w", err)
	}
	if idle <= 0 {
		return Config{}, fmt.Errorf("CHESS_IDLE_TIMEOUT: must be positive, got %s", idle)
	}

	var origins []string
	for _, o := range strings.Split(getenv("CHESS_ALLOW_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return Config{
		Addr:         getenv("CHESS_ADDR", ":3000"),
		AllowOrigins: origins,
		LogLevel:     level,
		IdleTimeout:  idle,
	}, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
