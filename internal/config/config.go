package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the bot and the analytics engine.
type Config struct {
	TelegramToken     string
	DatabaseURL       string
	ReportInterval    time.Duration
	RecoveryThreshold int
	RecoveryGrace     time.Duration
}

// Load reads configuration from the environment (a local .env file is
// picked up when present) with sane defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		TelegramToken:     strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		ReportInterval:    parseHours(strings.TrimSpace(os.Getenv("REPORT_INTERVAL_HOURS"))),
		RecoveryThreshold: parseCount(strings.TrimSpace(os.Getenv("RECOVERY_THRESHOLD"))),
		RecoveryGrace:     parseHours(strings.TrimSpace(os.Getenv("RECOVERY_GRACE_HOURS"))),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "kinetics.db"
	}

	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 5 * time.Hour
	}

	if cfg.RecoveryThreshold == 0 {
		cfg.RecoveryThreshold = 5
	}

	if cfg.RecoveryGrace == 0 {
		cfg.RecoveryGrace = 48 * time.Hour
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}

	return cfg, nil
}

func parseHours(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseCount(raw string) int {
	if raw == "" {
		return 0
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count <= 0 {
		return 0
	}
	return count
}
