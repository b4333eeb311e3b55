package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the planner.
type Config struct {
	DatabaseURL   string
	TelegramToken string
	AgendaTime    string // HH:MM, local time of the daily broadcast
	DaysBack      int    // initial window reach into the past
	DaysForward   int    // initial window reach into the future
}

// Load reads configuration from a .env file (if present) and environment
// variables, with sane defaults. The Telegram token is only required in
// serve mode, so it is validated by the caller, not here.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		AgendaTime:    strings.TrimSpace(os.Getenv("AGENDA_TIME")),
		DaysBack:      parsePositiveInt(os.Getenv("DAYS_BACK"), 7),
		DaysForward:   parsePositiveInt(os.Getenv("DAYS_FORWARD"), 14),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "timeline.db"
	}
	if cfg.AgendaTime == "" {
		cfg.AgendaTime = "08:00"
	}
	if parts := strings.Split(cfg.AgendaTime, ":"); len(parts) != 2 {
		return cfg, fmt.Errorf("AGENDA_TIME %q is not HH:MM", cfg.AgendaTime)
	}

	return cfg, nil
}

func parsePositiveInt(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
