package main

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type config struct {
	Addr            string
	LogLevel        slog.Level
	RateLimit       float64
	RateBurst       int
	ShutdownTimeout time.Duration
}

// loadConfig reads settings from the environment, optionally seeded from a
// .env file in the working directory.
func loadConfig() config {
	_ = godotenv.Load(".env")

	cfg := config{
		Addr:            getString("SAMPLE_ADDR", ":8080"),
		RateLimit:       getFloat("SAMPLE_RATE_LIMIT", 50),
		RateBurst:       getInt("SAMPLE_RATE_BURST", 100),
		ShutdownTimeout: getDuration("SAMPLE_SHUTDOWN_TIMEOUT", 30*time.Second),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getString("SAMPLE_LOG_LEVEL", "debug"))); err != nil {
		cfg.LogLevel = slog.LevelDebug
	}

	return cfg
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
