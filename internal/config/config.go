// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the board service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// Base URL of the external scraper/evaluation API. The service mirrors
	// job postings from {base}/paginated-jobs and requests match scores
	// from {base}/evaluate-resume.
	ScraperAPIURL string

	SyncIntervalHours int   // how often the job mirror runs
	PageSize          int   // jobs per dashboard page
	DBMaxConns        int32 // pgx pool size
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	scraperURL := os.Getenv("SCRAPER_API_URL")
	if scraperURL == "" {
		return nil, fmt.Errorf("SCRAPER_API_URL is required")
	}

	interval := 6
	if s := os.Getenv("SYNC_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SYNC_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	pageSize := 10
	if s := os.Getenv("PAGE_SIZE"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("PAGE_SIZE must be a positive integer, got %q", s)
		}
		pageSize = v
	}

	maxConns := 4
	if s := os.Getenv("DB_MAX_CONNS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("DB_MAX_CONNS must be a positive integer, got %q", s)
		}
		maxConns = v
	}

	port := os.Getenv("BOARD_PORT")
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port:              port,
		DatabaseURL:       dbURL,
		RedisURL:          redisURL,
		ScraperAPIURL:     scraperURL,
		SyncIntervalHours: interval,
		PageSize:          pageSize,
		DBMaxConns:        int32(maxConns),
	}, nil
}
