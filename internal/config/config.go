// Package config loads the options recognized by the routing core (spec
// §6.4) from the environment, following the teacher's
// internal/db/connection.go LoadConfigFromEnv / cmd/api/main.go getEnv
// idiom: flat env vars with hard-coded defaults, no config file, no
// viper layering.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable named in spec §6.4 plus the connection
// settings the teacher's db/cache packages already read from the
// environment.
type Config struct {
	// Planning tunables (§6.4)
	WalkingSpeedMPS        float64       // default 1.4 m/s
	TransferMargin         time.Duration // default 60s
	MaxWalkingTime         time.Duration // default 1200s
	APIDelay               time.Duration // default 500ms
	BusSearchMaxDuration   time.Duration // default 3600s
	TransferInterStopAvg   time.Duration // default 90s
	TransferSearchDepth    int           // default 10
	DestinationSearchDepth int           // default 20
	StopsAlongDepth        int           // default 50

	// Connection / pool settings
	DatabaseURL          string
	RedisURL             string
	TransitFeedURL       string
	GreennessServiceURL  string
	DBPoolSize           int
	APIPort              string
	PlanDeadline         time.Duration // outer deadline for a planning request, default 120s
	FeedCallTimeout      time.Duration // default 10s
	GreennessCallTimeout time.Duration // default 10s
}

// Load reads Config from the environment, applying spec §6.4 defaults
// for anything unset.
func Load() (*Config, error) {
	cfg := &Config{
		WalkingSpeedMPS:        getFloat("WALKING_SPEED_MPS", 1.4),
		TransferMargin:         getSeconds("TRANSFER_MARGIN_SECONDS", 60),
		MaxWalkingTime:         getSeconds("MAX_WALKING_TIME_SECONDS", 1200),
		APIDelay:               getMillis("API_DELAY_MS", 500),
		BusSearchMaxDuration:   getSeconds("BUS_SEARCH_MAX_DURATION_SECONDS", 3600),
		TransferInterStopAvg:   getSeconds("TRANSFER_INTER_STOP_AVG_SECONDS", 90),
		TransferSearchDepth:    getInt("TRANSFER_SEARCH_DEPTH", 10),
		DestinationSearchDepth: getInt("DESTINATION_SEARCH_DEPTH", 20),
		StopsAlongDepth:        getInt("STOPS_ALONG_DEPTH", 50),

		DatabaseURL:          getEnv("DATABASE_URL", "postgres://localhost:5432/routecore?sslmode=disable"),
		RedisURL:             getEnv("REDIS_URL", "redis://localhost:6379/0"),
		TransitFeedURL:       getEnv("TRANSIT_FEED_URL", "http://localhost:9000"),
		GreennessServiceURL:  getEnv("GREENNESS_SERVICE_URL", "http://localhost:9100"),
		DBPoolSize:           getInt("DB_POOL_SIZE", 20),
		APIPort:              getEnv("API_PORT", "8080"),
		PlanDeadline:         getSeconds("PLAN_DEADLINE_SECONDS", 120),
		FeedCallTimeout:      getSeconds("FEED_CALL_TIMEOUT_SECONDS", 10),
		GreennessCallTimeout: getSeconds("GREENNESS_CALL_TIMEOUT_SECONDS", 10),
	}

	if cfg.WalkingSpeedMPS <= 0 {
		return nil, fmt.Errorf("config: walking speed must be positive, got %f", cfg.WalkingSpeedMPS)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getInt(key, defaultSeconds)) * time.Second
}

func getMillis(key string, defaultMillis int) time.Duration {
	return time.Duration(getInt(key, defaultMillis)) * time.Millisecond
}
