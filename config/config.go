package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const VERSION = "1.2"

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Delivery    DeliveryConfig
	Worker      WorkerConfig
	Environment string
	LogLevel    string
	Version     string
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	URL string
}

type RedisConfig struct {
	// URL is optional; when empty the subscription cache falls back to the
	// in-process implementation.
	URL string
}

type DeliveryConfig struct {
	// MaxRetryAttempts bounds attempt_number for any payload.
	MaxRetryAttempts int
	// RetryIntervals is the backoff schedule as an ordered list of waits.
	// The wait after attempt n fails is RetryIntervals[n-1]; the tail of the
	// list repeats for attempts beyond its length.
	RetryIntervals []time.Duration
	// Timeout applies per outbound delivery request, covering connect, read
	// and body.
	Timeout time.Duration
	// LogRetention is how long delivery attempt rows are kept before the
	// hourly cleanup removes them.
	LogRetention time.Duration
}

// RetryDelay returns the wait before the attempt following failedAttempt
// becomes due. Attempt numbers beyond the schedule reuse the last interval.
func (c DeliveryConfig) RetryDelay(failedAttempt int) time.Duration {
	if len(c.RetryIntervals) == 0 {
		return 0
	}
	idx := failedAttempt - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(c.RetryIntervals) {
		idx = len(c.RetryIntervals) - 1
	}
	return c.RetryIntervals[idx]
}

type WorkerConfig struct {
	BatchSize    int
	PollInterval time.Duration
	// ChunkSize bounds how many deliveries of a claimed batch run
	// concurrently.
	ChunkSize int
}

type LoadOptions struct {
	EnvFile string
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8000)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("REDIS_URL", "")

	v.SetDefault("MAX_RETRY_ATTEMPTS", 5)
	v.SetDefault("RETRY_INTERVALS", "10,30,60,300,900")
	v.SetDefault("DELIVERY_TIMEOUT", 10)
	v.SetDefault("LOG_RETENTION_HOURS", 72)

	v.SetDefault("WORKER_BATCH_SIZE", 20)
	v.SetDefault("WORKER_POLL_INTERVAL", 5)
	v.SetDefault("WORKER_CHUNK_SIZE", 20)

	// Load environment file if specified
	if opts.EnvFile != "" {
		v.SetConfigName(opts.EnvFile)
		v.SetConfigType("env")

		currentPath, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("error getting current directory: %w", err)
		}

		v.AddConfigPath(currentPath)

		if err := v.ReadInConfig(); err != nil {
			// It's okay if config file doesn't exist
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	databaseURL := v.GetString("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	retryIntervals, err := parseRetryIntervals(v.GetString("RETRY_INTERVALS"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRY_INTERVALS: %w", err)
	}

	maxRetryAttempts := v.GetInt("MAX_RETRY_ATTEMPTS")
	if maxRetryAttempts < 1 {
		return nil, fmt.Errorf("MAX_RETRY_ATTEMPTS must be at least 1")
	}

	config := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			URL: databaseURL,
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		Delivery: DeliveryConfig{
			MaxRetryAttempts: maxRetryAttempts,
			RetryIntervals:   retryIntervals,
			Timeout:          time.Duration(v.GetInt("DELIVERY_TIMEOUT")) * time.Second,
			LogRetention:     time.Duration(v.GetInt("LOG_RETENTION_HOURS")) * time.Hour,
		},
		Worker: WorkerConfig{
			BatchSize:    v.GetInt("WORKER_BATCH_SIZE"),
			PollInterval: time.Duration(v.GetInt("WORKER_POLL_INTERVAL")) * time.Second,
			ChunkSize:    v.GetInt("WORKER_CHUNK_SIZE"),
		},
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     VERSION,
	}

	return config, nil
}

// parseRetryIntervals parses a comma-separated list of waits in seconds,
// e.g. "10,30,60,300,900".
func parseRetryIntervals(raw string) ([]time.Duration, error) {
	parts := strings.Split(raw, ",")
	intervals := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		seconds, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("interval %q is not a number of seconds", part)
		}
		if seconds <= 0 {
			return nil, fmt.Errorf("interval %q must be positive", part)
		}
		intervals = append(intervals, time.Duration(seconds)*time.Second)
	}
	if len(intervals) == 0 {
		return nil, fmt.Errorf("at least one interval is required")
	}
	return intervals, nil
}
