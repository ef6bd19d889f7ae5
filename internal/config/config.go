// Package config loads application configuration from environment
// variables.  Required variables are enforced by must() and missing
// values cause the program to exit with a fatal log message; tuning
// knobs fall back to sensible defaults.
package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.
type Config struct {
	Env    string // application environment (e.g. "dev", "prod")
	Port   string // HTTP port to listen on
	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	Seating SeatingConfig // engine tuning knobs
}

// SeatingConfig tunes the seating synchronization engine.
type SeatingConfig struct {
	// ChunkSize caps the operations per atomic store commit.  Keep it
	// comfortably below MaxBatchOps.
	ChunkSize int
	// ApplyFanout bounds concurrent chunk commits within one apply call.
	ApplyFanout int
	// RetryAttempts is the per-chunk attempt ceiling for transient failures.
	RetryAttempts int
	// RetryBaseDelay is the first retry backoff; it doubles per attempt.
	RetryBaseDelay time.Duration
	// MaxBatchOps is the store's per-commit operation ceiling.
	MaxBatchOps int
	// AssignStrategy selects the auto-assign implementation.  Only
	// "balanced" is built in; the knob exists so an external
	// suggestion strategy can be swapped in without an API change.
	AssignStrategy string
}

// Load reads configuration values from environment variables and
// returns a Config.
func Load() Config {
	return Config{
		Env:    must("APP_ENV"),
		Port:   must("APP_PORT"),
		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"), // empty allowed
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),
		Seating: SeatingConfig{
			ChunkSize:      envInt("SEATING_CHUNK_SIZE", 450),
			ApplyFanout:    envInt("SEATING_APPLY_FANOUT", 0), // 0 = derive from CPU count
			RetryAttempts:  envInt("SEATING_RETRY_ATTEMPTS", 3),
			RetryBaseDelay: envDur("SEATING_RETRY_BASE_DELAY", 200*time.Millisecond),
			MaxBatchOps:    envInt("STORE_MAX_BATCH_OPS", 500),
			AssignStrategy: envStr("SEATING_ASSIGN_STRATEGY", "balanced"),
		},
	}
}

// must retrieves the value of a required environment variable.  If
// the variable is unset or empty, the application logs a fatal error
// and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
