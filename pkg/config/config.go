// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultTarget is the logical name of the common DB
const DefaultTarget = "default"

// Config represents the application configuration
type Config struct {
	// Database connections; either may be nil when not configured
	Snowflake *SnowflakeConfig
	Postgres  *PostgresConfig

	// Targets maps logical database names to connection URLs, "" is the default
	Targets map[string]string

	// Loader selects how records are written: "procedure" or "table"
	Loader string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables, after reading
// envFile if it exists. An empty envFile means ".env".
func LoadConfig(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	targets, err := ParseTargets(getEnv("COMMONDB_URL", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to parse COMMONDB_URL: %w", err)
	}

	cfg := &Config{
		Targets:   targets,
		Loader:    strings.ToLower(getEnv("COMMONDB_LOADER", "procedure")),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Load database configurations
	if os.Getenv("SNOWFLAKE_ACCOUNT") != "" {
		snowConfig, err := LoadSnowflakeConfig()
		if err != nil {
			return nil, errors.New("failed to load Snowflake configuration: " + err.Error())
		}
		cfg.Snowflake = snowConfig
	}

	if os.Getenv("POSTGRES_DB") != "" {
		pgConfig, err := LoadPostgresConfig()
		if err != nil {
			return nil, errors.New("failed to load PostgreSQL configuration: " + err.Error())
		}
		cfg.Postgres = pgConfig
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if _, ok := c.Targets[""]; !ok && c.Postgres == nil {
		return errors.New("no common DB configured: set COMMONDB_URL or POSTGRES_DB")
	}

	switch c.Loader {
	case "procedure", "table":
	default:
		return fmt.Errorf("COMMONDB_LOADER must be procedure or table, got %q", c.Loader)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}

	return nil
}

// ParseTargets parses a mapping of database URLs preceded by the default
// URL, e.g. "postgres://h/commondb,local:sqlite://palfa.db". The default is
// stored under "". Two commas in a row stand for a literal comma.
func ParseTargets(spec string) (map[string]string, error) {
	targets := map[string]string{}
	if strings.TrimSpace(spec) == "" {
		return targets, nil
	}

	parts := escapableCommaSplit(spec)
	if parts[0] != "" {
		targets[""] = parts[0]
	}
	for _, other := range parts[1:] {
		override := strings.SplitN(other, ":", 2)
		if len(override) != 2 || override[0] == "" || strings.HasPrefix(override[1], "/") {
			return nil, fmt.Errorf("invalid target mapping: %q", other)
		}
		targets[override[0]] = override[1]
	}
	return targets, nil
}

// escapableCommaSplit splits on commas, treating ",," as a literal comma
func escapableCommaSplit(val string) []string {
	var vals []string
	current := make([]byte, 0, len(val))
	for i := 0; i < len(val); i++ {
		char := val[i]
		if char != ',' {
			current = append(current, char)
			continue
		}
		if i < len(val)-1 && val[i+1] == ',' {
			current = append(current, ',')
			i++
			continue
		}
		vals = append(vals, string(current))
		current = nil
	}
	return append(vals, string(current))
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file: %w", err)
	}

	// Variables already set in the environment win
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
