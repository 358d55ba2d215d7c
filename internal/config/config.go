package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"gorandtest/domain/randtest"
	"gorandtest/internal"
	"gorandtest/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Run       RunConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Profiling ProfilingConfig
	LogLevel  internal.LogLevel
}

// RunConfig holds the defaults for randomization test runs
type RunConfig struct {
	Permutations    int // -1 selects systematic enumeration
	Alternative     randtest.Alternative
	Workers         int
	TrimPercent     int
	MaxPermutations int // upper bound accepted by the API
}

// TrimFraction converts the trim percentage to the fraction cut from each end
func (r RunConfig) TrimFraction() float64 {
	return float64(r.TrimPercent) / 100
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection settings. An empty URL keeps
// outcomes in memory.
type DatabaseConfig struct {
	URL string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// LoadDotEnv loads .env style files into the environment. Missing files are
// not an error; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(errors.ConfigInvalid(err.Error()), "failed to load %s", path)
		}
	}
	return nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	env := &envReader{}

	config := &Config{
		Run: RunConfig{
			Permutations:    env.intOrDefault("RANDTEST_PERMUTATIONS", 10000),
			Alternative:     randtest.Alternative(getEnvOrDefault("RANDTEST_ALTERNATIVE", string(randtest.TwoSided))),
			Workers:         env.intOrDefault("RANDTEST_WORKERS", 1),
			TrimPercent:     env.intOrDefault("RANDTEST_TRIM_PERCENT", 20),
			MaxPermutations: env.intOrDefault("RANDTEST_MAX_PERMUTATIONS", 1_000_000),
		},
		Server: ServerConfig{
			Port:         getEnvOrDefault("PORT", "8080"),
			ReadTimeout:  env.durationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: env.durationOrDefault("SERVER_WRITE_TIMEOUT", 5*time.Minute),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Profiling: ProfilingConfig{
			Port:    getEnvOrDefault("PPROF_PORT", "6060"),
			Enabled: env.boolOrDefault("PPROF_ENABLED", false),
		},
	}
	if env.err != nil {
		return nil, env.err
	}

	level, err := internal.ParseLevel(getEnvOrDefault("LOG_LEVEL", "WARN"))
	if err != nil {
		return nil, errors.ConfigInvalid(err.Error())
	}
	config.LogLevel = level

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// Validate checks value ranges that parsing alone cannot catch
func (c *Config) Validate() error {
	if c.Run.Permutations != -1 && c.Run.Permutations < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("RANDTEST_PERMUTATIONS must be -1 or positive, got %d", c.Run.Permutations))
	}
	if _, err := randtest.ParseAlternative(string(c.Run.Alternative)); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if c.Run.Workers == 0 {
		return errors.ConfigInvalid("RANDTEST_WORKERS must not be 0")
	}
	if c.Run.TrimPercent < 0 || c.Run.TrimPercent > 49 {
		return errors.ConfigInvalid(fmt.Sprintf("RANDTEST_TRIM_PERCENT must be within 0-49, got %d", c.Run.TrimPercent))
	}
	if c.Run.MaxPermutations < 1 {
		return errors.ConfigInvalid("RANDTEST_MAX_PERMUTATIONS must be positive")
	}
	if c.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// envReader parses typed variables and remembers the first malformed one
type envReader struct {
	err error
}

func (r *envReader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = errors.ConfigInvalid(fmt.Sprintf("%s=%q: %v", key, value, err))
	}
}

func (r *envReader) intOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultValue
	}
	return intValue
}

func (r *envReader) boolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultValue
	}
	return boolValue
}

func (r *envReader) durationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultValue
	}
	return duration
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
