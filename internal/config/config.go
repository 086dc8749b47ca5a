package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	DefaultPort          = "8080"
	DefaultHTTPPort      = "8081"
	DefaultMaxIterations = 100
)

// Config is the server configuration, read from the environment.
type Config struct {
	// Port is the TCP port of the line protocol.
	Port     string
	HTTPPort string
	// DBPath optionally names a SQLite file whose tables seed the catalog.
	DBPath     string
	SampleData bool
	// MaxDecomposeIterations caps the splits of a BCNF decomposition.
	MaxDecomposeIterations int
}

func GetEnvOrDefault(env, defaultVal string) string {
	e := os.Getenv(env)
	if e == "" {
		return defaultVal
	}
	return e
}

func GetEnvOrDefaultInt(env string, defaultVal int) (int, error) {
	e := os.Getenv(env)
	if e == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(e)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q as an integer: %w", env, e, err)
	}
	return v, nil
}

func GetEnvOrDefaultBool(env string, defaultVal bool) (bool, error) {
	e := os.Getenv(env)
	if e == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseBool(e)
	if err != nil {
		return false, fmt.Errorf("parse %s=%q as a boolean: %w", env, e, err)
	}
	return v, nil
}

// Load reads PORT, HTTP_PORT, DB_PATH, SAMPLE_DATA and
// MAX_DECOMPOSE_ITERATIONS.
func Load() (Config, error) {
	sample, err := GetEnvOrDefaultBool("SAMPLE_DATA", true)
	if err != nil {
		return Config{}, err
	}
	iterations, err := GetEnvOrDefaultInt("MAX_DECOMPOSE_ITERATIONS", DefaultMaxIterations)
	if err != nil {
		return Config{}, err
	}
	if iterations <= 0 {
		return Config{}, fmt.Errorf("MAX_DECOMPOSE_ITERATIONS must be positive, got %d", iterations)
	}
	return Config{
		Port:                   GetEnvOrDefault("PORT", DefaultPort),
		HTTPPort:               GetEnvOrDefault("HTTP_PORT", DefaultHTTPPort),
		DBPath:                 os.Getenv("DB_PATH"),
		SampleData:             sample,
		MaxDecomposeIterations: iterations,
	}, nil
}
