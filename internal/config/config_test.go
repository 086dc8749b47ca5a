package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, env := range []string{"PORT", "HTTP_PORT", "DB_PATH", "SAMPLE_DATA", "MAX_DECOMPOSE_ITERATIONS"} {
		t.Setenv(env, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Port:                   DefaultPort,
		HTTPPort:               DefaultHTTPPort,
		SampleData:             true,
		MaxDecomposeIterations: DefaultMaxIterations,
	}, cfg)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HTTP_PORT", "9001")
	t.Setenv("DB_PATH", "/tmp/school.db")
	t.Setenv("SAMPLE_DATA", "0")
	t.Setenv("MAX_DECOMPOSE_ITERATIONS", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{
		Port:                   "9000",
		HTTPPort:               "9001",
		DBPath:                 "/tmp/school.db",
		SampleData:             false,
		MaxDecomposeIterations: 7,
	}, cfg)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("SAMPLE_DATA", "")
	t.Setenv("MAX_DECOMPOSE_ITERATIONS", "many")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MAX_DECOMPOSE_ITERATIONS", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("MAX_DECOMPOSE_ITERATIONS", "")
	t.Setenv("SAMPLE_DATA", "sometimes")
	_, err = Load()
	assert.Error(t, err)
}
