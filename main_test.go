package main

import (
	"os"
	"testing"

	"github.com/joy095/parlour/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV", "development")
	t.Setenv("LOG_DIR", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET", "test-secret-with-at-least-32-characters")
}

func TestRunReturnsConfigurationError(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWT_SECRET", "")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestRunReturnsStartupErrorAfterOpeningStore(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "123")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to seed admin admin")
}
