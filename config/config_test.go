package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 8*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Empty(t, cfg.AMQPURL)
	assert.False(t, cfg.IsRelease())
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("testdata/does-not-exist.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("GIN_MODE", "release")

	cfg, err := Load("testdata/does-not-exist.env")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.True(t, cfg.IsRelease())
}

func TestInitDBRejectsUnknownDriver(t *testing.T) {
	_, err := InitDB(&Config{DBDriver: "oracle"})
	require.Error(t, err)
}

func TestInitDBSqliteMemory(t *testing.T) {
	db, err := InitDB(&Config{DBDriver: "sqlite", DBDSN: ":memory:", GinMode: "release"})
	require.NoError(t, err)
	assert.True(t, db.NowFunc().Location() == time.UTC)
}
