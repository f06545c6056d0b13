package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8092", cfg.Server.Addr())
	assert.Equal(t, 20*time.Second, cfg.Server.ReadHeaderTimeout)
	assert.Equal(t, "/liveness", cfg.Server.LivenessEndpoint)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "en", cfg.Enquiry.DefaultLocale)
	assert.Equal(t, "+49", cfg.Enquiry.PhonePrefix)
	assert.Equal(t, 1, cfg.Enquiry.MinNights)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("STORAGE_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("ENQUIRY_MIN_NIGHTS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 2, cfg.Enquiry.MinNights)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "8181"
logger:
  level: debug
enquiry:
  default_locale: de
  booking_window: 365
`), 0o600))

	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8181", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "de", cfg.Enquiry.DefaultLocale)
	assert.Equal(t, 365, cfg.Enquiry.BookingWindow)
	assert.Equal(t, "localhost", cfg.Server.Host, "defaults fill unset keys")
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	require.Error(t, err)
}
