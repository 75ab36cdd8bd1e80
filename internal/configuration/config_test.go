package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"pantry/internal/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func passphraseHash(t *testing.T) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestGetConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
auth_secret_key = "0123456789abcdef0123456789abcdef"
auth_passphrase_hash = "`+passphraseHash(t)+`"
`)
	c, err := GetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8888", c.ServerAddress)
	assert.Equal(t, "sqlite", c.StorageBackend)
	assert.Equal(t, "pantry.db", c.StorageURI)
	assert.Equal(t, time.Hour, c.RefreshInterval)
	assert.Equal(t, time.Minute, c.SessionCheckInterval)
	assert.Equal(t, 1500*time.Millisecond, c.CheckoutClearDelay)
	assert.True(t, c.PruneOrphanedTimestamps)
	assert.Equal(t, logger.LevelInfo, c.LogLevel)
	assert.NotNil(t, c.AuthSecretKey)
	assert.Empty(t, c.ShareDeviceTokens)
}

func TestGetConfigValues(t *testing.T) {
	path := writeConfig(t, `
server_address = ":9000"
storage_backend = "redis"
redis_url = "redis://cache:6379/2"
refresh_interval = "30m"
session_check_interval = "10s"
checkout_clear_delay = "0s"
prune_orphaned_timestamps = false
log_level = "debug"
log_to_file = true
auth_secret_key = "0123456789abcdef0123456789abcdef"
auth_passphrase_hash = "`+passphraseHash(t)+`"
fcm_key = "server-key"
share_device_tokens = "device-a, device-b,,"
`)
	c, err := GetConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", c.ServerAddress)
	assert.Equal(t, "redis", c.StorageBackend)
	assert.Equal(t, "redis://cache:6379/2", c.StorageURI)
	assert.Equal(t, 30*time.Minute, c.RefreshInterval)
	assert.Equal(t, 10*time.Second, c.SessionCheckInterval)
	assert.Zero(t, c.CheckoutClearDelay)
	assert.False(t, c.PruneOrphanedTimestamps)
	assert.Equal(t, logger.LevelDebug, c.LogLevel)
	assert.True(t, c.LogToFile)
	assert.Equal(t, "server-key", c.FCMKey)
	assert.Equal(t, []string{"device-a", "device-b"}, c.ShareDeviceTokens)
}

func TestGetConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
storage_backend = "sqlite"
auth_secret_key = "0123456789abcdef0123456789abcdef"
auth_passphrase_hash = "`+passphraseHash(t)+`"
`)
	t.Setenv("PANTRY_STORAGE_BACKEND", "mongo")
	t.Setenv("PANTRY_DATABASE_URI", "mongodb://db:27017")
	t.Setenv("PANTRY_PRUNE_ORPHANED_TIMESTAMPS", "false")
	t.Setenv("PANTRY_REFRESH_INTERVAL", "2h")

	c, err := GetConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mongo", c.StorageBackend)
	assert.Equal(t, "mongodb://db:27017", c.StorageURI)
	assert.False(t, c.PruneOrphanedTimestamps)
	assert.Equal(t, 2*time.Hour, c.RefreshInterval)
}

func TestGetConfigInvalid(t *testing.T) {
	hash := passphraseHash(t)
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "missing secret", body: `auth_passphrase_hash = "` + hash + `"`, wantErr: "auth_secret_key is not set"},
		{name: "missing hash", body: `auth_secret_key = "k"`, wantErr: "auth_passphrase_hash is not set"},
		{name: "bad hash", body: `auth_secret_key = "k"
auth_passphrase_hash = "plain"`, wantErr: "not a bcrypt hash"},
		{name: "short refresh", body: `refresh_interval = "1s"`, wantErr: "refresh_interval too short"},
		{name: "bad duration", body: `checkout_clear_delay = "soon"`, wantErr: "failed to parse checkout_clear_delay"},
		{name: "negative delay", body: `checkout_clear_delay = "-1s"`, wantErr: "checkout_clear_delay is negative"},
		{name: "bad level", body: `log_level = "loud"`, wantErr: "failed to parse log_level"},
		{name: "bad backend", body: `storage_backend = "etcd"`, wantErr: "unknown storage_backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GetConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetConfigMissingFile(t *testing.T) {
	_, err := GetConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
