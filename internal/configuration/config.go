package configuration

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"pantry/internal/database"
	"pantry/internal/logger"
)

// EnvPrefix marks environment variables that override config file values,
// e.g. PANTRY_STORAGE_BACKEND overrides storage_backend.
const EnvPrefix = "PANTRY_"

const (
	minRefreshInterval      = 15 * time.Second
	minSessionCheckInterval = time.Second
)

type Config struct {
	ServerAddress           string
	StorageBackend          string
	StorageURI              string
	RefreshInterval         time.Duration
	SessionCheckInterval    time.Duration
	CheckoutClearDelay      time.Duration
	PruneOrphanedTimestamps bool
	LogLevel                logger.Level
	LogToFile               bool
	AuthSecretKey           jwk.Key  `json:"-"`
	AuthPassphraseHash      []byte   `json:"-"`
	FCMKey                  string   `json:"-"`
	ShareDeviceTokens       []string `json:"-"`
}

type tomlConfig struct {
	ServerAddress           string `toml:"server_address"`
	StorageBackend          string `toml:"storage_backend"`
	SQLitePath              string `toml:"sqlite_path"`
	RedisURL                string `toml:"redis_url"`
	DatabaseURI             string `toml:"database_uri"`
	RefreshInterval         string `toml:"refresh_interval"`
	SessionCheckInterval    string `toml:"session_check_interval"`
	CheckoutClearDelay      string `toml:"checkout_clear_delay"`
	PruneOrphanedTimestamps *bool  `toml:"prune_orphaned_timestamps"`
	LogLevel                string `toml:"log_level"`
	LogToFile               bool   `toml:"log_to_file"`
	AuthSecretKey           string `toml:"auth_secret_key"`
	AuthPassphraseHash      string `toml:"auth_passphrase_hash"`
	FCMKey                  string `toml:"fcm_key"`
	ShareDeviceTokens       string `toml:"share_device_tokens"`
}

// GetConfig reads the toml file at path, applies PANTRY_* environment
// overrides and validates the result.
func GetConfig(path string) (*Config, error) {
	var tc tomlConfig
	_, err := toml.DecodeFile(path, &tc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}
	if err = applyEnv(&tc); err != nil {
		return nil, err
	}
	return tc.config()
}

func applyEnv(tc *tomlConfig) error {
	k := koanf.New(".")
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return errors.Wrap(err, "failed to load environment variables")
	}
	if err = k.UnmarshalWithConf("", tc, koanf.UnmarshalConf{Tag: "toml"}); err != nil {
		return errors.Wrap(err, "failed to apply environment variables")
	}
	return nil
}

func (tc tomlConfig) config() (*Config, error) {
	if tc.ServerAddress == "" {
		tc.ServerAddress = "localhost:8888"
	}

	backend := strings.ToLower(strings.TrimSpace(tc.StorageBackend))
	var storageURI string
	switch backend {
	case "", database.BackendSQLite:
		backend = database.BackendSQLite
		storageURI = tc.SQLitePath
		if storageURI == "" {
			storageURI = "pantry.db"
		}
	case database.BackendRedis:
		storageURI = tc.RedisURL
		if storageURI == "" {
			storageURI = "redis://localhost:6379/0"
		}
	case database.BackendMongo:
		storageURI = tc.DatabaseURI
		if storageURI == "" {
			storageURI = "mongodb://localhost:27017"
		}
	case database.BackendMemory:
	default:
		return nil, errors.Errorf("unknown storage_backend: %s", tc.StorageBackend)
	}

	refreshInterval, err := parseDuration("refresh_interval", tc.RefreshInterval, time.Hour)
	if err != nil {
		return nil, err
	}
	if refreshInterval < minRefreshInterval {
		return nil, errors.Errorf("refresh_interval too short (%v), minimum interval: %v", refreshInterval, minRefreshInterval)
	}

	sessionCheckInterval, err := parseDuration("session_check_interval", tc.SessionCheckInterval, time.Minute)
	if err != nil {
		return nil, err
	}
	if sessionCheckInterval < minSessionCheckInterval {
		return nil, errors.Errorf("session_check_interval too short (%v), minimum interval: %v",
			sessionCheckInterval, minSessionCheckInterval)
	}

	checkoutClearDelay, err := parseDuration("checkout_clear_delay", tc.CheckoutClearDelay, 1500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	if checkoutClearDelay < 0 {
		return nil, errors.Errorf("checkout_clear_delay is negative: %v", checkoutClearDelay)
	}

	logLevel := logger.LevelInfo
	if tc.LogLevel != "" {
		if logLevel, err = logger.ParseLevel(tc.LogLevel); err != nil {
			return nil, errors.WithMessage(err, "failed to parse log_level")
		}
	}

	if tc.AuthSecretKey == "" {
		return nil, errors.New("auth_secret_key is not set")
	}
	authSecretKey, err := jwk.FromRaw([]byte(tc.AuthSecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create key from auth_secret_key")
	}

	if tc.AuthPassphraseHash == "" {
		return nil, errors.New("auth_passphrase_hash is not set")
	}
	if _, err = bcrypt.Cost([]byte(tc.AuthPassphraseHash)); err != nil {
		return nil, errors.Wrap(err, "auth_passphrase_hash is not a bcrypt hash")
	}

	prune := true
	if tc.PruneOrphanedTimestamps != nil {
		prune = *tc.PruneOrphanedTimestamps
	}

	return &Config{
		ServerAddress:           tc.ServerAddress,
		StorageBackend:          backend,
		StorageURI:              storageURI,
		RefreshInterval:         refreshInterval,
		SessionCheckInterval:    sessionCheckInterval,
		CheckoutClearDelay:      checkoutClearDelay,
		PruneOrphanedTimestamps: prune,
		LogLevel:                logLevel,
		LogToFile:               tc.LogToFile,
		AuthSecretKey:           authSecretKey,
		AuthPassphraseHash:      []byte(tc.AuthPassphraseHash),
		FCMKey:                  tc.FCMKey,
		ShareDeviceTokens:       splitList(tc.ShareDeviceTokens),
	}, nil
}

func parseDuration(key string, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to parse %s", key)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
