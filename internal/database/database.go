package database

import (
	"context"
	"strings"

	"github.com/pkg/errors"
)

const (
	KeyProducts       = "products"
	KeyTimestamps     = "itemTimestamps"
	KeyShoppingList   = "shoppingList"
	KeyAuthFlag       = "isLoggedIn"
	KeyAuthToken      = "authToken"
	KeyAuthTime       = "authTime"
	KeyOnboardingSeen = "hasSeenOnboarding"
	KeyClipboard      = "clipboard"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Retries for optimistic updates that lost a race with another writer.
const maxUpdateRetries = 8

var (
	ErrNotFound  = errors.New("key not found")
	ErrCorrupt   = errors.New("persisted value is corrupt")
	ErrUnchanged = errors.New("value unchanged")
	ErrConflict  = errors.New("too many concurrent updates")
)

// UpdateFunc receives the current value of a key and returns the value to store.
// Returning ErrUnchanged skips the write without failing the update.
type UpdateFunc func(current string, exists bool) (string, error)

// KV stores one string value per key. Update is an atomic read-modify-write.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close(ctx context.Context) error
}

type Database struct {
	KV
	Logger logger
}

type logger interface {
	Debugf(format string, v ...any)
	Errorf(format string, v ...any)
}

func New(kv KV, l logger) Database {
	return Database{KV: kv, Logger: l}
}

// Open connects to the configured backend. uri is a file path for sqlite and a
// connection URL for redis and mongo, it is ignored for memory.
func Open(ctx context.Context, backend string, uri string) (KV, error) {
	switch strings.ToLower(backend) {
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return OpenSQLite(ctx, uri)
	case BackendRedis:
		return OpenRedis(ctx, uri)
	case BackendMongo:
		return OpenMongo(ctx, uri)
	}
	return nil, errors.Errorf("unknown storage backend: %s", backend)
}

func finishUpdate(err error) error {
	if errors.Is(err, ErrUnchanged) {
		return nil
	}
	return err
}
