package database

import (
	"context"

	"github.com/go-redis/redis/v9"
	"github.com/pkg/errors"
)

const redisKeyPrefix = "pantry:"

type Redis struct {
	Client *redis.Client
}

func OpenRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing redis url: %s", url)
	}
	c := redis.NewClient(opts)
	if err = c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, errors.Wrapf(err, "error pinging redis at: %s", opts.Addr)
	}
	return &Redis{Client: c}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.Client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	return v, errors.Wrapf(err, "error getting key: %s", key)
}

func (r *Redis) Set(ctx context.Context, key string, value string) error {
	err := r.Client.Set(ctx, redisKeyPrefix+key, value, 0).Err()
	return errors.Wrapf(err, "error setting key: %s", key)
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		prefixed = append(prefixed, redisKeyPrefix+k)
	}
	return errors.Wrapf(r.Client.Del(ctx, prefixed...).Err(), "error deleting keys: %v", keys)
}

// Update uses WATCH/MULTI so a concurrent writer aborts the transaction and
// the read-modify-write starts over.
func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	k := redisKeyPrefix + key
	for i := 0; i < maxUpdateRetries; i++ {
		err := r.Client.Watch(ctx, func(tx *redis.Tx) error {
			cur, err := tx.Get(ctx, k).Result()
			exists := true
			if err == redis.Nil {
				exists = false
			} else if err != nil {
				return err
			}
			next, err := fn(cur, exists)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, k, next, 0)
				return nil
			})
			return err
		}, k)
		if err == redis.TxFailedErr {
			continue
		}
		if errors.Is(err, ErrUnchanged) {
			return nil
		}
		return errors.WithMessagef(err, "error updating key: %s", key)
	}
	return errors.Wrapf(ErrConflict, "key: %s", key)
}

func (r *Redis) Close(context.Context) error {
	return r.Client.Close()
}
