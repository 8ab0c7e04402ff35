// Package cache keeps read-mostly panel data in Redis. When no Redis address
// is configured an embedded miniredis instance is started instead.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allblack/allblack-panel/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent.
var ErrMiss = errors.New("cache miss")

var (
	mu        sync.RWMutex
	client    *redis.Client
	miniRedis *miniredis.Miniredis
	ctx       = context.Background()
)

// InitRedis connects to redisAddr, or starts an embedded server when it is
// empty.
func InitRedis(redisAddr string) error {
	mu.Lock()
	defer mu.Unlock()

	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start embedded redis: %w", err)
		}
		miniRedis = mr
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
		logger.Info("embedded redis started on", mr.Addr())
		return nil
	}

	c := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("connect to redis at %s: %w", redisAddr, err)
	}
	client = c
	logger.Info("connected to redis at", redisAddr)
	return nil
}

// GetClient returns the Redis client, nil before InitRedis.
func GetClient() *redis.Client {
	mu.RLock()
	defer mu.RUnlock()
	return client
}

// IsEmbedded reports whether the embedded server is in use.
func IsEmbedded() bool {
	mu.RLock()
	defer mu.RUnlock()
	return miniRedis != nil
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	var err error
	if client != nil {
		err = client.Close()
		client = nil
	}
	if miniRedis != nil {
		miniRedis.Close()
		miniRedis = nil
	}
	return err
}

func getClient() (*redis.Client, error) {
	c := GetClient()
	if c == nil {
		return nil, errors.New("redis client not initialized")
	}
	return c, nil
}

func Set(key string, value any, expiration time.Duration) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	return c.Set(ctx, key, value, expiration).Err()
}

// Incr atomically increments the integer at key.
func Incr(key string) (int64, error) {
	c, err := getClient()
	if err != nil {
		return 0, err
	}
	return c.Incr(ctx, key).Result()
}

func Get(key string) (string, error) {
	c, err := getClient()
	if err != nil {
		return "", err
	}
	result, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return result, err
}

func Delete(keys ...string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	return c.Del(ctx, keys...).Err()
}

// DeletePattern removes every key matching pattern.
func DeletePattern(pattern string) error {
	c, err := getClient()
	if err != nil {
		return err
	}
	iter := c.Scan(ctx, 0, pattern, 0).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Del(ctx, keys...).Err()
}
