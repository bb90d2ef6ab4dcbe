// Package indexredis persists the assignment index as a single Redis
// string value, for deployments where several instances share one index.
package indexredis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "autoserve:assignment_index"

type Blob struct {
	client *redis.Client
	key    string
}

func New(client *redis.Client, key string) *Blob {
	if key == "" {
		key = defaultKey
	}
	return &Blob{client: client, key: key}
}

// OpenFromEnv connects using REDIS_HOST, REDIS_PORT, REDIS_PASS and
// REDIS_DB and verifies the connection with a ping.
func OpenFromEnv(ctx context.Context) (*redis.Client, error) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}
	db := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_DB: %w", err)
		}
		db = parsed
	}

	client := redis.NewClient(&redis.Options{
		Addr:         host + ":" + port,
		Password:     os.Getenv("REDIS_PASS"),
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (b *Blob) Load(ctx context.Context) ([]byte, error) {
	payload, err := b.client.Get(ctx, b.key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", b.key, err)
	}
	return payload, nil
}

func (b *Blob) Store(ctx context.Context, data []byte) error {
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", b.key, err)
	}
	return nil
}

func (b *Blob) Exists(ctx context.Context) (bool, error) {
	count, err := b.client.Exists(ctx, b.key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", b.key, err)
	}
	return count > 0, nil
}
