package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/embermud/ember/pkg/actor"
)

// RedisStorage implements the Storage interface using Redis for player and
// account records.
type RedisStorage struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	return &RedisStorage{
		client: rdb,
		logger: logger,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

func playerKey(id string) string {
	return "player:" + id
}

func accountKey(name string) string {
	return "account:" + strings.ToLower(strings.TrimSpace(name))
}

func (r *RedisStorage) SavePlayer(ctx context.Context, p *actor.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		r.logger.Error("Failed to marshal player", "player_id", p.ID, "error", err)
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	if err := r.client.Set(ctx, playerKey(p.ID), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save player", "player_id", p.ID, "error", err)
		return fmt.Errorf("failed to save player: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadPlayer(ctx context.Context, id string) (*actor.Player, error) {
	cmd := r.client.Get(ctx, playerKey(id))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load player", "player_id", id, "error", err)
		return nil, fmt.Errorf("failed to load player: %w", err)
	}

	var p actor.Player
	if err := json.Unmarshal([]byte(cmd.Val()), &p); err != nil {
		r.logger.Error("Failed to unmarshal player", "player_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}
	p.Normalize()

	return &p, nil
}

func (r *RedisStorage) DeletePlayer(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, playerKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete player", "player_id", id, "error", err)
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

func (r *RedisStorage) SaveAccount(ctx context.Context, a *Account) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}

	if err := r.client.Set(ctx, accountKey(a.Name), string(data), 0).Err(); err != nil {
		r.logger.Error("Failed to save account", "account", a.Name, "error", err)
		return fmt.Errorf("failed to save account: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadAccount(ctx context.Context, name string) (*Account, error) {
	cmd := r.client.Get(ctx, accountKey(name))
	if err := cmd.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		r.logger.Error("Failed to load account", "account", name, "error", err)
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	var a Account
	if err := json.Unmarshal([]byte(cmd.Val()), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &a, nil
}
