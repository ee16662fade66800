package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stagecrew/onboard-engine/internal/models"
)

const solutionKeyPrefix = "onboard:solution:"

// RedisStore is a SolutionStore backed by Redis. Solutions are stored as
// JSON values under a key prefix; retention is delegated to Redis TTLs.
// Use it when several service instances need to share solutions or when
// solutions should survive a process restart.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies connectivity. A zero ttl
// stores solutions without expiry.
func NewRedisStore(address, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func solutionKey(id string) string {
	return solutionKeyPrefix + id
}

// Put stores the solution as JSON, replacing any previous value
func (s *RedisStore) Put(ctx context.Context, sol *models.Solution) error {
	data, err := json.Marshal(sol)
	if err != nil {
		return fmt.Errorf("failed to encode solution: %w", err)
	}

	if err := s.client.Set(ctx, solutionKey(sol.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store solution: %w", err)
	}
	return nil
}

// Get returns the stored solution or ErrSolutionNotFound
func (s *RedisStore) Get(ctx context.Context, id string) (*models.Solution, error) {
	data, err := s.client.Get(ctx, solutionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSolutionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch solution: %w", err)
	}

	var sol models.Solution
	if err := json.Unmarshal(data, &sol); err != nil {
		return nil, fmt.Errorf("failed to decode solution %s: %w", id, err)
	}
	return &sol, nil
}

// List scans the solution key space and returns all stored solutions
func (s *RedisStore) List(ctx context.Context) ([]*models.Solution, error) {
	var solutions []*models.Solution
	var cursor uint64

	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, solutionKeyPrefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan solutions: %w", err)
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue // expired between scan and get
			}
			if err != nil {
				return nil, fmt.Errorf("failed to fetch solution %s: %w", key, err)
			}

			var sol models.Solution
			if err := json.Unmarshal(data, &sol); err != nil {
				slog.Warn("skipping undecodable solution", "key", key, "error", err)
				continue
			}
			solutions = append(solutions, &sol)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return solutions, nil
}

// Delete removes a solution; unknown ids are a no-op
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, solutionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete solution: %w", err)
	}
	return nil
}

// Ping verifies Redis connectivity
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
