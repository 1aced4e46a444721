package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"

	"winesearcher/parser/internal/domain"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisStore keeps the checkpoint in a Redis hash, for deployments where
// several hosts take turns running the job against shared progress. Field =
// normalized query, value = JSON wine or empty string for a null result.
type RedisStore struct {
	redisClient *redis.Client
	key         string
}

func NewRedisStore(redisClient *redis.Client, runKey string) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
		key:         "winesearcher:checkpoint:" + runKey,
	}
}

func (s *RedisStore) Load() (map[string]*domain.Wine, error) {
	entries, err := s.redisClient.HGetAll(context.Background(), s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint %s: %w", s.key, err)
	}

	results := make(map[string]*domain.Wine, len(entries))
	for query, raw := range entries {
		if raw == "" {
			results[query] = nil
			continue
		}
		var wine domain.Wine
		if err := json.Unmarshal([]byte(raw), &wine); err != nil {
			log.Warnf("⚠️ Skipping malformed checkpoint entry for %q: %v", query, err)
			continue
		}
		results[query] = &wine
	}

	return results, nil
}

func (s *RedisStore) Append(results map[string]*domain.Wine) error {
	if len(results) == 0 {
		return nil
	}

	fields := make(map[string]interface{}, len(results))
	for query, wine := range results {
		if wine == nil {
			fields[query] = ""
			continue
		}
		encoded, err := json.Marshal(wine)
		if err != nil {
			return fmt.Errorf("failed to serialize checkpoint entry for %q: %w", query, err)
		}
		fields[query] = string(encoded)
	}

	if err := s.redisClient.HSet(context.Background(), s.key, fields).Err(); err != nil {
		return fmt.Errorf("failed to append checkpoint %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	// The Redis client is owned by the container.
	return nil
}
