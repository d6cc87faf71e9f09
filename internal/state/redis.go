package state

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type redisState struct {
	redisClient *redis.Client
	offsetKey   string
	seenKey     string
	start       int
}

// NewRedisState stores the cursor and seen-set in Redis so they outlive the process.
// start is used until the first Advance writes an offset.
func NewRedisState(redisClient *redis.Client, keyPrefix string, start int) CrawlState {
	return &redisState{
		redisClient: redisClient,
		offsetKey:   keyPrefix + "cursor:offset",
		seenKey:     keyPrefix + "seen",
		start:       start,
	}
}

func (s *redisState) Offset(ctx context.Context) (int, error) {
	val, err := s.redisClient.Get(ctx, s.offsetKey).Result()
	if err != nil {
		if err == redis.Nil {
			return s.start, nil // No progress saved yet
		}
		return 0, fmt.Errorf("failed to get search offset: %w", err)
	}

	offset, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("failed to parse search offset %q: %w", val, err)
	}

	return offset, nil
}

func (s *redisState) Advance(ctx context.Context, by int) (int, error) {
	// Seed the start offset once, no expiration
	if err := s.redisClient.SetNX(ctx, s.offsetKey, s.start, 0).Err(); err != nil {
		return 0, fmt.Errorf("failed to seed search offset: %w", err)
	}

	next, err := s.redisClient.IncrBy(ctx, s.offsetKey, int64(by)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance search offset: %w", err)
	}
	return int(next), nil
}

func (s *redisState) MarkSeen(ctx context.Context, path string) (bool, error) {
	added, err := s.redisClient.SAdd(ctx, s.seenKey, path).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark %s as seen: %w", path, err)
	}
	return added == 1, nil
}
