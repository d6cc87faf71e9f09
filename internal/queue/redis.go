package queue

import (
	"context"
	"fmt"

	"autotrader/crawler/internal/config"
	"autotrader/crawler/internal/domain/event"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Publisher announces listing outcomes to whoever watches the crawl
type Publisher interface {
	Publish(ctx context.Context, e event.Event) (string, error) // Returns message ID
	Close() error
}

type RedisPublisher struct {
	redisClient  *redis.Client
	streamPrefix string
	maxLen       int64
}

func NewRedisPublisher(redisClient *redis.Client, cfg config.RedisConfig) *RedisPublisher {
	return &RedisPublisher{
		redisClient:  redisClient,
		streamPrefix: cfg.KeyPrefix + "stream:",
		maxLen:       cfg.StreamMaxLen,
	}
}

// StreamName returns the stream an event type is written to
func (q *RedisPublisher) StreamName(eventType string) string {
	return q.streamPrefix + eventType
}

func (q *RedisPublisher) Publish(ctx context.Context, e event.Event) (string, error) {
	eventType := e.EventType()
	streamName := q.StreamName(eventType)

	eventValue, err := e.EventValue()
	if err != nil {
		return "", fmt.Errorf("failed to serialize event: %w", err)
	}

	// Fields: event_type, event_data
	args := &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"event_type": eventType,
			"event_data": string(eventValue),
		},
	}
	if q.maxLen > 0 {
		args.MaxLen = q.maxLen
		args.Approx = true
	}

	messageID, err := q.redisClient.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add event to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Added event %s to stream %s with message ID: %s", eventType, streamName, messageID)
	return messageID, nil
}

func (q *RedisPublisher) Close() error {
	if q.redisClient != nil {
		return q.redisClient.Close()
	}
	return nil
}

// NopPublisher drops every event; used when Redis is disabled
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, e event.Event) (string, error) {
	return "", nil
}

func (NopPublisher) Close() error {
	return nil
}
