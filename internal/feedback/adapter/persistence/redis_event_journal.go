// Package persistence holds store adapters that are not tied to a single
// database package: the Redis-backed change journal lives here.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"pgfeedback/internal/feedback/domain/model"
	"pgfeedback/internal/shared/logger"
)

// streamPrefix namespaces the journal streams inside a shared Redis.
const streamPrefix = "pgfeedback:changes:"

// maxEventsPerRead bounds one Since call.
const maxEventsPerRead = 1000

// RedisEventJournal implements port.EventJournal on Redis Streams, one
// stream per collection. The Redis message id doubles as the resume token.
type RedisEventJournal struct {
	client *redis.Client
	logger logger.Logger
}

// NewRedisEventJournal creates a journal on the given client.
func NewRedisEventJournal(client *redis.Client, log logger.Logger) *RedisEventJournal {
	return &RedisEventJournal{
		client: client,
		logger: log.WithComponent("redis_journal"),
	}
}

func streamName(collection string) string {
	return streamPrefix + collection
}

// Append records one change event in the collection's stream.
func (r *RedisEventJournal) Append(ctx context.Context, event model.ChangeEvent) error {
	data, err := json.Marshal(event.Data)
	if err != nil {
		r.logger.Error("Failed to serialize change event data", zap.Error(err))
		return err
	}

	stream := streamName(event.Collection)
	_, err = r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"kind":       string(event.Kind),
			"collection": event.Collection,
			"key":        event.Key,
			"data":       data,
			"timestamp":  event.Timestamp.UnixNano(),
		},
	}).Result()
	if err != nil {
		r.logger.Error("Failed to append change event to Redis",
			zap.String("stream", stream),
			zap.String("kind", string(event.Kind)),
			zap.Error(err))
		return err
	}

	r.logger.Debug("Change event journaled",
		zap.String("stream", stream),
		zap.String("key", event.Key))
	return nil
}

// Since reads events recorded after the resume token. An empty token reads
// from the start of the retained window; a missing stream yields an empty
// slice, not an error.
func (r *RedisEventJournal) Since(ctx context.Context, collection string, token string) ([]model.ChangeEvent, error) {
	stream := streamName(collection)

	exists, err := r.client.Exists(ctx, stream).Result()
	if err != nil {
		r.logger.Error("Failed to check journal stream existence",
			zap.String("stream", stream),
			zap.Error(err))
		return nil, err
	}
	if exists == 0 {
		return []model.ChangeEvent{}, nil
	}

	lastID := "0"
	if token != "" {
		lastID = token
	}

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.client.XRead(readCtx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   maxEventsPerRead,
		Block:   0,
	}).Result()
	if err != nil {
		if err == redis.Nil || err == context.DeadlineExceeded {
			return []model.ChangeEvent{}, nil
		}
		r.logger.Error("Failed to read change events from Redis",
			zap.String("stream", stream),
			zap.String("resumeToken", token),
			zap.Error(err))
		return nil, err
	}

	var events []model.ChangeEvent
	for _, streamRes := range res {
		for _, msg := range streamRes.Messages {
			event, err := parseEventFromMessage(msg)
			if err != nil {
				r.logger.Warn("Failed to parse change event from Redis message",
					zap.String("messageId", msg.ID),
					zap.Error(err))
				continue
			}
			event.ResumeToken = msg.ID
			events = append(events, event)
		}
	}

	r.logger.Debug("Read change events from Redis",
		zap.String("stream", stream),
		zap.Int("eventCount", len(events)))
	return events, nil
}

// Trim discards events older than the retention period from every known
// collection stream, using the time-based part of the stream ids.
func (r *RedisEventJournal) Trim(ctx context.Context, retention time.Duration) error {
	minID := fmt.Sprintf("%d-0", time.Now().Add(-retention).UnixMilli())

	collections := []string{model.CollectionRatings, model.CollectionSuggestions, model.CollectionMenus}
	for _, collection := range collections {
		stream := streamName(collection)
		trimmed, err := r.client.XTrimMinID(ctx, stream, minID).Result()
		if err != nil {
			r.logger.Warn("Failed to trim journal stream",
				zap.String("stream", stream),
				zap.Error(err))
			continue
		}
		if trimmed > 0 {
			r.logger.Info("Trimmed old change events",
				zap.String("stream", stream),
				zap.Int64("removed", trimmed))
		}
	}
	return nil
}

// parseEventFromMessage converts a Redis Stream message back into a change
// event.
func parseEventFromMessage(msg redis.XMessage) (model.ChangeEvent, error) {
	event := model.ChangeEvent{}

	if kind, ok := msg.Values["kind"].(string); ok {
		event.Kind = model.ChangeKind(kind)
	}
	if collection, ok := msg.Values["collection"].(string); ok {
		event.Collection = collection
	}
	if key, ok := msg.Values["key"].(string); ok {
		event.Key = key
	}
	if timestampStr, ok := msg.Values["timestamp"].(string); ok {
		if timestamp, err := strconv.ParseInt(timestampStr, 10, 64); err == nil {
			event.Timestamp = time.Unix(0, timestamp)
		}
	}
	if dataStr, ok := msg.Values["data"].(string); ok && dataStr != "" && dataStr != "null" {
		var data map[string]interface{}
		if err := json.Unmarshal([]byte(dataStr), &data); err == nil {
			event.Data = data
		}
	}

	return event, nil
}
