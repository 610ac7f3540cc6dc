// Package events broadcasts world-event contributions between running
// instances via Redis Streams. The bus is optional: when Redis is not
// configured the game runs with purely local event progress.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Contribution is a single player's increment toward a world event.
type Contribution struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Amount    float64   `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

const contributionStream = "vida:world:contributions"

// Bus handles cross-instance world-event fan-out via Redis Streams.
type Bus struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewBus creates a Redis-backed contribution bus.
func NewBus(redisURL string, logger *zap.Logger) (*Bus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Bus{rdb: rdb, logger: logger}, nil
}

// Publish appends a contribution to the shared stream.
func (b *Bus) Publish(ctx context.Context, c *Contribution) error {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	_, err = b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: contributionStream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish contribution: %w", err)
	}

	b.logger.Debug("published contribution",
		zap.String("event", c.EventID),
		zap.String("user", c.UserID),
		zap.Float64("amount", c.Amount))
	return nil
}

// Subscribe listens for contributions from other instances.
// Returns a channel that emits contributions. Cancel the context to stop.
func (b *Bus) Subscribe(ctx context.Context) <-chan *Contribution {
	ch := make(chan *Contribution, 16)

	go func() {
		defer close(ch)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			results, err := b.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{contributionStream, lastID},
				Count:   10,
				Block:   time.Second * 2,
			}).Result()

			if err != nil {
				if err == context.Canceled || err == context.DeadlineExceeded {
					return
				}
				continue
			}

			for _, r := range results {
				for _, msg := range r.Messages {
					lastID = msg.ID
					data, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					var c Contribution
					if json.Unmarshal([]byte(data), &c) == nil {
						ch <- &c
					}
				}
			}
		}
	}()

	return ch
}

// Close shuts down the Redis connection.
func (b *Bus) Close() error {
	return b.rdb.Close()
}
