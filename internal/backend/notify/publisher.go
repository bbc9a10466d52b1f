// Package notify announces catalog mutations to interested listeners.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is used when no channel is configured.
const DefaultChannel = "codex.entries"

type EventKind string

const (
	EventUpsert EventKind = "upsert"
	EventDelete EventKind = "delete"
)

// Event describes a single committed mutation.
type Event struct {
	Kind EventKind `json:"kind"`
	SKU  string    `json:"sku"`
	At   time.Time `json:"at"`
}

// Publisher delivers events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Config selects and configures a publisher.
type Config struct {
	Address  string
	Password string
	DB       int
	Channel  string
}

// NewPublisher returns a Redis publisher, or a NopPublisher when no address
// is configured.
func NewPublisher(cfg Config) Publisher {
	if cfg.Address == "" {
		return NopPublisher{}
	}
	return NewRedisPublisher(cfg)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// RedisPublisher publishes JSON encoded events on a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(cfg Config) *RedisPublisher {
	channel := cfg.Channel
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		channel: channel,
	}
}

func (p *RedisPublisher) Channel() string {
	return p.channel
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event for SKU#%s: %w", event.Kind, event.SKU, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event for SKU#%s: %w", event.Kind, event.SKU, err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
