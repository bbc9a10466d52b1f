package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestNewPublisher_NopWithoutAddress(t *testing.T) {
	p := NewPublisher(Config{})
	if _, ok := p.(NopPublisher); !ok {
		t.Fatalf("expected NopPublisher, got %T", p)
	}
	if err := p.Publish(context.Background(), Event{Kind: EventUpsert, SKU: "A"}); err != nil {
		t.Fatalf("NopPublisher.Publish error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("NopPublisher.Close error: %v", err)
	}
}

func TestRedisPublisher_DefaultChannel(t *testing.T) {
	p := NewRedisPublisher(Config{Address: "127.0.0.1:0"})
	t.Cleanup(func() { _ = p.Close() })
	if p.Channel() != DefaultChannel {
		t.Fatalf("Channel() = %q, want %q", p.Channel(), DefaultChannel)
	}
}

func TestRedisPublisher_Publish(t *testing.T) {
	server := miniredis.RunT(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	subscriber := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = subscriber.Close() })
	sub := subscriber.Subscribe(ctx, "test.entries")
	t.Cleanup(func() { _ = sub.Close() })
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe confirmation error: %v", err)
	}

	p := NewPublisher(Config{Address: server.Addr(), Channel: "test.entries"})
	t.Cleanup(func() { _ = p.Close() })

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := p.Publish(ctx, Event{Kind: EventDelete, SKU: "ABC123", At: at}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("ReceiveMessage error: %v", err)
	}
	var got Event
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("payload is not an event: %v", err)
	}
	if got.Kind != EventDelete || got.SKU != "ABC123" || !got.At.Equal(at) {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestRedisPublisher_PublishFailsWhenServerDown(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run error: %v", err)
	}
	p := NewRedisPublisher(Config{Address: server.Addr()})
	t.Cleanup(func() { _ = p.Close() })
	server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := p.Publish(ctx, Event{Kind: EventUpsert, SKU: "A"}); err == nil {
		t.Fatal("expected error when redis is unavailable")
	}
}
