//go:build integration

package event

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/burgasvv/parking-service/internal/testutil"
)

func TestIntegrationPublish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() {
		_ = client.Close()
	})

	if err := client.Del(ctx, StreamKey(KindCar)).Err(); err != nil {
		t.Fatalf("clear stream: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	publisher := NewPublisher(client, logger)

	payload := map[string]string{"brand": "Lada", "model": "Vesta"}
	streamID, err := publisher.Publish(ctx, KindCar, payload)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if streamID == "" {
		t.Fatal("stream ID should be set")
	}

	entries, err := client.XRange(ctx, StreamKey(KindCar), "-", "+").Result()
	if err != nil {
		t.Fatalf("XRange failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	if kind := entries[0].Values["kind"]; kind != KindCar {
		t.Errorf("kind = %v, want %q", kind, KindCar)
	}

	raw, ok := entries[0].Values["payload"].(string)
	if !ok {
		t.Fatal("payload should be a string")
	}
	var decoded map[string]string
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("payload should be JSON: %v", err)
	}
	if decoded["model"] != "Vesta" {
		t.Errorf("payload mismatch: %v", decoded)
	}
}
