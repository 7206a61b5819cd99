package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fleet-backend/internal/config"
	"fleet-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// Fleet summary cache key and TTL
const (
	FleetSummaryKey = "fleet:summary"
	summaryTTL      = 60 * time.Second
)

var client *redis.Client

// Init initializes the Redis connection. The cache degrades gracefully:
// every accessor treats a nil client as a miss.
func Init(cfg *config.Config) error {
	if cfg.Redis.Host == "" {
		return fmt.Errorf("redis not configured")
	}

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client
func GetClient() *redis.Client {
	return client
}

// GetFleetSummary returns the cached revenue summary, if present.
func GetFleetSummary(ctx context.Context) (*models.FleetSummary, bool) {
	if client == nil {
		return nil, false
	}
	raw, err := client.Get(ctx, FleetSummaryKey).Bytes()
	if err != nil {
		return nil, false
	}
	var summary models.FleetSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// SetFleetSummary caches the revenue summary for a short window.
func SetFleetSummary(ctx context.Context, summary *models.FleetSummary) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := client.Set(ctx, FleetSummaryKey, raw, summaryTTL).Err(); err != nil {
		log.Printf("[Cache] Failed to cache fleet summary: %v", err)
	}
}

// InvalidateFleetSummary drops the cached summary after any successful
// fleet mutation.
func InvalidateFleetSummary(ctx context.Context) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, FleetSummaryKey).Err(); err != nil {
		log.Printf("[Cache] Failed to invalidate fleet summary: %v", err)
	}
}
