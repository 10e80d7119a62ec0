package livestate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fleetsync/server/internal/models"
)

// Pub/sub channels consumed by dashboard collaborators.
const (
	TelemetryChannel = "fleet:telemetry"
	AlertsChannel    = "fleet:alerts"
)

const stateTTL = 5 * time.Minute

// Cache mirrors the latest vehicle usage into Redis and publishes sync
// and alert events for live dashboards. It is optional: a nil *Cache is
// a no-op, and every failure is the caller's to log, never to abort on.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Cache{client: client}, nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

// PublishVehicleState updates the vehicle's state hash and publishes the
// usage snapshot on the telemetry channel.
func (c *Cache) PublishVehicleState(ctx context.Context, vehicle *models.Vehicle) error {
	if c == nil {
		return nil
	}

	state := map[string]interface{}{
		"geotab_id":       vehicle.GeotabID,
		"name":            vehicle.Name,
		"current_mileage": vehicle.CurrentMileage,
		"current_hours":   vehicle.CurrentHours,
		"last_sync":       vehicle.LastSync.Unix(),
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle state: %w", err)
	}

	stateKey := fmt.Sprintf("vehicle:%s:state", vehicle.GeotabID)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, stateKey, state)
	pipe.Expire(ctx, stateKey, stateTTL)
	pipe.Publish(ctx, TelemetryChannel, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// PublishAlert publishes a dispatched alert on the alerts channel.
func (c *Cache) PublishAlert(ctx context.Context, payload []byte) error {
	if c == nil {
		return nil
	}
	return c.client.Publish(ctx, AlertsChannel, payload).Err()
}
