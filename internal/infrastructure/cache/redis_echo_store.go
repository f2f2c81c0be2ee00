package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/erp/content-sync/internal/domain/sync"
)

const defaultEchoKeyPrefix = "sync:echo:"

// RedisEchoStore keeps echo markers in Redis so multiple bridge
// instances share suppression state. Markers expire via TTL; nothing
// ever deletes them explicitly.
type RedisEchoStore struct {
	client    *redis.Client
	keyPrefix string
	window    time.Duration
	logger    *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisEchoStore creates an echo store backed by a new Redis client
func NewRedisEchoStore(cfg RedisConfig, window time.Duration, logger *zap.Logger) (*RedisEchoStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisEchoStoreWithClient(client, window, logger), nil
}

// NewRedisEchoStoreWithClient creates an echo store on an existing client
func NewRedisEchoStoreWithClient(client *redis.Client, window time.Duration, logger *zap.Logger) *RedisEchoStore {
	return &RedisEchoStore{
		client:    client,
		keyPrefix: defaultEchoKeyPrefix,
		window:    window,
		logger:    logger,
	}
}

// Mark records a marker with the ignore-window TTL. A failed write is
// logged and swallowed: the cost of a lost marker is one redundant sync,
// not divergence.
func (s *RedisEchoStore) Mark(ctx context.Context, entityID string, side sync.Side) {
	if err := s.client.Set(ctx, s.key(entityID, side), "1", s.window).Err(); err != nil {
		s.logger.Warn("echo marker write failed",
			zap.String("entity_id", entityID),
			zap.String("side", side.String()),
			zap.Error(err))
	}
}

// IsMarked reports whether a live marker exists. A failed read answers
// false so a Redis outage degrades to syncing too much rather than
// dropping real changes.
func (s *RedisEchoStore) IsMarked(ctx context.Context, entityID string, side sync.Side) bool {
	n, err := s.client.Exists(ctx, s.key(entityID, side)).Result()
	if err != nil {
		s.logger.Warn("echo marker read failed",
			zap.String("entity_id", entityID),
			zap.String("side", side.String()),
			zap.Error(err))
		return false
	}
	return n > 0
}

func (s *RedisEchoStore) key(entityID string, side sync.Side) string {
	return s.keyPrefix + entityID + ":" + side.String()
}

// Close closes the Redis client
func (s *RedisEchoStore) Close() error {
	return s.client.Close()
}

// Ensure RedisEchoStore implements EchoMarkerStore
var _ sync.EchoMarkerStore = (*RedisEchoStore)(nil)
