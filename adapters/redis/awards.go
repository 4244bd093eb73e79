package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"badgekit/core"
	"badgekit/engine"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// AwardStore implements engine.AwardStore on Redis.
// Data structure:
// - award:{badge}:u:{recipient} -> recipient (lifetime-scope guard)
// - award:{badge}:c:{content}   -> recipient (content-scope guard)
// - awards:{recipient}:{badge}  -> int64 (per-recipient award count)
// Guard creation and counter increment happen inside one Lua script, so an
// insert is atomic even under concurrent deliveries of the same event.
type AwardStore struct {
	client *redis.Client
}

// New creates a Redis-backed award store with the provided configuration
func New(config Config) (*AwardStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &AwardStore{client: client}, nil
}

// NewWithClient creates an AwardStore using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client) *AwardStore {
	return &AwardStore{client: client}
}

// Close closes the Redis connection
func (s *AwardStore) Close() error {
	return s.client.Close()
}

// guardKey generates the uniqueness key for the badge's scope.
func guardKey(badge core.BadgeKey, recipient core.UserID, content *core.ContentRef) string {
	if content != nil {
		return fmt.Sprintf("award:%s:c:%s", badge, *content)
	}
	return fmt.Sprintf("award:%s:u:%s", badge, recipient)
}

// countKey generates the per-recipient count key for a badge.
func countKey(badge core.BadgeKey, recipient core.UserID) string {
	return fmt.Sprintf("awards:%s:%s", recipient, badge)
}

// Lua script for atomic insert-if-absent plus counter update.
var insertAwardScript = redis.NewScript(`
	local guard = KEYS[1]
	local counter = KEYS[2]
	if redis.call('EXISTS', guard) == 1 then
		return 0
	end
	redis.call('SET', guard, ARGV[1])
	redis.call('INCR', counter)
	return 1
`)

// InsertIfAbsent atomically records the award unless its scope key already
// holds one.
func (s *AwardStore) InsertIfAbsent(ctx context.Context, badge core.BadgeKey, recipient core.UserID, content *core.ContentRef) (bool, error) {
	keys := []string{guardKey(badge, recipient, content), countKey(badge, recipient)}
	result, err := insertAwardScript.Run(ctx, s.client, keys, string(recipient)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to insert award: %w", err)
	}
	created, ok := result.(int64)
	if !ok {
		return false, errors.New("unexpected result type from Redis script")
	}
	return created == 1, nil
}

// Count returns the recipient's award count for the badge.
func (s *AwardStore) Count(ctx context.Context, badge core.BadgeKey, recipient core.UserID) (int, error) {
	n, err := s.client.Get(ctx, countKey(badge, recipient)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count awards: %w", err)
	}
	return n, nil
}

var _ engine.AwardStore = (*AwardStore)(nil)
