package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces record keys.
const DefaultKeyPrefix = "tle:record"

var (
	// ErrRecordNotFound indicates no record is stored for the list name
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidRecord indicates the stored record is corrupted
	ErrInvalidRecord = errors.New("invalid record")
)

// RedisSink stores records as JSON values in Redis.
type RedisSink struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisSink creates a Redis-backed sink. A zero ttl keeps records
// until they are replaced.
func NewRedisSink(redisClient *redis.Client, prefix string, ttl time.Duration) *RedisSink {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisSink{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Key returns the Redis key for a list name.
func (s *RedisSink) Key(name string) string {
	return s.prefix + ":" + name
}

// Write replaces the record for name.
func (s *RedisSink) Write(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("invalid list name %q", name)
	}

	record := Record{
		ListName:  name,
		Data:      data,
		FetchedAt: s.now(),
	}

	payload, err := json.Marshal(record)
	if err != nil {
		Errors.WithLabelValues("redis", "write").Inc()
		return fmt.Errorf("marshal record: %w", err)
	}

	if err := s.redis.Set(ctx, s.Key(name), payload, s.ttl).Err(); err != nil {
		Errors.WithLabelValues("redis", "write").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	Writes.WithLabelValues("redis").Inc()
	WrittenBytes.WithLabelValues("redis").Add(float64(len(data)))
	return nil
}

// Get returns the stored record for name.
// Returns ErrRecordNotFound if nothing is stored.
func (s *RedisSink) Get(ctx context.Context, name string) (*Record, error) {
	payload, err := s.redis.Get(ctx, s.Key(name)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRecordNotFound
		}
		Errors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		Errors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	return &record, nil
}

// Delete removes the record for name.
func (s *RedisSink) Delete(ctx context.Context, name string) error {
	if err := s.redis.Del(ctx, s.Key(name)).Err(); err != nil {
		Errors.WithLabelValues("redis", "delete").Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
