package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when a key does not exist
var ErrNotFound = errors.New("redis key not found")

// ErrDecode is returned when a stored value is not the expected JSON document
var ErrDecode = errors.New("redis value could not be decoded")

type Service struct {
	client *redis.Client
}

// Options describes how to reach the Redis server. URL may be a bare
// host:port or a redis:// URL.
type Options struct {
	URL      string
	Password string
}

// NewService connects to Redis and verifies the connection with a ping
func NewService(ctx context.Context, opts Options) (*Service, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("redis url is required")
	}

	var redisOpts *redis.Options
	if strings.Contains(opts.URL, "://") {
		parsed, err := redis.ParseURL(opts.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		redisOpts = parsed
	} else {
		redisOpts = &redis.Options{Addr: opts.URL}
	}
	if opts.Password != "" {
		redisOpts.Password = opts.Password
	}

	client := redis.NewClient(redisOpts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().
			Err(err).
			Str("addr", redisOpts.Addr).
			Msg("Failed to establish Redis connection")
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Service{client: client}, nil
}

// NewServiceFromClient wraps an existing client
func NewServiceFromClient(client *redis.Client) *Service {
	return &Service{client: client}
}

// SetJSON stores v as a JSON document without expiry
func (s *Service) SetJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Redis SET operation failed")
		return err
	}
	return nil
}

// GetJSON decodes the JSON document stored at key into v
func (s *Service) GetJSON(ctx context.Context, key string, v interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("key", key).
			Msg("Redis GET operation failed")
		return err
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: key %s: %v", ErrDecode, key, err)
	}
	return nil
}

// Ping checks if Redis is accessible
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *Service) Close() error {
	return s.client.Close()
}
