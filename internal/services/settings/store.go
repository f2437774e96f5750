package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/deepgram/aireply/internal/infrastructure/redis"
)

// ErrNotStored is returned by a Store that holds no settings yet
var ErrNotStored = errors.New("no settings stored")

// ErrUnreadable is returned by a Store whose stored settings cannot be decoded
var ErrUnreadable = errors.New("stored settings are unreadable")

// Store persists plugin settings between runs
type Store interface {
	Load(ctx context.Context) (PluginSettings, error)
	Save(ctx context.Context, s PluginSettings) error
}

type RedisStore struct {
	redisService *redis.Service
	key          string
}

type MemoryStore struct {
	mu       sync.RWMutex
	settings *PluginSettings
}

func NewRedisStore(redisService *redis.Service, key string) *RedisStore {
	return &RedisStore{redisService: redisService, key: key}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Redis Store implementation
func (rs *RedisStore) Load(ctx context.Context) (PluginSettings, error) {
	var s PluginSettings
	err := rs.redisService.GetJSON(ctx, rs.key, &s)
	if errors.Is(err, redis.ErrNotFound) {
		return PluginSettings{}, ErrNotStored
	}
	if errors.Is(err, redis.ErrDecode) {
		return PluginSettings{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if err != nil {
		return PluginSettings{}, err
	}
	return s, nil
}

func (rs *RedisStore) Save(ctx context.Context, s PluginSettings) error {
	return rs.redisService.SetJSON(ctx, rs.key, s)
}

// Memory Store implementation
func (ms *MemoryStore) Load(ctx context.Context) (PluginSettings, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if ms.settings == nil {
		return PluginSettings{}, ErrNotStored
	}
	return *ms.settings, nil
}

func (ms *MemoryStore) Save(ctx context.Context, s PluginSettings) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.settings = &s
	return nil
}
