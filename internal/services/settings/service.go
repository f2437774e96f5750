package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/deepgram/aireply/internal/config"
	"github.com/deepgram/aireply/internal/infrastructure/redis"
	"github.com/rs/zerolog/log"
)

// Service owns the settings lifecycle: loaded once at start, saved on change.
// Readers get a copy, so a reply in flight never sees a half-applied update.
type Service struct {
	mu      sync.RWMutex
	store   Store
	current PluginSettings
}

// NewService picks the Redis store when Redis is reachable and falls back to memory
func NewService(redisService *redis.Service) *Service {
	var store Store
	if redisService != nil {
		if err := redisService.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Redis unavailable - settings will not survive restarts")
			store = NewMemoryStore()
		} else {
			store = NewRedisStore(redisService, config.GetSettingsKey())
		}
	} else {
		store = NewMemoryStore()
	}

	return NewServiceWithStore(store)
}

// NewServiceWithStore creates a service on top of an explicit store
func NewServiceWithStore(store Store) *Service {
	return &Service{
		store:   store,
		current: Defaults(),
	}
}

// Load reads persisted settings. When nothing is stored, defaults are used and
// seedAPIKey (if any) becomes the initial key.
func (s *Service) Load(ctx context.Context, seedAPIKey string) error {
	loaded, err := s.store.Load(ctx)
	if errors.Is(err, ErrNotStored) {
		loaded = Defaults()
		loaded.APIKey = seedAPIKey
		log.Info().Bool("api_key_set", loaded.HasAPIKey()).Msg("No stored settings - using defaults")
	} else if errors.Is(err, ErrUnreadable) {
		log.Warn().Err(err).Msg("Stored settings are unreadable - using defaults")
		loaded = Defaults()
		loaded.APIKey = seedAPIKey
	} else if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	} else if verr := loaded.Validate(); verr != nil {
		log.Warn().Err(verr).Msg("Stored settings are invalid - using defaults")
		apiKey := loaded.APIKey
		loaded = Defaults()
		loaded.APIKey = apiKey
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the current settings
func (s *Service) Get() PluginSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply validates and persists a settings change, returning the new settings
func (s *Service) Apply(ctx context.Context, update Update) (PluginSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := update.Apply(s.current)
	if err := next.Validate(); err != nil {
		return PluginSettings{}, err
	}

	if err := s.store.Save(ctx, next); err != nil {
		log.Error().Err(err).Msg("Failed to persist settings")
		return PluginSettings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	s.current = next
	log.Info().
		Str("model", next.Model).
		Int("context_length", next.ContextLength).
		Str("chat_scope", string(next.ChatScope)).
		Str("output_mode", string(next.OutputMode)).
		Msg("Settings updated")
	return next, nil
}
