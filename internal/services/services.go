package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/deepgram/aireply/internal/config"
	"github.com/deepgram/aireply/internal/connections"
	"github.com/deepgram/aireply/internal/infrastructure/messagestore"
	"github.com/deepgram/aireply/internal/infrastructure/redis"
	"github.com/deepgram/aireply/internal/services/assistant"
	"github.com/deepgram/aireply/internal/services/collector"
	"github.com/deepgram/aireply/internal/services/completion"
	"github.com/deepgram/aireply/internal/services/inflight"
	"github.com/deepgram/aireply/internal/services/presentation"
	"github.com/deepgram/aireply/internal/services/settings"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.Mutex
)

// Options controls how services are built
type Options struct {
	RedisURL       string
	RedisPassword  string
	CompletionsURL string
	SeedAPIKey     string
	SingleFlight   bool
	CacheSize      int
	// HTTPClient is used for completion requests; nil uses a plain client
	HTTPClient *http.Client
	// Presenter replaces the websocket connection manager as the UI surface
	Presenter presentation.Presenter
}

// OptionsFromEnv builds Options from the environment
func OptionsFromEnv() Options {
	return Options{
		RedisURL:       config.GetRedisURL(),
		RedisPassword:  config.GetRedisPassword(),
		CompletionsURL: config.GetCompletionsURL(),
		SeedAPIKey:     config.GetDefaultAPIKey(),
		SingleFlight:   config.GetSingleFlightPerChannel(),
		CacheSize:      config.GetMessageCacheSize(),
	}
}

type Services struct {
	redisService      *redis.Service
	settingsService   *settings.Service
	messageStore      *messagestore.Store
	connectionManager *connections.Manager
	assistant         *assistant.Assistant
}

// InitializeServices initializes all required services
func InitializeServices(ctx context.Context, opts Options) (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Redis is optional; settings fall back to memory without it
	var redisService *redis.Service
	if opts.RedisURL != "" {
		svc, err := redis.NewService(ctx, redis.Options{URL: opts.RedisURL, Password: opts.RedisPassword})
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable - continuing without it")
		} else {
			redisService = svc
		}
	}

	settingsService := settings.NewService(redisService)
	if err := settingsService.Load(ctx, opts.SeedAPIKey); err != nil {
		log.Error().Err(err).Msg("Failed to load settings")
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	log.Info().Msg("Initializing settings service")

	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = config.DefaultMessageCacheSize
	}
	messageStore := messagestore.NewStore(cacheSize)

	connectionManager := connections.NewManager(connections.DefaultTimeouts)
	var presenter presentation.Presenter = connectionManager
	if opts.Presenter != nil {
		presenter = opts.Presenter
	}

	completionsURL := opts.CompletionsURL
	if completionsURL == "" {
		completionsURL = config.DefaultCompletionsURL
	}

	replyAssistant := assistant.New(
		settingsService,
		collector.New(messageStore),
		completion.NewClient(completionsURL, opts.HTTPClient),
		presentation.NewAdapter(presenter),
		inflight.NewGuard(opts.SingleFlight),
	)
	log.Info().
		Str("completions_url", completionsURL).
		Bool("single_flight", opts.SingleFlight).
		Int("cache_size", cacheSize).
		Msg("Initializing assistant")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		redisService:      redisService,
		settingsService:   settingsService,
		messageStore:      messageStore,
		connectionManager: connectionManager,
		assistant:         replyAssistant,
	}, nil
}

// GetSettingsService returns the settings service
func (s *Services) GetSettingsService() *settings.Service {
	return s.settingsService
}

// GetMessageStore returns the host message cache
func (s *Services) GetMessageStore() *messagestore.Store {
	return s.messageStore
}

// GetConnectionManager returns the websocket connection manager
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connectionManager
}

// GetAssistant returns the reply assistant
func (s *Services) GetAssistant() *assistant.Assistant {
	return s.assistant
}

// Close releases external connections
func (s *Services) Close() error {
	if s.redisService != nil {
		return s.redisService.Close()
	}
	return nil
}
