package config

import (
	"github.com/rs/zerolog/log"
)

func GetRedisURL() string {
	value := GetEnvOrDefault("REDIS_URL", "")
	if value == "" {
		log.Debug().Msg("REDIS_URL not set - settings will be kept in memory")
	}
	return value
}

func GetRedisPassword() string {
	return GetEnvOrDefault("REDIS_PASSWORD", "")
}

// GetSettingsKey returns the Redis key the plugin settings are stored under
func GetSettingsKey() string {
	return GetEnvOrDefault("SETTINGS_KEY", "aireply:settings")
}
