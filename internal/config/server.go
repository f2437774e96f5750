package config

import "net"

// DefaultMessageCacheSize bounds how many messages are kept per channel.
// It matches the largest selectable context length.
const DefaultMessageCacheSize = 100

// GetBindAddr returns the address the host bridge listens on
func GetBindAddr() string {
	host := GetEnvOrDefault("BIND_HOST", "127.0.0.1")
	port := GetEnvOrDefault("PORT", "8080")
	return net.JoinHostPort(host, port)
}

// GetSingleFlightPerChannel reports whether concurrent replies for the same
// channel should be refused while one is in flight
func GetSingleFlightPerChannel() bool {
	return parseEnvBool("SINGLE_FLIGHT_PER_CHANNEL", false)
}

// GetMessageCacheSize returns the per-channel message cache capacity
func GetMessageCacheSize() int {
	return parseEnvInt("MESSAGE_CACHE_SIZE", DefaultMessageCacheSize)
}
