package config

// DefaultCompletionsURL is the fixed chat completions endpoint.
const DefaultCompletionsURL = "https://openrouter.ai/api/v1/chat/completions"

// GetCompletionsURL returns the chat completions endpoint. The override exists
// so tests and local mocks can stand in for the remote API.
func GetCompletionsURL() string {
	return GetEnvOrDefault("COMPLETIONS_URL", DefaultCompletionsURL)
}

// GetDefaultAPIKey returns the API key used to seed settings when none are stored
func GetDefaultAPIKey() string {
	return GetEnvOrDefault("OPENROUTER_API_KEY", "")
}
