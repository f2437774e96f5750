package settings

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ChatScope restricts which channel types replies are allowed in
type ChatScope string

const (
	ScopeDMs      ChatScope = "dms"
	ScopeChannels ChatScope = "channels"
	ScopeBoth     ChatScope = "both"
)

// OutputMode selects where generated text ends up
type OutputMode string

const (
	OutputEphemeral OutputMode = "ephemeral"
	OutputTypebar   OutputMode = "typebar"
)

// Free-tier models selectable in the settings panel
const (
	ModelLlama   = "meta-llama/llama-3.1-8b-instruct:free"
	ModelMistral = "mistralai/mistral-7b-instruct:free"
	ModelGemma   = "google/gemma-2-9b-it:free"
)

// Models lists the selectable models in display order
var Models = []string{ModelLlama, ModelMistral, ModelGemma}

// ContextLengths lists the selectable context window sizes
var ContextLengths = []int{5, 10, 20, 30, 50, 100}

// PluginSettings is the user configuration of the extension
type PluginSettings struct {
	ContextLength     int        `json:"context_length" validate:"oneof=5 10 20 30 50 100"`
	Model             string     `json:"model" validate:"oneof=meta-llama/llama-3.1-8b-instruct:free mistralai/mistral-7b-instruct:free google/gemma-2-9b-it:free"`
	ChatScope         ChatScope  `json:"chat_scope" validate:"oneof=dms channels both"`
	SystemInstruction string     `json:"system_instruction" validate:"max=4000"`
	OutputMode        OutputMode `json:"output_mode" validate:"oneof=ephemeral typebar"`
	ShowDebugInfo     bool       `json:"show_debug_info"`
	ShowTokenEstimate bool       `json:"show_token_estimate"`
	EnableLogging     bool       `json:"enable_logging"`
	APIKey            string     `json:"api_key"`
}

// Defaults returns the settings used before the user changes anything
func Defaults() PluginSettings {
	return PluginSettings{
		ContextLength: 10,
		Model:         ModelLlama,
		ChatScope:     ScopeBoth,
		OutputMode:    OutputEphemeral,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance; it caches struct info
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks every field against its allowed values
func (s PluginSettings) Validate() error {
	if err := Validator().Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// HasAPIKey reports whether an API key is configured
func (s PluginSettings) HasAPIKey() bool {
	return s.APIKey != ""
}

// Public is the settings view safe to hand back to the host UI
type Public struct {
	ContextLength     int        `json:"context_length"`
	Model             string     `json:"model"`
	ChatScope         ChatScope  `json:"chat_scope"`
	SystemInstruction string     `json:"system_instruction"`
	OutputMode        OutputMode `json:"output_mode"`
	ShowDebugInfo     bool       `json:"show_debug_info"`
	ShowTokenEstimate bool       `json:"show_token_estimate"`
	EnableLogging     bool       `json:"enable_logging"`
	APIKeySet         bool       `json:"api_key_set"`
}

// Public returns the settings with the API key masked
func (s PluginSettings) Public() Public {
	return Public{
		ContextLength:     s.ContextLength,
		Model:             s.Model,
		ChatScope:         s.ChatScope,
		SystemInstruction: s.SystemInstruction,
		OutputMode:        s.OutputMode,
		ShowDebugInfo:     s.ShowDebugInfo,
		ShowTokenEstimate: s.ShowTokenEstimate,
		EnableLogging:     s.EnableLogging,
		APIKeySet:         s.HasAPIKey(),
	}
}

// Update is a partial settings change. Nil fields keep their current value.
type Update struct {
	ContextLength     *int        `json:"context_length,omitempty"`
	Model             *string     `json:"model,omitempty"`
	ChatScope         *ChatScope  `json:"chat_scope,omitempty"`
	SystemInstruction *string     `json:"system_instruction,omitempty"`
	OutputMode        *OutputMode `json:"output_mode,omitempty"`
	ShowDebugInfo     *bool       `json:"show_debug_info,omitempty"`
	ShowTokenEstimate *bool       `json:"show_token_estimate,omitempty"`
	EnableLogging     *bool       `json:"enable_logging,omitempty"`
	APIKey            *string     `json:"api_key,omitempty"`
}

// Apply returns a copy of s with the update applied
func (u Update) Apply(s PluginSettings) PluginSettings {
	if u.ContextLength != nil {
		s.ContextLength = *u.ContextLength
	}
	if u.Model != nil {
		s.Model = *u.Model
	}
	if u.ChatScope != nil {
		s.ChatScope = *u.ChatScope
	}
	if u.SystemInstruction != nil {
		s.SystemInstruction = *u.SystemInstruction
	}
	if u.OutputMode != nil {
		s.OutputMode = *u.OutputMode
	}
	if u.ShowDebugInfo != nil {
		s.ShowDebugInfo = *u.ShowDebugInfo
	}
	if u.ShowTokenEstimate != nil {
		s.ShowTokenEstimate = *u.ShowTokenEstimate
	}
	if u.EnableLogging != nil {
		s.EnableLogging = *u.EnableLogging
	}
	if u.APIKey != nil {
		s.APIKey = *u.APIKey
	}
	return s
}
