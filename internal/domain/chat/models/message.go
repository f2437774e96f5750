package models

import (
	"time"

	"github.com/sashabaranov/go-openai"
)

// Role values accepted by the completions API
const (
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
	RoleSystem    = openai.ChatMessageRoleSystem
)

// Author identifies who wrote a chat message
type Author struct {
	DisplayName string `json:"display_name"`
	IsBot       bool   `json:"is_bot"`
}

// ChatMessage is a single role-tagged entry of the conversation context
type ChatMessage struct {
	Content string `json:"content"`
	Author  Author `json:"author"`
	Role    string `json:"role"`
}

// ToOpenAI converts the message to its wire representation
func (m ChatMessage) ToOpenAI() openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role:    m.Role,
		Content: m.Content,
	}
}

// HostAuthor is the author record the host keeps in its message cache
type HostAuthor struct {
	ID          string `json:"id"`
	Username    string `json:"username" validate:"required"`
	DisplayName string `json:"display_name,omitempty"`
	Bot         bool   `json:"bot"`
}

// Name returns the display name, falling back to the username
func (a HostAuthor) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// HostMessage is a message as cached by the host chat client
type HostMessage struct {
	ID        string     `json:"id" validate:"required"`
	ChannelID string     `json:"channel_id"`
	Content   string     `json:"content"`
	Author    HostAuthor `json:"author"`
	Timestamp time.Time  `json:"timestamp"`
}
