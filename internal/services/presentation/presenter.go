// Package presentation routes generated text back into the host chat UI.
package presentation

import (
	"context"
	"time"
)

// Level classifies a notice shown to the user
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelFailure Level = "failure"
)

// Notice is a transient, local-only message for the invoking user
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// EphemeralMessage is a bot-authored message only the invoking user sees
type EphemeralMessage struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Presenter is the host UI surface. Nothing sent through it reaches other
// chat participants.
type Presenter interface {
	SendEphemeral(ctx context.Context, msg EphemeralMessage) error
	InsertText(ctx context.Context, channelID, text string) error
	Notify(ctx context.Context, channelID string, notice Notice) error
}
