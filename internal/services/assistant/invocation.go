package assistant

import "github.com/deepgram/aireply/internal/services/presentation"

// Invocation is one user request for an AI reply
type Invocation struct {
	ChannelID string `json:"channel_id" validate:"required"`
	// IsGuild is true for multi-user server channels, false for direct messages
	IsGuild bool `json:"is_guild"`
	// AnchorMessageID ends the context window at a given message. It is set
	// when the reply is triggered from a message's action button.
	AnchorMessageID string `json:"anchor_message_id,omitempty"`
}

// Status summarises how an invocation ended
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusRejected  Status = "rejected"
	StatusFailed    Status = "failed"
)

// Outcome reports the result of an invocation
type Outcome struct {
	RequestID string               `json:"request_id"`
	Status    Status               `json:"status"`
	Text      string               `json:"text,omitempty"`
	Notice    *presentation.Notice `json:"notice,omitempty"`
}
