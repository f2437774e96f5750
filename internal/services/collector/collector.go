// Package collector turns the host's cached channel history into the
// conversation context sent with a completion request.
package collector

import (
	"context"
	"fmt"

	"github.com/deepgram/aireply/internal/domain/chat/models"
	"github.com/rs/zerolog/log"
)

// MessageReader is read-only access to the host's message cache
type MessageReader interface {
	Recent(ctx context.Context, channelID string, limit int) ([]models.HostMessage, error)
	Until(ctx context.Context, channelID, messageID string, limit int) ([]models.HostMessage, bool, error)
}

type Collector struct {
	reader MessageReader
}

func New(reader MessageReader) *Collector {
	return &Collector{reader: reader}
}

// Collect returns up to limit of the channel's newest messages, oldest first.
// An empty channel yields an empty slice, not an error.
func (c *Collector) Collect(ctx context.Context, channelID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("context length must be positive, got %d", limit)
	}

	cached, err := c.reader.Recent(ctx, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel %s: %w", channelID, err)
	}

	log.Debug().
		Str("channel_id", channelID).
		Int("limit", limit).
		Int("collected", len(cached)).
		Msg("Collected channel context")
	return toChatMessages(cached), nil
}

// CollectUntil is Collect with the window ending at messageID. When the anchor
// is not cached the channel tail is used instead.
func (c *Collector) CollectUntil(ctx context.Context, channelID, messageID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("context length must be positive, got %d", limit)
	}

	cached, found, err := c.reader.Until(ctx, channelID, messageID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel %s: %w", channelID, err)
	}
	if !found {
		log.Debug().
			Str("channel_id", channelID).
			Str("message_id", messageID).
			Msg("Anchor message not cached - using channel tail")
		return c.Collect(ctx, channelID, limit)
	}

	return toChatMessages(cached), nil
}

// toChatMessages tags every message as a user turn, bot-authored ones included
func toChatMessages(cached []models.HostMessage) []models.ChatMessage {
	out := make([]models.ChatMessage, len(cached))
	for i, m := range cached {
		out[i] = models.ChatMessage{
			Content: m.Content,
			Author: models.Author{
				DisplayName: m.Author.Name(),
				IsBot:       m.Author.Bot,
			},
			Role: models.RoleUser,
		}
	}
	return out
}
