package presentation

import (
	"context"
	"fmt"
	"time"

	"github.com/deepgram/aireply/internal/services/settings"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BotName is the author shown on ephemeral replies
const BotName = "AI Reply"

// Output is what a completed reply hands to the adapter. Debug is empty when
// the debug summary is disabled.
type Output struct {
	Text  string
	Debug string
}

type Adapter struct {
	presenter Presenter
	now       func() time.Time
}

func NewAdapter(presenter Presenter) *Adapter {
	return &Adapter{
		presenter: presenter,
		now:       time.Now,
	}
}

// ScopeAllows reports whether replies may be generated in a channel.
// isGuild is true for multi-user server channels.
func ScopeAllows(scope settings.ChatScope, isGuild bool) bool {
	switch scope {
	case settings.ScopeBoth:
		return true
	case settings.ScopeDMs:
		return !isGuild
	case settings.ScopeChannels:
		return isGuild
	default:
		return false
	}
}

// Compose joins the generated text and the optional debug summary
func Compose(out Output) string {
	if out.Debug == "" {
		return out.Text
	}
	return out.Text + "\n\n" + out.Debug
}

// Present delivers out according to the configured output mode
func (a *Adapter) Present(ctx context.Context, channelID string, out Output, mode settings.OutputMode) error {
	switch mode {
	case settings.OutputTypebar:
		if err := a.presenter.InsertText(ctx, channelID, out.Text); err != nil {
			return fmt.Errorf("failed to insert text: %w", err)
		}
		// The reply is already in the compose box; a lost debug summary is not a failed reply
		if out.Debug != "" {
			if err := a.ephemeral(ctx, channelID, out.Debug); err != nil {
				log.Warn().Err(err).Str("channel_id", channelID).Msg("Failed to send debug summary")
			}
		}
		return nil
	case settings.OutputEphemeral:
		return a.ephemeral(ctx, channelID, Compose(out))
	default:
		return fmt.Errorf("unknown output mode %q", mode)
	}
}

// Notify shows a local-only notice
func (a *Adapter) Notify(ctx context.Context, channelID string, notice Notice) error {
	log.Debug().
		Str("channel_id", channelID).
		Str("level", string(notice.Level)).
		Msg(notice.Message)
	return a.presenter.Notify(ctx, channelID, notice)
}

func (a *Adapter) ephemeral(ctx context.Context, channelID, content string) error {
	msg := EphemeralMessage{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		Author:    BotName,
		Content:   content,
		CreatedAt: a.now(),
	}
	if err := a.presenter.SendEphemeral(ctx, msg); err != nil {
		return fmt.Errorf("failed to send ephemeral message: %w", err)
	}
	return nil
}
