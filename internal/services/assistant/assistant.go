// Package assistant runs one AI reply: scope gate, context collection,
// completion and presentation, turning every failure into a local notice.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/deepgram/aireply/internal/domain/chat/models"
	"github.com/deepgram/aireply/internal/services/collector"
	"github.com/deepgram/aireply/internal/services/completion"
	"github.com/deepgram/aireply/internal/services/inflight"
	"github.com/deepgram/aireply/internal/services/presentation"
	"github.com/deepgram/aireply/internal/services/settings"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// User-facing notice texts
const (
	NoticeScope        = "AI responses are disabled for this type of channel. Change the chat scope in the plugin settings."
	NoticeMissingKey   = "No API key configured. Add one in the plugin settings."
	NoticeEmptyContext = "No messages found in this channel to respond to."
	NoticeBusy         = "A response is already being generated for this channel."
	NoticeFailure      = "Failed to generate an AI response."
)

// Completer sends a completion request
type Completer interface {
	Complete(ctx context.Context, apiKey string, req completion.CompletionRequest) (*openai.ChatCompletionResponse, error)
}

// SettingsProvider returns the current settings
type SettingsProvider interface {
	Get() settings.PluginSettings
}

type Assistant struct {
	settings  SettingsProvider
	collector *collector.Collector
	completer Completer
	adapter   *presentation.Adapter
	guard     *inflight.Guard
}

func New(settingsProvider SettingsProvider, c *collector.Collector, completer Completer, adapter *presentation.Adapter, guard *inflight.Guard) *Assistant {
	if guard == nil {
		guard = inflight.NewGuard(false)
	}
	return &Assistant{
		settings:  settingsProvider,
		collector: c,
		completer: completer,
		adapter:   adapter,
		guard:     guard,
	}
}

// Reply generates and presents a reply for inv. It never returns an error:
// the outcome says what happened and which notice, if any, was shown.
func (a *Assistant) Reply(ctx context.Context, inv Invocation) (outcome Outcome) {
	outcome.RequestID = uuid.New().String()
	cfg := a.settings.Get()

	logger := log.With().
		Str("request_id", outcome.RequestID).
		Str("channel_id", inv.ChannelID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("Recovered from panic while generating reply")
			outcome = a.reject(ctx, inv.ChannelID, outcome, StatusFailed, presentation.LevelFailure, NoticeFailure)
		}
	}()

	if !presentation.ScopeAllows(cfg.ChatScope, inv.IsGuild) {
		logger.Debug().
			Str("chat_scope", string(cfg.ChatScope)).
			Bool("is_guild", inv.IsGuild).
			Msg("Reply refused by chat scope")
		return a.reject(ctx, inv.ChannelID, outcome, StatusRejected, presentation.LevelInfo, NoticeScope)
	}

	if !cfg.HasAPIKey() {
		return a.reject(ctx, inv.ChannelID, outcome, StatusRejected, presentation.LevelWarning, NoticeMissingKey)
	}

	release, ok := a.guard.TryAcquire(inv.ChannelID)
	if !ok {
		return a.reject(ctx, inv.ChannelID, outcome, StatusRejected, presentation.LevelInfo, NoticeBusy)
	}
	defer release()

	messages, err := a.collect(ctx, inv, cfg.ContextLength)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to collect channel context")
		return a.reject(ctx, inv.ChannelID, outcome, StatusFailed, presentation.LevelFailure, NoticeFailure)
	}
	if len(messages) == 0 {
		return a.reject(ctx, inv.ChannelID, outcome, StatusRejected, presentation.LevelWarning, NoticeEmptyContext)
	}

	req, err := completion.BuildRequest(cfg.Model, messages, cfg.SystemInstruction)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to build completion request")
		return a.reject(ctx, inv.ChannelID, outcome, StatusFailed, presentation.LevelFailure, NoticeFailure)
	}

	resp, err := a.completer.Complete(ctx, cfg.APIKey, req)
	if err != nil {
		if cfg.EnableLogging {
			logCompletionError(logger.Error(), err)
		}
		return a.reject(ctx, inv.ChannelID, outcome, StatusFailed, presentation.LevelFailure, NoticeFailure)
	}

	result, err := completion.Interpret(resp)
	if err != nil {
		if cfg.EnableLogging {
			logger.Error().Err(err).Msg("Completion returned no choices")
		}
		return a.reject(ctx, inv.ChannelID, outcome, StatusFailed, presentation.LevelFailure, NoticeFailure)
	}

	out := presentation.Output{
		Text:  result.Text,
		Debug: debugSummary(cfg, result, completion.WithInstruction(messages, cfg.SystemInstruction)),
	}
	if err := a.adapter.Present(ctx, inv.ChannelID, out, cfg.OutputMode); err != nil {
		logger.Error().Err(err).Msg("Failed to present reply")
		return a.reject(ctx, inv.ChannelID, outcome, StatusFailed, presentation.LevelFailure, NoticeFailure)
	}

	logger.Info().
		Str("model", result.Model).
		Int("context_messages", len(messages)).
		Int("total_tokens", result.Usage.TotalTokens).
		Str("output_mode", string(cfg.OutputMode)).
		Msg("Reply delivered")

	outcome.Status = StatusDelivered
	outcome.Text = result.Text
	return outcome
}

func (a *Assistant) collect(ctx context.Context, inv Invocation, limit int) ([]models.ChatMessage, error) {
	if inv.AnchorMessageID != "" {
		return a.collector.CollectUntil(ctx, inv.ChannelID, inv.AnchorMessageID, limit)
	}
	return a.collector.Collect(ctx, inv.ChannelID, limit)
}

// reject shows a notice and records it on the outcome. Notice delivery
// failures are logged only; there is nobody left to tell.
func (a *Assistant) reject(ctx context.Context, channelID string, outcome Outcome, status Status, level presentation.Level, message string) Outcome {
	notice := presentation.Notice{Level: level, Message: message}
	if err := a.adapter.Notify(ctx, channelID, notice); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("Failed to deliver notice")
	}

	outcome.Status = status
	outcome.Notice = &notice
	return outcome
}

func debugSummary(cfg settings.PluginSettings, result completion.Result, sent []models.ChatMessage) string {
	estimate := completion.EstimateTokens(sent)

	if !cfg.ShowDebugInfo {
		if cfg.ShowTokenEstimate {
			return fmt.Sprintf("-# Estimated context tokens: ~%d", estimate)
		}
		return ""
	}

	model := result.Model
	if model == "" {
		model = cfg.Model
	}
	return completion.FormatDebug(completion.DebugInfo{
		Model:           model,
		Usage:           result.Usage,
		EstimatedTokens: estimate,
		ShowEstimate:    cfg.ShowTokenEstimate,
	})
}

func logCompletionError(event *zerolog.Event, err error) {
	var upstream *completion.UpstreamError
	var malformed *completion.MalformedResponseError

	switch {
	case errors.As(err, &upstream):
		event.Int("status", upstream.StatusCode).
			Str("body", upstream.Body).
			Msg("Completions API returned an error")
	case errors.As(err, &malformed):
		event.Err(malformed.Err).
			Str("body", malformed.Body).
			Msg("Completions API returned a malformed response")
	default:
		event.Err(err).Msg("Completion request failed")
	}
}
