package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/deepgram/aireply/internal/services/assistant"
	"github.com/deepgram/aireply/pkg/httpext"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// ReplyRequest is the optional body of a reply command
type ReplyRequest struct {
	IsGuild bool `json:"is_guild"`
}

// HandleReply runs the reply command for a channel. The outcome is returned
// to the caller; the reply itself and any notice go out over the websocket.
func HandleReply(replyAssistant *assistant.Assistant, w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		log.Warn().Err(err).Msg("Client sent malformed reply request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	inv := assistant.Invocation{
		ChannelID:       vars["channelID"],
		IsGuild:         req.IsGuild,
		AnchorMessageID: vars["messageID"],
	}

	log.Info().
		Str("channel_id", inv.ChannelID).
		Str("anchor_message_id", inv.AnchorMessageID).
		Bool("is_guild", inv.IsGuild).
		Msg("Received reply request")

	outcome := replyAssistant.Reply(r.Context(), inv)
	httpext.JsonResponse(w, http.StatusOK, outcome)
}
