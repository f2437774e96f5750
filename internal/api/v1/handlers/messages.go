package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/deepgram/aireply/internal/domain/chat/models"
	"github.com/deepgram/aireply/internal/infrastructure/messagestore"
	"github.com/deepgram/aireply/internal/services/settings"
	"github.com/deepgram/aireply/pkg/httpext"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// ReplaceMessagesRequest carries a snapshot of the host's channel cache
type ReplaceMessagesRequest struct {
	Messages []models.HostMessage `json:"messages" validate:"dive"`
}

// HandleReplaceMessages replaces the cached messages of a channel
func HandleReplaceMessages(store *messagestore.Store, w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channelID"]

	var req ReplaceMessagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("Client sent malformed message snapshot")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := settings.Validator().Struct(req); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("Message snapshot validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	store.Replace(r.Context(), channelID, req.Messages)
	w.WriteHeader(http.StatusNoContent)
}

// HandlePutMessage adds one message to a channel's cache, or updates it if edited
func HandlePutMessage(store *messagestore.Store, w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channelID"]

	var msg models.HostMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("Client sent malformed message")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := settings.Validator().Struct(msg); err != nil {
		log.Warn().Err(err).Str("channel_id", channelID).Msg("Message validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	store.Put(r.Context(), channelID, msg)
	w.WriteHeader(http.StatusNoContent)
}
