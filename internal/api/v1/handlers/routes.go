package handlers

import (
	"net/http"

	"github.com/deepgram/aireply/internal/services"
	"github.com/gorilla/mux"
)

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	v1 := router.PathPrefix("/v1").Subrouter()

	// Settings panel
	v1.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) {
		HandleGetSettings(services.GetSettingsService(), w, r)
	}).Methods("GET")
	v1.HandleFunc("/settings", func(w http.ResponseWriter, r *http.Request) {
		HandleUpdateSettings(services.GetSettingsService(), w, r)
	}).Methods("PUT", "PATCH")

	// Host message cache
	channels := v1.PathPrefix("/channels/{channelID}").Subrouter()
	channels.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		HandleReplaceMessages(services.GetMessageStore(), w, r)
	}).Methods("PUT")
	channels.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		HandlePutMessage(services.GetMessageStore(), w, r)
	}).Methods("POST")

	// Reply command and per-message action
	channels.HandleFunc("/reply", func(w http.ResponseWriter, r *http.Request) {
		HandleReply(services.GetAssistant(), w, r)
	}).Methods("POST")
	channels.HandleFunc("/messages/{messageID}/reply", func(w http.ResponseWriter, r *http.Request) {
		HandleReply(services.GetAssistant(), w, r)
	}).Methods("POST")
}

// RegisterWebSocketRoute exposes the presentation event stream
func RegisterWebSocketRoute(router *mux.Router, services *services.Services) {
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		HandleWebSocket(services.GetConnectionManager(), w, r)
	})
}
