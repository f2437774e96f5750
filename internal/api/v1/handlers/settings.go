package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/deepgram/aireply/internal/services/settings"
	"github.com/deepgram/aireply/pkg/httpext"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// HandleGetSettings returns the current settings with the API key masked
func HandleGetSettings(settingsService *settings.Service, w http.ResponseWriter, r *http.Request) {
	httpext.JsonResponse(w, http.StatusOK, settingsService.Get().Public())
}

// HandleUpdateSettings applies a partial settings change from the settings panel
func HandleUpdateSettings(settingsService *settings.Service, w http.ResponseWriter, r *http.Request) {
	var update settings.Update

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&update); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed settings update")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	updated, err := settingsService.Apply(r.Context(), update)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			log.Warn().Err(err).Msg("Settings update validation failed")
			httpext.JsonErrorWithDetails(w, http.StatusBadRequest, httpext.ErrorResponse{
				Error:            "Invalid settings",
				ErrorDescription: validationErrs.Error(),
			})
			return
		}
		httpext.JsonError(w, "Failed to save settings", http.StatusInternalServerError)
		return
	}

	httpext.JsonResponse(w, http.StatusOK, updated.Public())
}
