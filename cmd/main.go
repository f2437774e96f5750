package main

import (
	"net/http"
	"os"

	"github.com/deepgram/aireply/internal/api/v1/handlers"
	"github.com/deepgram/aireply/internal/api/v1/middleware"
	"github.com/deepgram/aireply/internal/services"
	"github.com/deepgram/aireply/pkg/httpext"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "aireply",
		Short:         "Draft AI replies from recent chat history",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand(), newAskCommand())
	return root
}

func setupRouter(svcs *services.Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpext.JsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	handlers.RegisterWebSocketRoute(r, svcs)
	handlers.RegisterV1Routes(r, svcs)
	return r
}
