package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/deepgram/aireply/internal/config"
	"github.com/deepgram/aireply/internal/domain/chat/models"
	"github.com/deepgram/aireply/internal/logger"
	"github.com/deepgram/aireply/internal/services"
	"github.com/deepgram/aireply/internal/services/assistant"
	"github.com/deepgram/aireply/internal/services/presentation"
	"github.com/deepgram/aireply/internal/services/settings"
	"github.com/spf13/cobra"
)

const askChannelID = "cli"

type askOptions struct {
	messagesPath string
	envFile      string
	isGuild      bool
	anchor       string
}

// newAskCommand runs a single invocation against a message dump, printing
// what the chat UI would show to stdout
func newAskCommand() *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Draft one reply for a JSON file of chat messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			config.LoadDotEnv(opts.envFile)
			logger.SetupWithWriter(cmd.ErrOrStderr())

			messages, err := readMessages(opts.messagesPath)
			if err != nil {
				return err
			}

			svcOpts := services.OptionsFromEnv()
			svcOpts.Presenter = presentation.NewWriterPresenter(cmd.OutOrStdout())

			outcome, err := runAsk(cmd, svcOpts, messages, opts)
			if err != nil {
				return err
			}
			if outcome.Status != assistant.StatusDelivered {
				return fmt.Errorf("reply %s", outcome.Status)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.messagesPath, "messages", "m", "", "JSON array of host messages, oldest first (- for stdin)")
	cmd.Flags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.Flags().BoolVar(&opts.isGuild, "guild", false, "treat the conversation as a server channel instead of a DM")
	cmd.Flags().StringVar(&opts.anchor, "anchor", "", "message id to end the context window at")
	_ = cmd.MarkFlagRequired("messages")
	return cmd
}

func runAsk(cmd *cobra.Command, svcOpts services.Options, messages []models.HostMessage, opts askOptions) (assistant.Outcome, error) {
	ctx := cmd.Context()

	svcs, err := services.InitializeServices(ctx, svcOpts)
	if err != nil {
		return assistant.Outcome{}, err
	}
	defer svcs.Close()

	for i := range messages {
		if err := settings.Validator().Struct(messages[i]); err != nil {
			return assistant.Outcome{}, fmt.Errorf("message %d: %w", i, err)
		}
	}
	svcs.GetMessageStore().Replace(ctx, askChannelID, messages)

	return svcs.GetAssistant().Reply(ctx, assistant.Invocation{
		ChannelID:       askChannelID,
		IsGuild:         opts.isGuild,
		AnchorMessageID: opts.anchor,
	}), nil
}

func readMessages(path string) ([]models.HostMessage, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open messages: %w", err)
		}
		defer f.Close()
		r = f
	}

	var messages []models.HostMessage
	if err := json.NewDecoder(r).Decode(&messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}
