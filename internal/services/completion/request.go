package completion

import (
	"github.com/deepgram/aireply/internal/domain/chat/models"
	"github.com/sashabaranov/go-openai"
)

// Sampling parameters sent with every request
const (
	Temperature float32 = 0.7
	MaxTokens           = 1024
)

// CompletionRequest is the body of a chat completions call. Unlike
// openai.ChatCompletionRequest, stream is always written out.
type CompletionRequest struct {
	Model       string                         `json:"model"`
	Messages    []openai.ChatCompletionMessage `json:"messages"`
	Temperature float32                        `json:"temperature"`
	MaxTokens   int                            `json:"max_tokens"`
	Stream      bool                           `json:"stream"`
}

// WithInstruction returns messages with a system message holding instruction
// in front. An empty instruction returns messages unchanged.
func WithInstruction(messages []models.ChatMessage, instruction string) []models.ChatMessage {
	if instruction == "" {
		return messages
	}

	out := make([]models.ChatMessage, 0, len(messages)+1)
	out = append(out, models.ChatMessage{
		Content: instruction,
		Role:    models.RoleSystem,
	})
	return append(out, messages...)
}

// BuildRequest assembles the request body for model from the conversation
// context and the optional system instruction
func BuildRequest(model string, messages []models.ChatMessage, instruction string) (CompletionRequest, error) {
	if len(messages) == 0 {
		return CompletionRequest{}, ErrEmptyContext
	}

	all := WithInstruction(messages, instruction)
	wire := make([]openai.ChatCompletionMessage, len(all))
	for i, m := range all {
		wire[i] = m.ToOpenAI()
	}

	return CompletionRequest{
		Model:       model,
		Messages:    wire,
		Temperature: Temperature,
		MaxTokens:   MaxTokens,
		Stream:      false,
	}, nil
}
