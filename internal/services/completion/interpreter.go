package completion

import (
	"github.com/sashabaranov/go-openai"
)

// Result is the part of a completion response the presentation layer needs
type Result struct {
	ID           string
	Model        string
	Text         string
	FinishReason string
	Usage        openai.Usage
}

// Interpret extracts the first choice's text from resp
func Interpret(resp *openai.ChatCompletionResponse) (Result, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return Result{}, ErrEmptyChoices
	}

	first := resp.Choices[0]
	return Result{
		ID:           resp.ID,
		Model:        resp.Model,
		Text:         first.Message.Content,
		FinishReason: string(first.FinishReason),
		Usage:        resp.Usage,
	}, nil
}
