package completion

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/deepgram/aireply/internal/domain/chat/models"
	"github.com/sashabaranov/go-openai"
)

// Per-1000-token prices used for the cost estimate. Every supported model is
// a free tier, so the figure is informational only.
const (
	promptPricePer1K     = 0.0001
	completionPricePer1K = 0.0002
)

// EstimateTokens approximates the token count of messages as one token per
// four characters, rounded up. It is not the model's tokenizer; the usage
// reported by the API is authoritative.
func EstimateTokens(messages []models.ChatMessage) int {
	chars := 0
	for _, m := range messages {
		chars += utf8.RuneCountInString(m.Content)
	}
	return (chars + 3) / 4
}

// Cost is a dollar estimate for one completion
type Cost struct {
	Prompt     float64
	Completion float64
	Total      float64
}

// EstimateCost applies the fixed per-token prices to reported usage
func EstimateCost(usage openai.Usage) Cost {
	prompt := float64(usage.PromptTokens) / 1000 * promptPricePer1K
	completion := float64(usage.CompletionTokens) / 1000 * completionPricePer1K
	return Cost{
		Prompt:     prompt,
		Completion: completion,
		Total:      prompt + completion,
	}
}

// DebugInfo feeds FormatDebug
type DebugInfo struct {
	Model string
	Usage openai.Usage
	// EstimatedTokens is rendered only when ShowEstimate is set
	EstimatedTokens int
	ShowEstimate    bool
}

// FormatDebug renders a short summary of a completion's usage and cost
func FormatDebug(info DebugInfo) string {
	cost := EstimateCost(info.Usage)

	var b strings.Builder
	b.WriteString("-# Debug\n")
	fmt.Fprintf(&b, "Model: %s\n", info.Model)
	fmt.Fprintf(&b, "Prompt tokens: %d\n", info.Usage.PromptTokens)
	fmt.Fprintf(&b, "Completion tokens: %d\n", info.Usage.CompletionTokens)
	fmt.Fprintf(&b, "Total tokens: %d\n", info.Usage.TotalTokens)
	if info.ShowEstimate {
		fmt.Fprintf(&b, "Estimated context tokens: ~%d\n", info.EstimatedTokens)
	}
	fmt.Fprintf(&b, "Cost: $%.6f (Free)", cost.Total)
	return b.String()
}
