package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

// maxResponseSize caps how much of a response body is read
const maxResponseSize = 10 * 1024 * 1024

// Client issues chat completion requests against a single endpoint.
// Each call is one attempt: no retries and no client-side timeout beyond ctx.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a client for url. A nil httpClient uses a plain http.Client.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
	}
}

// Complete sends req with bearer authentication and decodes the response
func (c *Client) Complete(ctx context.Context, apiKey string, req CompletionRequest) (*openai.ChatCompletionResponse, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(req.Messages) == 0 {
		return nil, ErrEmptyContext
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("X-Title", "aireply")

	log.Debug().
		Str("model", req.Model).
		Int("message_count", len(req.Messages)).
		Msg("Sending completion request")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send completion request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var completion openai.ChatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, &MalformedResponseError{Body: string(body), Err: err}
	}

	log.Debug().
		Str("id", completion.ID).
		Str("model", completion.Model).
		Int("choices", len(completion.Choices)).
		Int("total_tokens", completion.Usage.TotalTokens).
		Msg("Received completion response")
	return &completion, nil
}
