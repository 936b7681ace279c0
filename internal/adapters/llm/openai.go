// Package llm provides the OpenAI-compatible chat completions adapter.
// It implements ports.LLMService against any /v1/chat/completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// placeholderKeys are template values that must be treated as "no key".
var placeholderKeys = map[string]struct{}{
	"your_openai_api_key_here": {},
	"your_openai_key_here":     {},
	"replace_me":               {},
}

// Config configures the OpenAI-compatible client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// OpenAIAdapter implements ports.LLMService using a chat completions API.
type OpenAIAdapter struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
}

// NewOpenAIAdapter creates the adapter. It fails when the key env var is
// unset or still holds a placeholder value, so misconfiguration surfaces at
// startup rather than on the first request.
func NewOpenAIAdapter(cfg Config) (*OpenAIAdapter, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if _, ok := placeholderKeys[key]; ok {
		return nil, fmt.Errorf("env %s still holds a placeholder API key", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIAdapter{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: timeout},
		maxRetries: 3,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate produces a completion for the prompt. The supporting context is
// already folded into the prompt by the caller; it is accepted for interface
// parity and ignored here.
func (a *OpenAIAdapter) Generate(ctx context.Context, prompt string, _ []string) (string, error) {
	body := chatRequest{
		Model: a.model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL+"/chat/completions", bytes.NewReader(data))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+a.apiKey)

		resp, err := a.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("calling completions API: %w", err)
			if attempt < a.maxRetries {
				if err := sleepCtx(ctx, retryDelay(attempt, nil)); err != nil {
					return "", err
				}
				continue
			}
			return "", lastErr
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			delay := retryDelay(attempt, resp)
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("completions API returned status %d", resp.StatusCode)
			if attempt < a.maxRetries {
				if err := sleepCtx(ctx, delay); err != nil {
					return "", err
				}
				continue
			}
			return "", lastErr
		}

		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			return "", fmt.Errorf("completions API returned status %d", resp.StatusCode)
		}

		var parsed chatResponse
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("decoding response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return "", fmt.Errorf("completions API returned no choices")
		}
		return parsed.Choices[0].Message.Content, nil
	}
	return "", lastErr
}

// retryDelay honors Retry-After when present, otherwise backs off
// exponentially from 500ms.
func retryDelay(attempt int, resp *http.Response) time.Duration {
	if resp != nil {
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return time.Duration(500*(1<<uint(attempt))) * time.Millisecond
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
