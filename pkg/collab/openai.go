package collab

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIConfig holds the settings for the OpenAI-backed generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string  // default: gpt-4o-mini
	Temperature float32 // default: 0
	MaxRetries  int     // default: 3
	BaseURL     string  // optional override for compatible endpoints
}

// OpenAIConfigFromEnv reads configuration from OPENAI_* environment
// variables.
func OpenAIConfigFromEnv() (OpenAIConfig, error) {
	cfg := OpenAIConfig{
		APIKey:      os.Getenv("OPENAI_API_KEY"),
		Model:       envOrDefault("OPENAI_MODEL", openai.GPT4oMini),
		Temperature: envFloatOrDefault("OPENAI_TEMPERATURE", 0),
		MaxRetries:  envIntOrDefault("OPENAI_MAX_RETRIES", 3),
		BaseURL:     os.Getenv("OPENAI_BASE_URL"),
	}
	if cfg.APIKey == "" {
		return cfg, errors.New("OPENAI_API_KEY is not set")
	}
	return cfg, nil
}

// OpenAI is a Generator backed by the OpenAI chat completion API.
type OpenAI struct {
	client *openai.Client
	cfg    OpenAIConfig
}

// NewOpenAI creates a generator from an explicit config.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(clientCfg), cfg: cfg}, nil
}

// NewOpenAIFromEnv creates a generator configured from the environment.
func NewOpenAIFromEnv() (*OpenAI, error) {
	cfg, err := OpenAIConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return NewOpenAI(cfg)
}

// Complete submits the prompt as a single user message and returns the
// assistant's text. Transient failures are retried with linear backoff up to
// MaxRetries times.
func (o *OpenAI) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.cfg.Model,
		Temperature: o.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= o.cfg.MaxRetries; attempt++ {
		resp, err := o.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", &Error{Collaborator: "openai", Err: errors.New("empty choice list in response")}
			}
			return resp.Choices[0].Message.Content, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", &Error{Collaborator: "openai", Err: ctx.Err()}
		}
		if attempt < o.cfg.MaxRetries {
			select {
			case <-time.After(time.Duration(attempt+1) * time.Second):
			case <-ctx.Done():
				return "", &Error{Collaborator: "openai", Err: ctx.Err()}
			}
		}
	}
	return "", &Error{Collaborator: "openai", Err: fmt.Errorf("request failed after %d attempts: %w", o.cfg.MaxRetries+1, lastErr)}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOrDefault(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
