package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"cvchat-backend/logger"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// completionTimeout bounds every completion call. On expiry the call is
// aborted and treated as a dependency failure; there is no retry.
const completionTimeout = 25 * time.Second

const defaultModelName = "gemini-2.0-flash"

// CompletionClient sends a single-turn completion request and returns the
// textual response.
type CompletionClient interface {
	Complete(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// GeminiClient implements CompletionClient against the Gemini API with
// temperature pinned to 0 for maximal determinism.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini-backed completion client
func NewGeminiClient(client *genai.Client, modelName string, log *zap.Logger) *GeminiClient {
	if modelName == "" {
		modelName = defaultModelName
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
		timeout:   completionTimeout,
		logger:    log,
	}
}

// Complete sends one completion request and returns the concatenated text of
// the first candidate.
func (c *GeminiClient) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if c.client == nil {
		return "", errors.New("gemini client not set")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(0)
	if systemInstruction != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemInstruction)},
		}
	}

	c.logger.Debug("completion request",
		zap.String("model", c.modelName),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.Truncate(prompt, 200)),
	)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("completion returned empty response")
	}

	c.logger.Debug("completion response",
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", logger.Truncate(output, 200)),
	)

	return output, nil
}
