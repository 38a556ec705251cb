package utils

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiTranslator translates catalog text with a Gemini model
type GeminiTranslator struct {
	Target  string
	Retries int
	Delay   time.Duration

	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiTranslator(ctx context.Context, apiKey, modelName, target string) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiTranslator{
		Target:  target,
		Retries: 2,
		Delay:   time.Second,
		client:  client,
		model:   model,
	}, nil
}

func (t *GeminiTranslator) Close() error {
	return t.client.Close()
}

// Translate asks the model for a plain translation. Empty input is returned as is.
func (t *GeminiTranslator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	prompt := fmt.Sprintf(`Translate the following product text to the language with code %q.
Reply with the translation only, without quotes or comments.

%s`, t.Target, text)

	var lastErr error
	for attempt := 0; attempt <= t.Retries; attempt++ {
		if attempt > 0 {
			log.Printf("[Translate] Retrying in %v: %v", t.Delay, lastErr)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(t.Delay):
			}
		}

		out, err := t.generate(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (t *GeminiTranslator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := t.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format (empty content)")
	}
	return strings.TrimSpace(sb.String()), nil
}

// PassthroughTranslator returns text unchanged
type PassthroughTranslator struct{}

func (PassthroughTranslator) Translate(ctx context.Context, text string) (string, error) {
	return text, nil
}
