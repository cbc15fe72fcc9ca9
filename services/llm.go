package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"truthlens/config"
)

// ModelClient answers a single-turn text prompt.
type ModelClient interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// VisionClient answers a prompt about one image.
type VisionClient interface {
	AskImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// Transcriber turns speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, fileName string, audio []byte) (string, error)
}

// NoModel is used when no model API key is configured.
type NoModel struct{}

func (NoModel) Ask(context.Context, string) (string, error) { return "", ErrModelUnavailable }
func (NoModel) AskImage(context.Context, string, []byte, string) (string, error) {
	return "", ErrModelUnavailable
}
func (NoModel) Transcribe(context.Context, string, []byte) (string, error) {
	return "", ErrModelUnavailable
}

const (
	modelMaxTokens = 2048
	modelTimeout   = 60 * time.Second
)

// OpenAIClient talks to any OpenAI-compatible endpoint (Groq by default).
// When the primary model fails and a different backup model is configured,
// the request is tried once more on the backup.
type OpenAIClient struct {
	client          *openai.Client
	model           string
	backup          string
	visionModel     string
	transcribeModel string
	temperature     float32
	quotas          *QuotaTracker
}

func NewOpenAIClient(cfg *config.Config, quotas *QuotaTracker) *OpenAIClient {
	oc := openai.DefaultConfig(cfg.ModelAPIKey)
	if cfg.ModelBaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.ModelBaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: modelTimeout}

	return &OpenAIClient{
		client:          openai.NewClientWithConfig(oc),
		model:           cfg.Model,
		backup:          cfg.ModelBackup,
		visionModel:     cfg.VisionModel,
		transcribeModel: cfg.TranscribeModel,
		temperature:     cfg.ModelTemperature,
		quotas:          quotas,
	}
}

func (c *OpenAIClient) Ask(ctx context.Context, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	}

	answer, err := c.complete(ctx, c.model, messages)
	if err == nil {
		return answer, nil
	}
	log.Printf("[LLM] ⚠ Primary model %s failed: %v", c.model, err)

	if c.backup == "" || c.backup == c.model {
		return "", err
	}
	log.Printf("[LLM] 🔄 Switching to backup model %s", c.backup)
	answer, err = c.complete(ctx, c.backup, messages)
	if err != nil {
		log.Printf("[LLM] ❌ Backup model failed too: %v", err)
		return "", fmt.Errorf("both models failed: %w", err)
	}
	return answer, nil
}

func (c *OpenAIClient) AskImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	messages := []openai.ChatCompletionMessage{{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: prompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL,
				Detail: openai.ImageURLDetailAuto,
			}},
		},
	}}
	return c.complete(ctx, c.visionModel, messages)
}

func (c *OpenAIClient) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   modelMaxTokens,
	})
	if err != nil {
		c.recordFailure(model, err)
		return "", fmt.Errorf("chat completion %s: %w", model, err)
	}
	c.quotas.Record(model, resp.Header(), http.StatusOK)

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion %s: empty response", model)
	}
	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	log.Printf("[LLM] ✓ %s answered in %.2fs (%d chars, %d tokens)", model, time.Since(start).Seconds(), len(answer), resp.Usage.TotalTokens)
	return answer, nil
}

func (c *OpenAIClient) Transcribe(ctx context.Context, fileName string, audio []byte) (string, error) {
	start := time.Now()
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.transcribeModel,
		FilePath: fileName,
		Reader:   bytes.NewReader(audio),
	})
	if err != nil {
		c.recordFailure(c.transcribeModel, err)
		return "", fmt.Errorf("transcription: %w", err)
	}
	c.quotas.Record(c.transcribeModel, resp.Header(), http.StatusOK)
	log.Printf("[LLM] ✓ Transcribed %s in %.2fs (%d chars)", fileName, time.Since(start).Seconds(), len(resp.Text))
	return strings.TrimSpace(resp.Text), nil
}

func (c *OpenAIClient) recordFailure(model string, err error) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		c.quotas.Record(model, http.Header{}, apiErr.HTTPStatusCode)
		return
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		c.quotas.Record(model, http.Header{}, reqErr.HTTPStatusCode)
	}
}
