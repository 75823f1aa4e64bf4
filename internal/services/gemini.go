package services

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"alfredoptarigan/skillbridge/internal/logger"
)

// GeminiService is the generative backend. Both call shapes return the raw
// response text.
type GeminiService interface {
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)
	GenerateFromDocument(ctx context.Context, instruction string, data []byte, mimeType string) (string, error)
}

type GeminiOptions struct {
	APIKey      string
	Model       string
	VisionModel string
	Temperature float32
	MaxTokens   int32
}

type geminiService struct {
	opts GeminiOptions

	newClient func(context.Context, *genai.ClientConfig) (*genai.Client, error)

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiService never dials the backend. The client is created on first
// use, so a missing API key surfaces as ErrMissingCredential at call time.
func NewGeminiService(opts GeminiOptions) GeminiService {
	if opts.Model == "" {
		opts.Model = "gemini-2.5-flash"
	}
	if opts.VisionModel == "" {
		opts.VisionModel = opts.Model
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.2
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 8192
	}
	return &geminiService{opts: opts, newClient: genai.NewClient}
}

func (g *geminiService) getClient(ctx context.Context) (*genai.Client, error) {
	if g.opts.APIKey == "" {
		return nil, ErrMissingCredential
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	// Only a working client is kept; a failed creation is retried on the next call.
	if g.client != nil {
		return g.client, nil
	}

	client, err := g.newClient(ctx, &genai.ClientConfig{
		APIKey:  g.opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	g.client = client
	return client, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	temperature := g.opts.Temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   g.opts.MaxTokens,
		ResponseMIMEType:  "application/json",
	}

	resp, err := client.Models.GenerateContent(ctx, g.opts.Model, genai.Text(prompt), config)
	if err != nil {
		logger.Warn(ctx, "❌ Gemini API error", "model", g.opts.Model, "error", err)
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	logger.Debug(ctx, "📊 Gemini response received", "model", g.opts.Model, "chars", len(text))
	return text, nil
}

// GenerateFromDocument implements GeminiService. The document travels inline
// next to the instruction.
func (g *geminiService) GenerateFromDocument(ctx context.Context, instruction string, data []byte, mimeType string) (string, error) {
	client, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(instruction),
			genai.NewPartFromBytes(data, mimeType),
		}, genai.RoleUser),
	}

	resp, err := client.Models.GenerateContent(ctx, g.opts.VisionModel, contents, nil)
	if err != nil {
		logger.Warn(ctx, "❌ Gemini vision error", "model", g.opts.VisionModel, "error", err)
		return "", fmt.Errorf("failed to extract document text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	return resp.Text(), nil
}
