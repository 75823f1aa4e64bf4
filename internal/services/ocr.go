package services

import (
	"context"
	"fmt"
	"strings"

	"alfredoptarigan/skillbridge/internal/models"
)

// OpticalExtractor reads text from a document by looking at it.
type OpticalExtractor interface {
	Supports(mimeType string) bool
	Extract(ctx context.Context, doc models.Document) (models.ExtractedText, error)
}

type opticalExtractor struct {
	gemini  GeminiService
	prompts *PromptBuilder
}

func NewOpticalExtractor(gemini GeminiService, prompts *PromptBuilder) OpticalExtractor {
	return &opticalExtractor{gemini: gemini, prompts: prompts}
}

// Supports reports whether the vision backend accepts this MIME type.
func (o *opticalExtractor) Supports(mimeType string) bool {
	switch mimeType {
	case MimePDF, MimePNG, MimeJPEG, MimeWEBP:
		return true
	default:
		return false
	}
}

// Extract returns the backend's text unchanged. Blank output is an error.
func (o *opticalExtractor) Extract(ctx context.Context, doc models.Document) (models.ExtractedText, error) {
	mimeType := ResolveMimeType(doc)
	if !o.Supports(mimeType) {
		return models.ExtractedText{}, fmt.Errorf("optical extraction does not support %s", mimeType)
	}

	text, err := o.gemini.GenerateFromDocument(ctx, o.prompts.BuildOCRInstruction(), doc.Data, mimeType)
	if err != nil {
		return models.ExtractedText{}, err
	}

	if strings.TrimSpace(text) == "" {
		return models.ExtractedText{}, fmt.Errorf("optical extraction returned no text")
	}

	return models.ExtractedText{Content: text, Source: models.TextSourceOptical}, nil
}
