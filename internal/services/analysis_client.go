package services

import (
	"context"

	"alfredoptarigan/skillbridge/internal/models"
)

// AnalysisClient performs a single analysis attempt.
type AnalysisClient interface {
	Analyze(ctx context.Context, prompt models.Prompt) (*models.AnalysisResult, error)
}

type analysisClient struct {
	gemini GeminiService
}

func NewAnalysisClient(gemini GeminiService) AnalysisClient {
	return &analysisClient{gemini: gemini}
}

// Analyze returns backend errors unchanged so they can be classified, and
// *MalformedResponseError when the answer breaks the contract.
func (a *analysisClient) Analyze(ctx context.Context, prompt models.Prompt) (*models.AnalysisResult, error) {
	raw, err := a.gemini.GenerateText(ctx, prompt.SystemInstruction, prompt.UserContent)
	if err != nil {
		return nil, err
	}

	return ParseAnalysisResponse(raw)
}
