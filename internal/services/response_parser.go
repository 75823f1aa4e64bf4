package services

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"alfredoptarigan/skillbridge/internal/models"
)

//go:embed schemas/analysis_result.json
var schemaFS embed.FS

var (
	analysisSchemaOnce sync.Once
	analysisSchema     *gojsonschema.Schema
	analysisSchemaErr  error
)

func loadAnalysisSchema() (*gojsonschema.Schema, error) {
	analysisSchemaOnce.Do(func() {
		raw, err := schemaFS.ReadFile("schemas/analysis_result.json")
		if err != nil {
			analysisSchemaErr = fmt.Errorf("failed to read analysis schema: %w", err)
			return
		}
		analysisSchema, analysisSchemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if analysisSchemaErr != nil {
			analysisSchemaErr = fmt.Errorf("failed to compile analysis schema: %w", analysisSchemaErr)
		}
	})
	return analysisSchema, analysisSchemaErr
}

// StripCodeFences removes a wrapping ``` or ```json fence from either end.
// Applying it twice gives the same result as applying it once.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
			text = text[4:]
		}
		text = strings.TrimSpace(text)
	}

	if strings.HasSuffix(text, "```") {
		text = strings.TrimSuffix(text, "```")
		text = strings.TrimSpace(text)
	}

	return text
}

// ParseAnalysisResponse turns raw backend text into an AnalysisResult. Any
// contract violation is reported as *MalformedResponseError.
func ParseAnalysisResponse(raw string) (*models.AnalysisResult, error) {
	body := StripCodeFences(raw)
	if body == "" {
		return nil, &MalformedResponseError{Reason: "empty response"}
	}

	if !json.Valid([]byte(body)) {
		return nil, &MalformedResponseError{Reason: "response is not valid JSON"}
	}

	schema, err := loadAnalysisSchema()
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(body))
	if err != nil {
		return nil, &MalformedResponseError{Reason: "response could not be validated", Cause: err}
	}

	if !result.Valid() {
		fields := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			fields = append(fields, fmt.Sprintf("%s: %s", field, desc.Description()))
		}
		return nil, &MalformedResponseError{Reason: "response does not match the analysis contract", Fields: fields}
	}

	var analysis models.AnalysisResult
	if err := json.Unmarshal([]byte(body), &analysis); err != nil {
		return nil, &MalformedResponseError{Reason: "response could not be decoded", Cause: err}
	}

	if analysis.MatchedSkills == nil {
		analysis.MatchedSkills = []models.MatchedSkill{}
	}
	if analysis.MissingSkills == nil {
		analysis.MissingSkills = []models.MissingSkill{}
	}

	return &analysis, nil
}
