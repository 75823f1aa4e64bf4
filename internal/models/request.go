package models

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("failed to register notblank validation: %v", err))
	}
	return v
}

// AnalysisRequest is created per incoming call and discarded once the
// pipeline returns.
type AnalysisRequest struct {
	Document       Document
	JobDescription string `validate:"required,notblank"`
}

// Validate checks that a document and a non-blank job description were
// supplied. A zero-byte document passes and is reported as empty later.
func (r AnalysisRequest) Validate() error {
	return validate.Struct(r)
}

type ResponseEnvelope struct {
	Success    bool           `json:"success"`
	Analysis   AnalysisResult `json:"analysis"`
	ResumeText string         `json:"resumeText"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type RunResponse struct {
	ID         string  `json:"id"`
	RequestID  string  `json:"request_id"`
	MimeType   string  `json:"mime_type"`
	SizeBytes  int     `json:"size_bytes"`
	TextSource string  `json:"text_source,omitempty"`
	TextLength int     `json:"text_length"`
	State      string  `json:"state"`
	Attempts   int     `json:"attempts"`
	ErrorKind  *string `json:"error_kind,omitempty"`
	DurationMS int64   `json:"duration_ms"`
	CreatedAt  string  `json:"created_at"`
}
