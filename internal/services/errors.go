package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind string

const (
	KindMissingInput        ErrorKind = "missing_input"
	KindInvalidDocument     ErrorKind = "invalid_document"
	KindUnreadableDocument  ErrorKind = "unreadable_document"
	KindEmptyDocument       ErrorKind = "empty_document"
	KindMalformedResponse   ErrorKind = "malformed_response"
	KindAuthFailure         ErrorKind = "auth_failure"
	KindAnalysisUnavailable ErrorKind = "analysis_unavailable"
	KindConfiguration       ErrorKind = "configuration_error"
	KindInternal            ErrorKind = "internal"
)

// ErrMissingCredential is returned by the backend when no API key was configured.
var ErrMissingCredential = errors.New("gemini api key is not configured")

// AnalysisError is the error surfaced by the pipeline. Message is safe to show
// to the caller; Cause is for operators only.
type AnalysisError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

func newAnalysisError(kind ErrorKind, message string, cause error) *AnalysisError {
	return &AnalysisError{Kind: kind, Message: message, Cause: cause}
}

// NewDocumentTooLargeError rejects an upload above the size limit.
func NewDocumentTooLargeError(size, limit int64) error {
	return newAnalysisError(
		KindInvalidDocument,
		fmt.Sprintf("Resume file too large. Max size: %d bytes", limit),
		fmt.Errorf("document is %d bytes", size),
	)
}

// KindOf returns the kind of an AnalysisError anywhere in err's chain, or
// KindInternal for anything else.
func KindOf(err error) ErrorKind {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// HTTPStatus returns the status code the caller should see for err.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindMissingInput, KindInvalidDocument, KindUnreadableDocument, KindEmptyDocument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the caller-facing message for err.
func PublicMessage(err error) string {
	var ae *AnalysisError
	if errors.As(err, &ae) && ae.Kind != KindInternal {
		return ae.Message
	}
	return msgInternal
}

// ExtractionError means the structural parser could not open the document.
type ExtractionError struct {
	Format string
	Reason string
	Cause  error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cannot extract text from %s document: %s: %v", e.Format, e.Reason, e.Cause)
	}
	return fmt.Sprintf("cannot extract text from %s document: %s", e.Format, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError means the backend answered but the answer does not
// satisfy the analysis contract.
type MalformedResponseError struct {
	Reason string
	Fields []string
	Cause  error
}

func (e *MalformedResponseError) Error() string {
	var sb strings.Builder
	sb.WriteString("malformed analysis response: ")
	sb.WriteString(e.Reason)
	if len(e.Fields) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(e.Fields, "; "))
		sb.WriteString("]")
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

const (
	msgMissingInput       = "Both resume file and job description are required."
	msgInvalidDocument    = "Could not read the document. It may be corrupted or password-protected. Try a different file or copy-paste your resume text."
	msgUnreadableDocument = "Could not extract text from the document. Please try a different file or copy-paste your resume text."
	msgEmptyDocument      = "The document appears to be empty. Please upload a valid resume."
	msgConfiguration      = "API key not configured. Please add GEMINI_API_KEY to the environment."
	msgInternal           = "An error occurred during analysis. Please try again."

	msgAnalysisFailedPrefix = "AI analysis failed: "
)
