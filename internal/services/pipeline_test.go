package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"alfredoptarigan/skillbridge/internal/logger"
	"alfredoptarigan/skillbridge/internal/models"
)

func newTestPipeline(gemini *fakeGemini, recorder RunRecorder, ocrEnabled bool) PipelineService {
	return NewPipelineService(
		NewTextExtractorService(),
		NewOpticalExtractor(gemini, NewPromptBuilder()),
		NewRetryController(NewAnalysisClient(gemini), DefaultMaxAttempts, time.Second),
		recorder,
		PipelineOptions{OCREnabled: ocrEnabled, OCRTimeout: time.Second},
	)
}

func textRequest(resume, job string) models.AnalysisRequest {
	return models.AnalysisRequest{
		Document: models.Document{
			Filename: "resume.txt",
			MimeType: MimeText,
			Data:     []byte(resume),
		},
		JobDescription: job,
	}
}

func TestPipeline_LiveAnalysis(t *testing.T) {
	gemini := &fakeGemini{textResponses: []fakeResponse{{text: validAnalysisJSON}}}
	recorder := &fakeRecorder{}
	ctx := logger.WithRequestID(context.Background(), "req-1")

	result, err := newTestPipeline(gemini, recorder, true).Analyze(ctx, textRequest("Jane Doe\nGo engineer", "Go backend role"))

	require.NoError(t, err)
	var backendPayload models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(validAnalysisJSON), &backendPayload))
	assert.Equal(t, backendPayload, result.Envelope.Analysis)
	assert.True(t, result.Envelope.Success)
	assert.Equal(t, ModeLive, result.Mode)
	assert.Equal(t, models.TextSourceStructural, result.TextSource)
	assert.Equal(t, "Jane Doe\nGo engineer", result.Envelope.ResumeText)
	assert.Equal(t, models.PriorityHigh, result.Envelope.Analysis.MissingSkills[0].Priority)
	assert.Equal(t, "Docker", result.Envelope.Analysis.MissingSkills[0].Skill)
	assert.Equal(t, "Resume:\nJane Doe\nGo engineer\n\nJob Description:\nGo backend role", gemini.lastPrompt)

	require.Len(t, recorder.runs, 1)
	run := recorder.runs[0]
	assert.Equal(t, result.RunID, run.ID)
	assert.Equal(t, "req-1", run.RequestID)
	assert.Equal(t, models.StateSucceeded, run.State)
	assert.Equal(t, 1, run.Attempts)
	assert.Nil(t, run.ErrorKind)
}

func TestPipeline_PreviewIsTruncated(t *testing.T) {
	gemini := &fakeGemini{textResponses: []fakeResponse{{text: validAnalysisJSON}}}
	resume := strings.Repeat("é", 2000)

	result, err := newTestPipeline(gemini, nil, true).Analyze(context.Background(), textRequest(resume, "Go backend role"))

	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", PreviewLength), result.Envelope.ResumeText)
	assert.Contains(t, gemini.lastPrompt, resume)
}

func TestPipeline_MissingInput(t *testing.T) {
	tests := []struct {
		name string
		req  models.AnalysisRequest
	}{
		{"no document", models.AnalysisRequest{JobDescription: "Go backend role"}},
		{"no job description", textRequest("Jane Doe", "")},
		{"blank job description", textRequest("Jane Doe", " \n\t ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gemini := &fakeGemini{}
			recorder := &fakeRecorder{}

			result, err := newTestPipeline(gemini, recorder, true).Analyze(context.Background(), tt.req)

			assert.Nil(t, result)
			assert.Equal(t, KindMissingInput, KindOf(err))
			assert.Equal(t, 400, HTTPStatus(err))
			assert.Equal(t, 0, gemini.textCalls)
			assert.Equal(t, 0, gemini.docCalls)
			require.Len(t, recorder.runs, 1)
			assert.Equal(t, models.StateFailed, recorder.runs[0].State)
			require.NotNil(t, recorder.runs[0].ErrorKind)
			assert.Equal(t, string(KindMissingInput), *recorder.runs[0].ErrorKind)
		})
	}
}

func TestPipeline_ZeroByteDocumentIsEmpty(t *testing.T) {
	gemini := &fakeGemini{}
	recorder := &fakeRecorder{}
	req := models.AnalysisRequest{
		Document:       models.Document{Filename: "resume.pdf", MimeType: MimePDF, Data: []byte{}},
		JobDescription: "Go backend role",
	}

	result, err := newTestPipeline(gemini, recorder, true).Analyze(context.Background(), req)

	assert.Nil(t, result)
	assert.Equal(t, KindEmptyDocument, KindOf(err))
	assert.Equal(t, 400, HTTPStatus(err))
	assert.Equal(t, 0, gemini.docCalls)
	assert.Equal(t, 0, gemini.textCalls)
	require.Len(t, recorder.runs, 1)
	require.NotNil(t, recorder.runs[0].ErrorKind)
	assert.Equal(t, string(KindEmptyDocument), *recorder.runs[0].ErrorKind)
}

func TestPipeline_PDFWithTextLayer(t *testing.T) {
	gemini := &fakeGemini{textResponses: []fakeResponse{{text: validAnalysisJSON}}}
	req := models.AnalysisRequest{
		Document:       models.Document{Filename: "resume.pdf", MimeType: MimePDF, Data: buildPDF(t, "Jane Doe", "Go Engineer")},
		JobDescription: "Go backend role",
	}

	result, err := newTestPipeline(gemini, nil, true).Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.TextSourceStructural, result.TextSource)
	assert.Equal(t, 0, gemini.docCalls)
	assert.Contains(t, result.Envelope.ResumeText, "Jane Doe")
}

func TestPipeline_ImageOnlyPDFUsesOCR(t *testing.T) {
	gemini := &fakeGemini{
		docResponse:   fakeResponse{text: "Jane Doe\nScanned Go Engineer"},
		textResponses: []fakeResponse{{text: validAnalysisJSON}},
	}
	req := models.AnalysisRequest{
		Document:       models.Document{Filename: "scan.pdf", MimeType: MimePDF, Data: buildPDF(t)},
		JobDescription: "Go backend role",
	}

	result, err := newTestPipeline(gemini, nil, true).Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 1, gemini.docCalls)
	assert.Equal(t, models.TextSourceOptical, result.TextSource)
	assert.Equal(t, "Jane Doe\nScanned Go Engineer", result.Envelope.ResumeText)
	assert.Contains(t, gemini.lastPrompt, "Scanned Go Engineer")
}

func TestPipeline_CorruptPDFUsesOCR(t *testing.T) {
	gemini := &fakeGemini{
		docResponse:   fakeResponse{text: "Recovered text"},
		textResponses: []fakeResponse{{text: validAnalysisJSON}},
	}
	req := models.AnalysisRequest{
		Document:       models.Document{Filename: "resume.pdf", MimeType: MimePDF, Data: []byte("%PDF-1.4\nbroken")},
		JobDescription: "Go backend role",
	}

	result, err := newTestPipeline(gemini, nil, true).Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, models.TextSourceOptical, result.TextSource)
}

func TestPipeline_OCRFailureIsUnreadable(t *testing.T) {
	for _, resp := range []fakeResponse{
		{err: genai.APIError{Code: 429, Message: "quota"}},
		{text: "   "},
	} {
		gemini := &fakeGemini{docResponse: resp}
		req := models.AnalysisRequest{
			Document:       models.Document{MimeType: MimePDF, Data: buildPDF(t)},
			JobDescription: "Go backend role",
		}

		result, err := newTestPipeline(gemini, nil, true).Analyze(context.Background(), req)

		assert.Nil(t, result)
		assert.Equal(t, KindUnreadableDocument, KindOf(err))
		assert.Equal(t, 400, HTTPStatus(err))
		assert.Equal(t, 0, gemini.textCalls)
	}
}

func TestPipeline_OCRWithoutCredentialIsConfigurationError(t *testing.T) {
	gemini := &fakeGemini{docResponse: fakeResponse{err: ErrMissingCredential}}
	req := models.AnalysisRequest{
		Document:       models.Document{MimeType: MimePNG, Data: []byte{0x89, 'P', 'N', 'G'}},
		JobDescription: "Go backend role",
	}

	_, err := newTestPipeline(gemini, nil, true).Analyze(context.Background(), req)

	assert.Equal(t, KindConfiguration, KindOf(err))
	assert.Equal(t, 500, HTTPStatus(err))
}

func TestPipeline_NoOpticalPath(t *testing.T) {
	t.Run("blank text is empty document", func(t *testing.T) {
		gemini := &fakeGemini{}

		_, err := newTestPipeline(gemini, nil, true).Analyze(context.Background(), textRequest(" \n\n ", "Go backend role"))

		assert.Equal(t, KindEmptyDocument, KindOf(err))
		assert.Equal(t, 0, gemini.docCalls)
	})

	t.Run("blank pdf with ocr disabled is empty document", func(t *testing.T) {
		gemini := &fakeGemini{}
		req := models.AnalysisRequest{
			Document:       models.Document{MimeType: MimePDF, Data: buildPDF(t)},
			JobDescription: "Go backend role",
		}

		_, err := newTestPipeline(gemini, nil, false).Analyze(context.Background(), req)

		assert.Equal(t, KindEmptyDocument, KindOf(err))
		assert.Equal(t, 0, gemini.docCalls)
	})

	t.Run("corrupt docx is invalid document", func(t *testing.T) {
		gemini := &fakeGemini{}
		req := models.AnalysisRequest{
			Document:       models.Document{Filename: "resume.docx", MimeType: MimeDOCX, Data: []byte("not a zip")},
			JobDescription: "Go backend role",
		}

		_, err := newTestPipeline(gemini, nil, true).Analyze(context.Background(), req)

		assert.Equal(t, KindInvalidDocument, KindOf(err))
		assert.Equal(t, 400, HTTPStatus(err))
		assert.Equal(t, 0, gemini.docCalls)
		assert.Equal(t, 0, gemini.textCalls)
	})
}

func TestPipeline_DegradedAnalysis(t *testing.T) {
	gemini := &fakeGemini{textResponses: []fakeResponse{{err: genai.APIError{Code: 403, Message: "forbidden"}}}}
	recorder := &fakeRecorder{}

	result, err := newTestPipeline(gemini, recorder, true).Analyze(context.Background(), textRequest("Jane Doe", "Go backend role"))

	require.NoError(t, err)
	assert.Equal(t, ModeDegraded, result.Mode)
	assert.Equal(t, DegradedAnalysis(), result.Envelope.Analysis)
	assert.Equal(t, "Jane Doe", result.Envelope.ResumeText)
	assert.Equal(t, models.StateDegraded, recorder.runs[0].State)
}

func TestPipeline_AnalysisUnavailable(t *testing.T) {
	gemini := &fakeGemini{textResponses: []fakeResponse{{text: "{not json"}}}
	recorder := &fakeRecorder{}

	result, err := newTestPipeline(gemini, recorder, true).Analyze(context.Background(), textRequest("Jane Doe", "Go backend role"))

	assert.Nil(t, result)
	assert.Equal(t, KindAnalysisUnavailable, KindOf(err))
	assert.Equal(t, 500, HTTPStatus(err))
	assert.Equal(t, 2, gemini.textCalls)
	assert.Equal(t, models.StateFailed, recorder.runs[0].State)
	assert.Equal(t, 2, recorder.runs[0].Attempts)
}

type panickingExtractor struct{}

func (panickingExtractor) ExtractText(models.Document) (string, error) {
	panic("unexpected parser state")
}

func TestPipeline_PanicBecomesInternalError(t *testing.T) {
	gemini := &fakeGemini{}
	recorder := &fakeRecorder{}
	pipeline := NewPipelineService(
		panickingExtractor{},
		NewOpticalExtractor(gemini, NewPromptBuilder()),
		NewRetryController(NewAnalysisClient(gemini), DefaultMaxAttempts, time.Second),
		recorder,
		PipelineOptions{},
	)

	result, err := pipeline.Analyze(context.Background(), textRequest("Jane Doe", "Go backend role"))

	assert.Nil(t, result)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, 500, HTTPStatus(err))
	assert.Equal(t, msgInternal, PublicMessage(err))
	require.Len(t, recorder.runs, 1)
	assert.Equal(t, models.StateFailed, recorder.runs[0].State)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "abc", Preview("abc", 500))
	assert.Equal(t, "ab", Preview("abc", 2))
	assert.Equal(t, "", Preview("", 2))
}
