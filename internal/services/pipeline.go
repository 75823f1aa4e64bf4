package services

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"alfredoptarigan/skillbridge/internal/logger"
	"alfredoptarigan/skillbridge/internal/models"
)

// PreviewLength is the number of characters of extracted text echoed back.
const PreviewLength = 500

type AnalysisMode string

const (
	ModeLive     AnalysisMode = "live"
	ModeDegraded AnalysisMode = "degraded"
)

// PipelineResult is a successful run: the envelope for the caller plus the
// metadata transports may expose alongside it.
type PipelineResult struct {
	Envelope   models.ResponseEnvelope
	Mode       AnalysisMode
	TextSource models.TextSource
	Attempts   int
	RunID      uuid.UUID
}

type PipelineService interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*PipelineResult, error)
}

type PipelineOptions struct {
	OCREnabled bool
	OCRTimeout time.Duration
}

type pipelineService struct {
	extractor  TextExtractorService
	optical    OpticalExtractor
	prompts    *PromptBuilder
	controller *RetryController
	recorder   RunRecorder
	opts       PipelineOptions
}

func NewPipelineService(
	extractor TextExtractorService,
	optical OpticalExtractor,
	controller *RetryController,
	recorder RunRecorder,
	opts PipelineOptions,
) PipelineService {
	if recorder == nil {
		recorder = NewNoopRunRecorder()
	}
	return &pipelineService{
		extractor:  extractor,
		optical:    optical,
		prompts:    NewPromptBuilder(),
		controller: controller,
		recorder:   recorder,
		opts:       opts,
	}
}

// Analyze runs extraction, prompt construction and analysis for one request.
// Every error it returns is an *AnalysisError.
func (p *pipelineService) Analyze(ctx context.Context, req models.AnalysisRequest) (result *PipelineResult, err error) {
	started := time.Now()
	run := &models.AnalysisRun{
		ID:        uuid.New(),
		RequestID: logger.RequestID(ctx),
		MimeType:  ResolveMimeType(req.Document),
		SizeBytes: req.Document.Size(),
		State:     models.StateAttempting,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "💥 Pipeline panic", "panic", fmt.Sprint(r), "stack", string(debug.Stack()))
			result = nil
			err = newAnalysisError(KindInternal, msgInternal, fmt.Errorf("panic: %v", r))
		}

		if err != nil {
			kind := string(KindOf(err))
			run.ErrorKind = &kind
			if run.State == models.StateAttempting {
				run.State = models.StateFailed
			}
		}
		run.DurationMS = time.Since(started).Milliseconds()
		p.recorder.Record(ctx, run)
	}()

	if err := req.Validate(); err != nil {
		logger.Info(ctx, "⚠️ Rejected request with missing input", "error", err)
		return nil, newAnalysisError(KindMissingInput, msgMissingInput, err)
	}

	if req.Document.Size() == 0 {
		logger.Info(ctx, "⚠️ Rejected zero-byte document")
		return nil, newAnalysisError(KindEmptyDocument, msgEmptyDocument, nil)
	}

	logger.Info(ctx, "📄 Extracting resume text", "mime_type", run.MimeType, "size_bytes", run.SizeBytes)
	extracted, err := p.extract(ctx, req.Document)
	if err != nil {
		return nil, err
	}
	run.TextSource = string(extracted.Source)
	run.TextLength = utf8.RuneCountInString(extracted.Content)

	prompt := p.prompts.BuildAnalysisPrompt(extracted.Content, req.JobDescription)

	logger.Info(ctx, "🤖 Analyzing resume against job description", "text_source", run.TextSource)
	outcome := p.controller.Run(ctx, prompt)
	run.State = outcome.State
	run.Attempts = outcome.Attempts

	if outcome.State == models.StateFailed {
		return nil, outcome.Err
	}
	if outcome.Result == nil {
		return nil, newAnalysisError(KindInternal, msgInternal, errors.New("controller finished without a result"))
	}

	mode := ModeLive
	if outcome.State == models.StateDegraded {
		mode = ModeDegraded
	}

	return &PipelineResult{
		Envelope: models.ResponseEnvelope{
			Success:    true,
			Analysis:   *outcome.Result,
			ResumeText: Preview(extracted.Content, PreviewLength),
		},
		Mode:       mode,
		TextSource: extracted.Source,
		Attempts:   outcome.Attempts,
		RunID:      run.ID,
	}, nil
}

func (p *pipelineService) extract(ctx context.Context, doc models.Document) (models.ExtractedText, error) {
	text, extractErr := p.extractor.ExtractText(doc)
	if extractErr == nil && strings.TrimSpace(text) != "" {
		return models.ExtractedText{Content: text, Source: models.TextSourceStructural}, nil
	}

	if !p.opticalAvailable(doc) {
		if extractErr != nil {
			logger.Info(ctx, "⚠️ Document could not be parsed", "error", extractErr)
			return models.ExtractedText{}, newAnalysisError(KindInvalidDocument, msgInvalidDocument, extractErr)
		}
		return models.ExtractedText{}, newAnalysisError(KindEmptyDocument, msgEmptyDocument, nil)
	}

	if extractErr != nil {
		logger.Info(ctx, "🔍 Structural extraction failed, attempting OCR", "error", extractErr)
	} else {
		logger.Info(ctx, "🔍 Document has no text layer, attempting OCR")
	}

	ocrCtx := ctx
	if p.opts.OCRTimeout > 0 {
		var cancel context.CancelFunc
		ocrCtx, cancel = context.WithTimeout(ctx, p.opts.OCRTimeout)
		defer cancel()
	}

	extracted, err := p.optical.Extract(ocrCtx, doc)
	if err != nil {
		if errors.Is(err, ErrMissingCredential) {
			return models.ExtractedText{}, newAnalysisError(KindConfiguration, msgConfiguration, err)
		}
		logger.Warn(ctx, "❌ OCR failed", "error", err)
		return models.ExtractedText{}, newAnalysisError(KindUnreadableDocument, msgUnreadableDocument, err)
	}

	logger.Info(ctx, "✅ OCR extracted text", "chars", utf8.RuneCountInString(extracted.Content))
	return extracted, nil
}

func (p *pipelineService) opticalAvailable(doc models.Document) bool {
	return p.opts.OCREnabled && p.optical != nil && p.optical.Supports(ResolveMimeType(doc))
}

// Preview returns at most n characters of text.
func Preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n])
}
