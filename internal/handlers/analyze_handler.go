package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/skillbridge/internal/logger"
	"alfredoptarigan/skillbridge/internal/models"
	"alfredoptarigan/skillbridge/internal/services"
)

const (
	HeaderAnalysisMode     = "X-Analysis-Mode"
	HeaderResumeTextSource = "X-Resume-Text-Source"
	HeaderRunID            = "X-Run-ID"
)

type AnalyzeHandler struct {
	pipeline    services.PipelineService
	maxFileSize int64
	exposeRunID bool
}

func NewAnalyzeHandler(pipeline services.PipelineService, maxFileSize int64, exposeRunID bool) *AnalyzeHandler {
	return &AnalyzeHandler{
		pipeline:    pipeline,
		maxFileSize: maxFileSize,
		exposeRunID: exposeRunID,
	}
}

// HandleAnalyze handles POST /api/analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	ctx := c.UserContext()

	req := models.AnalysisRequest{
		JobDescription: c.FormValue("jobDescription"),
	}

	// A missing file is reported by the pipeline together with a missing job description.
	if fileHeader, err := c.FormFile("resume"); err == nil {
		if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
			return writeError(c, services.NewDocumentTooLargeError(fileHeader.Size, h.maxFileSize))
		}

		doc, err := readDocument(fileHeader)
		if err != nil {
			logger.Error(ctx, "❌ Failed to read uploaded file", "error", err)
			return writeError(c, err)
		}
		req.Document = doc
	}

	result, err := h.pipeline.Analyze(ctx, req)
	if err != nil {
		return writeError(c, err)
	}

	c.Set(HeaderAnalysisMode, string(result.Mode))
	c.Set(HeaderResumeTextSource, string(result.TextSource))
	if h.exposeRunID {
		c.Set(HeaderRunID, result.RunID.String())
	}

	return c.JSON(result.Envelope)
}

func readDocument(fileHeader *multipart.FileHeader) (models.Document, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	return models.Document{
		Filename: fileHeader.Filename,
		MimeType: fileHeader.Header.Get(fiber.HeaderContentType),
		Data:     data,
	}, nil
}

func writeError(c *fiber.Ctx, err error) error {
	status := services.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.Error(c.UserContext(), "❌ Analysis request failed", "kind", string(services.KindOf(err)), "error", err)
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Error: services.PublicMessage(err),
	})
}
