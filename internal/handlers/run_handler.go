package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/skillbridge/internal/logger"
	"alfredoptarigan/skillbridge/internal/models"
	"alfredoptarigan/skillbridge/internal/repositories"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 100
)

type RunHandler struct {
	runRepo repositories.AnalysisRunRepository
}

func NewRunHandler(runRepo repositories.AnalysisRunRepository) *RunHandler {
	return &RunHandler{
		runRepo: runRepo,
	}
}

// HandleGetRun handles GET /api/runs/:id
func (h *RunHandler) HandleGetRun(c *fiber.Ctx) error {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid run ID format",
		})
	}

	run, err := h.runRepo.FindByID(runID)
	if err != nil {
		if errors.Is(err, repositories.ErrRunNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Run not found",
			})
		}
		logger.Error(c.UserContext(), "❌ Failed to load run", "run_id", runID.String(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load run",
		})
	}

	return c.JSON(toRunResponse(run))
}

// HandleListRuns handles GET /api/runs
func (h *RunHandler) HandleListRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultRunLimit)
	if limit < 1 || limit > maxRunLimit {
		limit = defaultRunLimit
	}

	runs, err := h.runRepo.FindRecent(limit)
	if err != nil {
		logger.Error(c.UserContext(), "❌ Failed to list runs", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list runs",
		})
	}

	response := make([]models.RunResponse, 0, len(runs))
	for i := range runs {
		response = append(response, toRunResponse(&runs[i]))
	}

	return c.JSON(fiber.Map{
		"runs": response,
	})
}

func toRunResponse(run *models.AnalysisRun) models.RunResponse {
	return models.RunResponse{
		ID:         run.ID.String(),
		RequestID:  run.RequestID,
		MimeType:   run.MimeType,
		SizeBytes:  run.SizeBytes,
		TextSource: run.TextSource,
		TextLength: run.TextLength,
		State:      string(run.State),
		Attempts:   run.Attempts,
		ErrorKind:  run.ErrorKind,
		DurationMS: run.DurationMS,
		CreatedAt:  run.CreatedAt.Format(time.RFC3339),
	}
}
