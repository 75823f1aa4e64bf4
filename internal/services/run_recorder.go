package services

import (
	"context"

	"alfredoptarigan/skillbridge/internal/logger"
	"alfredoptarigan/skillbridge/internal/models"
	"alfredoptarigan/skillbridge/internal/repositories"
)

// RunRecorder stores run metadata. Recording never fails a request.
type RunRecorder interface {
	Record(ctx context.Context, run *models.AnalysisRun)
}

type noopRunRecorder struct{}

func NewNoopRunRecorder() RunRecorder {
	return noopRunRecorder{}
}

func (noopRunRecorder) Record(context.Context, *models.AnalysisRun) {}

type repositoryRunRecorder struct {
	repo repositories.AnalysisRunRepository
}

func NewRunRecorder(repo repositories.AnalysisRunRepository) RunRecorder {
	return &repositoryRunRecorder{repo: repo}
}

func (r *repositoryRunRecorder) Record(ctx context.Context, run *models.AnalysisRun) {
	if err := r.repo.Create(run); err != nil {
		logger.Warn(ctx, "⚠️ Failed to record analysis run", "error", err)
		return
	}
	logger.Debug(ctx, "💾 Analysis run recorded", "run_id", run.ID.String(), "state", string(run.State))
}
