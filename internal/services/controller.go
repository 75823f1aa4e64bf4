package services

import (
	"context"
	"time"

	"alfredoptarigan/skillbridge/internal/logger"
	"alfredoptarigan/skillbridge/internal/models"
)

const DefaultMaxAttempts = 2

// AnalysisOutcome is the terminal state of one controller run. Result is set
// for SUCCEEDED and DEGRADED, Err for FAILED.
type AnalysisOutcome struct {
	State    models.RunState
	Result   *models.AnalysisResult
	Attempts int
	Err      error
}

// RetryController runs analysis attempts until one succeeds, the failure is
// classified as an auth rejection, or attempts run out.
type RetryController struct {
	client         AnalysisClient
	maxAttempts    int
	attemptTimeout time.Duration
}

func NewRetryController(client AnalysisClient, maxAttempts int, attemptTimeout time.Duration) *RetryController {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &RetryController{
		client:         client,
		maxAttempts:    maxAttempts,
		attemptTimeout: attemptTimeout,
	}
}

func (r *RetryController) Run(ctx context.Context, prompt models.Prompt) AnalysisOutcome {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		result, err := r.attempt(ctx, prompt)
		if err == nil {
			logger.Info(ctx, "✅ Analysis succeeded", "attempt", attempt)
			return AnalysisOutcome{State: models.StateSucceeded, Result: result, Attempts: attempt}
		}

		lastErr = err

		switch ClassifyFailure(err) {
		case FailureConfiguration:
			logger.Error(ctx, "❌ Analysis backend is not configured", "error", err)
			return AnalysisOutcome{
				State:    models.StateFailed,
				Attempts: attempt,
				Err:      newAnalysisError(KindConfiguration, msgConfiguration, err),
			}
		case FailureAuth:
			logger.Warn(ctx, "⚠️ Backend rejected the request, returning degraded analysis", "attempt", attempt, "error", err)
			degraded := DegradedAnalysis()
			return AnalysisOutcome{State: models.StateDegraded, Result: &degraded, Attempts: attempt}
		}

		if ctx.Err() != nil {
			logger.Warn(ctx, "⚠️ Analysis cancelled", "attempt", attempt, "error", ctx.Err())
			return AnalysisOutcome{
				State:    models.StateFailed,
				Attempts: attempt,
				Err:      unavailable(ctx.Err()),
			}
		}

		if attempt < r.maxAttempts {
			logger.Warn(ctx, "⚠️ Analysis attempt failed, retrying", "attempt", attempt, "error", err)
		}
	}

	logger.Error(ctx, "❌ Analysis failed", "attempts", r.maxAttempts, "error", lastErr)
	return AnalysisOutcome{
		State:    models.StateFailed,
		Attempts: r.maxAttempts,
		Err:      unavailable(lastErr),
	}
}

func unavailable(cause error) *AnalysisError {
	return newAnalysisError(KindAnalysisUnavailable, msgAnalysisFailedPrefix+cause.Error(), cause)
}

func (r *RetryController) attempt(ctx context.Context, prompt models.Prompt) (*models.AnalysisResult, error) {
	if r.attemptTimeout <= 0 {
		return r.client.Analyze(ctx, prompt)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
	defer cancel()

	return r.client.Analyze(attemptCtx, prompt)
}
