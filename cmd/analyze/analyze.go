package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"alfredoptarigan/skillbridge/internal/config"
	"alfredoptarigan/skillbridge/internal/logger"
	"alfredoptarigan/skillbridge/internal/models"
	"alfredoptarigan/skillbridge/internal/services"
)

type analyzeOptions struct {
	resume  string
	job     string
	jobFile string
	out     string
	noOCR   bool
}

type pipelineFactory func(cfg *config.Config) services.PipelineService

func newRootCmd(factory pipelineFactory) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a resume against a job description",
		Long:  "Extracts text from a resume document, asks the generative backend for a structured fit assessment and prints the response envelope as JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd, opts, factory)
		},
		// Pipeline failures are reported once by main.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&opts.resume, "resume", "r", "", "Path to the resume document (required)")
	cmd.Flags().StringVarP(&opts.job, "job", "j", "", "Job description text")
	cmd.Flags().StringVar(&opts.jobFile, "job-file", "", "Path to a file holding the job description")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Write the JSON envelope to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.noOCR, "no-ocr", false, "Disable the optical extraction fallback")

	if err := cmd.MarkFlagRequired("resume"); err != nil {
		panic(fmt.Sprintf("failed to mark resume flag as required: %v", err))
	}
	cmd.MarkFlagsMutuallyExclusive("job", "job-file")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, factory pipelineFactory) error {
	cfg := config.Load()
	// stdout carries only the envelope
	logger.InitWithWriter(&logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}, cmd.ErrOrStderr())

	if opts.noOCR {
		cfg.Analysis.OCREnabled = false
	}

	req, err := buildRequest(opts.resume, opts.job, opts.jobFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithRequestID(ctx, uuid.NewString())

	result, err := factory(cfg).Analyze(ctx, req)
	if err != nil {
		var ae *services.AnalysisError
		if errors.As(err, &ae) {
			return errors.New(services.PublicMessage(err))
		}
		return err
	}

	if result.Mode == services.ModeDegraded {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning: the analysis backend rejected the request, showing a sample analysis")
	}

	return writeEnvelope(result.Envelope, opts.out, cmd.OutOrStdout())
}

// buildRequest reads the resume and job description from disk. The MIME
// type is left to the extractor, which resolves it from the file name.
func buildRequest(resumePath, job, jobFile string) (models.AnalysisRequest, error) {
	data, err := os.ReadFile(resumePath)
	if err != nil {
		return models.AnalysisRequest{}, fmt.Errorf("failed to read resume file %s: %w", resumePath, err)
	}

	if jobFile != "" {
		content, err := os.ReadFile(jobFile)
		if err != nil {
			return models.AnalysisRequest{}, fmt.Errorf("failed to read job description file %s: %w", jobFile, err)
		}
		job = string(content)
	}

	return models.AnalysisRequest{
		Document: models.Document{
			Filename: filepath.Base(resumePath),
			Data:     data,
		},
		JobDescription: job,
	}, nil
}

func newPipeline(cfg *config.Config) services.PipelineService {
	geminiService := services.NewGeminiService(services.GeminiOptions{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		VisionModel: cfg.Gemini.VisionModel,
	})

	controller := services.NewRetryController(
		services.NewAnalysisClient(geminiService),
		cfg.Analysis.MaxAttempts,
		cfg.Analysis.AttemptTimeout,
	)

	return services.NewPipelineService(
		services.NewTextExtractorService(),
		services.NewOpticalExtractor(geminiService, services.NewPromptBuilder()),
		controller,
		services.NewNoopRunRecorder(),
		services.PipelineOptions{
			OCREnabled: cfg.Analysis.OCREnabled,
			OCRTimeout: cfg.Analysis.OCRTimeout,
		},
	)
}

func writeEnvelope(envelope models.ResponseEnvelope, outPath string, stdout io.Writer) error {
	jsonOutput, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response envelope: %w", err)
	}

	if outPath == "" {
		_, err := fmt.Fprintln(stdout, string(jsonOutput))
		return err
	}

	if err := os.WriteFile(outPath, jsonOutput, 0644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", outPath, err)
	}
	return nil
}
