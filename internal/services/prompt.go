package services

import (
	"fmt"

	"alfredoptarigan/skillbridge/internal/models"
)

const analysisSystemInstruction = `You are a career coach and technical recruiter. Analyze the resume and job description provided. Return ONLY a valid JSON object (no markdown, no code fences, no explanation) with this exact structure:

{
  "matchScore": <integer 0-100>,
  "matchedSkills": [
    { "skill": "string", "proficiency": <integer 0-100>, "evidence": "brief quote or reason from resume" }
  ],
  "missingSkills": [
    { "skill": "string", "priority": "high|medium|low", "reason": "why this skill matters for the role", "learnResource": "a specific free learning resource URL or platform name" }
  ],
  "summary": "2-3 sentence personalized summary of the candidate's fit",
  "topRecommendation": "single most impactful action the candidate should take"
}

Rules:
- "priority" must be exactly one of "high", "medium" or "low".
- "matchScore" and "proficiency" are whole numbers between 0 and 100.
- Every key above is required. Use empty arrays when there is nothing to list.`

const ocrInstruction = "Extract all text from this resume document image. Return only the extracted text, preserving the structure and formatting as much as possible."

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAnalysisPrompt creates the instruction pair for a fit analysis. The
// output depends only on its inputs.
func (pb *PromptBuilder) BuildAnalysisPrompt(resumeText, jobDescription string) models.Prompt {
	return models.Prompt{
		SystemInstruction: analysisSystemInstruction,
		UserContent:       fmt.Sprintf("Resume:\n%s\n\nJob Description:\n%s", resumeText, jobDescription),
	}
}

// BuildOCRInstruction is the instruction sent alongside a document image.
func (pb *PromptBuilder) BuildOCRInstruction() string {
	return ocrInstruction
}
