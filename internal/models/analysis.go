package models

import (
	"encoding/json"
	"fmt"
	"math"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Percentage is an integer score in [0,100]. It accepts integral JSON
// numbers written with a fractional part (e.g. 85.0).
type Percentage int

func (p *Percentage) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("percentage must be a number: %w", err)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("percentage must be an integer, got %v", f)
	}
	*p = Percentage(f)
	return nil
}

type MatchedSkill struct {
	Skill       string     `json:"skill"`
	Proficiency Percentage `json:"proficiency"`
	Evidence    string     `json:"evidence"`
}

type MissingSkill struct {
	Skill         string   `json:"skill"`
	Priority      Priority `json:"priority"`
	Reason        string   `json:"reason"`
	LearnResource string   `json:"learnResource"`
}

// AnalysisResult is the structure the generative backend must return.
type AnalysisResult struct {
	MatchScore        Percentage     `json:"matchScore"`
	MatchedSkills     []MatchedSkill `json:"matchedSkills"`
	MissingSkills     []MissingSkill `json:"missingSkills"`
	Summary           string         `json:"summary"`
	TopRecommendation string         `json:"topRecommendation"`
}

// Prompt is the instruction pair sent to the backend.
type Prompt struct {
	SystemInstruction string
	UserContent       string
}
