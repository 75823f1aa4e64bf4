package models

import (
	"time"

	"github.com/google/uuid"
)

// RunState is the terminal (or current) state of the retry/degradation controller.
type RunState string

const (
	StateAttempting RunState = "ATTEMPTING"
	StateSucceeded  RunState = "SUCCEEDED"
	StateDegraded   RunState = "DEGRADED"
	StateFailed     RunState = "FAILED"
)

// AnalysisRun records how a pipeline run went. It never carries résumé text
// or the analysis itself.
type AnalysisRun struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RequestID  string    `gorm:"type:text" json:"request_id"`
	MimeType   string    `gorm:"type:text" json:"mime_type"`
	SizeBytes  int       `gorm:"not null;default:0" json:"size_bytes"`
	TextSource string    `gorm:"type:text" json:"text_source"`
	TextLength int       `gorm:"not null;default:0" json:"text_length"`
	State      RunState  `gorm:"type:text;not null" json:"state"`
	Attempts   int       `gorm:"not null;default:0" json:"attempts"`
	ErrorKind  *string   `gorm:"type:text" json:"error_kind,omitempty"`
	DurationMS int64     `gorm:"not null;default:0" json:"duration_ms"`
	CreatedAt  time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (AnalysisRun) TableName() string {
	return "analysis_runs"
}
