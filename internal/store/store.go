package store

import (
	"time"

	"github.com/sells-group/income-verify/internal/model"
)

// Run is one persisted parse run: the source path, headline results, and the
// full assembled document as JSON for later inspection.
type Run struct {
	ID           string             `json:"id"`
	Path         string             `json:"path"`
	Kind         model.DocumentKind `json:"kind"`
	Confidence   float64            `json:"confidence"`
	WarningCount int                `json:"warning_count"`
	Document     *model.Document    `json:"document,omitempty"`
	RecordedAt   time.Time          `json:"recorded_at"`
}

// RunFilter narrows ListRuns. Zero values mean no constraint.
type RunFilter struct {
	Kind          model.DocumentKind
	Path          string
	MinConfidence float64
	Limit         int
	Offset        int
}
