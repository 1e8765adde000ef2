package model

// MethodOutcome is the terminal status of a single extraction attempt.
type MethodOutcome string

const (
	// OutcomeSuccess means the method ran and produced a usable record.
	OutcomeSuccess MethodOutcome = "success"
	// OutcomePartial means the method ran but some expected fields are missing.
	OutcomePartial MethodOutcome = "partial_success"
	// OutcomeFailed means the method hit an internal error; any fields it did
	// produce are still usable.
	OutcomeFailed MethodOutcome = "failed"
	// OutcomeUnavailable means a required external dependency could not be
	// reached (network, auth, timeout).
	OutcomeUnavailable MethodOutcome = "unavailable"
)

// MethodAttempt records one extraction method run for auditability.
type MethodAttempt struct {
	Method     Method        `json:"method"`
	Outcome    MethodOutcome `json:"outcome"`
	DurationMS int64         `json:"duration_ms"`
	Detail     string        `json:"detail,omitempty"`
}

// ProcessingMetadata describes how a document was processed.
type ProcessingMetadata struct {
	RunID            string          `json:"run_id"`
	DocumentKind     DocumentKind    `json:"document_kind"`
	MethodsAttempted []MethodAttempt `json:"methods_attempted"`
	TablesFound      int             `json:"tables_found"`
	TextChars        int             `json:"text_chars"`
	VisualInvoked    bool            `json:"visual_invoked"`
	EnhancementRun   bool            `json:"enhancement_run,omitempty"`
	TimedOut         bool            `json:"timed_out,omitempty"`
	DurationMS       int64           `json:"duration_ms"`
}

// Attempted reports whether the given method ran.
func (pm *ProcessingMetadata) Attempted(m Method) bool {
	for _, a := range pm.MethodsAttempted {
		if a.Method == m {
			return true
		}
	}
	return false
}

// CategoryScore is one line of the confidence rubric: points earned out of
// points possible for a category. Retained in output for auditability.
type CategoryScore struct {
	Category string  `json:"category"`
	Earned   float64 `json:"earned"`
	Possible float64 `json:"possible"`
}
