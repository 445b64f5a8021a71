package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Report summarises one finished run.
type Report struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name,omitempty"`
	Source  string    `json:"source"`
	Workers int       `json:"workers"`

	// Lines counts non-blank data lines read, header excluded.
	Lines             int64 `json:"lines"`
	Records           int64 `json:"records"`
	Matches           int64 `json:"matches"`
	ParseFailures     int64 `json:"parse_failures"`
	PredicateFailures int64 `json:"predicate_failures"`
	SourceFailed      bool  `json:"source_failed"`
	// Cancelled is set when cancellation stopped the producer early or left
	// queued days unevaluated; Unprocessed counts the latter.
	Cancelled   bool  `json:"cancelled"`
	Unprocessed int64 `json:"unprocessed"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

func (r Report) Failures() int64 {
	n := r.ParseFailures + r.PredicateFailures
	if r.SourceFailed {
		n++
	}
	return n
}
