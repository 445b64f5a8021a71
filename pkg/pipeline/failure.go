package pipeline

import (
	"fmt"

	"github.com/ib-77/tradescan/pkg/trade"
)

// FailureKind classifies a recovered failure. None of them is fatal to a run.
type FailureKind int

const (
	// SourceUnavailable: the source could not be opened or read to the end.
	SourceUnavailable FailureKind = iota + 1
	// LineParse: a data line was malformed and skipped.
	LineParse
	// PredicateFailure: the predicate returned an error or panicked; the
	// day was not counted.
	PredicateFailure
)

func (k FailureKind) String() string {
	switch k {
	case SourceUnavailable:
		return "source_unavailable"
	case LineParse:
		return "line_parse"
	case PredicateFailure:
		return "predicate"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Failure describes one recovered failure.
type Failure struct {
	Kind FailureKind
	// Line is the 1-based input line number, 0 when not tied to a line.
	Line int
	// Text is the raw line of a LineParse failure.
	Text string
	// Day is the evaluated record of a PredicateFailure.
	Day trade.Day
	Err error
}

func (f Failure) Error() string {
	switch f.Kind {
	case LineParse:
		return fmt.Sprintf("%s: line %d: %v", f.Kind, f.Line, f.Err)
	case PredicateFailure:
		return fmt.Sprintf("%s: %s: %v", f.Kind, trade.FormatDate(f.Day.Date), f.Err)
	default:
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
}

func (f Failure) Unwrap() error {
	return f.Err
}
