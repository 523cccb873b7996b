package ticker

import (
	"context"
	"errors"
	"fmt"

	"stock-ticker-be/pkg/reasoning"
)

// ErrStoreUnavailable means the catalog could not answer any lookup of a resolve call.
var ErrStoreUnavailable = errors.New("catalog store unavailable")

// Code is the reason code surfaced to callers on a failed pipeline.
type Code string

const (
	CodeSchemaViolation  Code = "SCHEMA_VIOLATION"
	CodeReasoningFailed  Code = "REASONING_FAILED"
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeCanceled         Code = "CANCELED"
	CodeInvalidInput     Code = "INVALID_INPUT"
)

// PipelineError is a fatal failure with the stage (and candidate, when one
// is to blame) it happened in.
type PipelineError struct {
	Stage     Stage
	Cycle     int
	Code      Code
	Candidate *Candidate
	Err       error
}

func (e *PipelineError) Error() string {
	if e.Candidate != nil {
		return fmt.Sprintf("ticker pipeline %s (cycle %d, candidate %s): %s: %v", e.Stage, e.Cycle, e.Candidate, e.Code, e.Err)
	}
	return fmt.Sprintf("ticker pipeline %s (cycle %d): %s: %v", e.Stage, e.Cycle, e.Code, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// CandidateFailure records a lookup that failed without sinking the request.
type CandidateFailure struct {
	Candidate Candidate `json:"candidate"`
	Lookup    string    `json:"lookup"`
	Error     string    `json:"error"`
}

func classify(err error) Code {
	switch {
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, reasoning.ErrSchemaViolation):
		return CodeSchemaViolation
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeReasoningFailed
	}
}
