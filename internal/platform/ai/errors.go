package ai

import (
	"errors"
	"fmt"
)

// ErrNoImages is returned when a caller invokes the gateway with both image
// slots empty. The check runs before any network I/O.
var ErrNoImages = errors.New("at least one fundus image is required")

// ErrAnalysisFailed is the sentinel all gateway failures match via errors.Is.
var ErrAnalysisFailed = errors.New("analysis failed")

// Failure reasons carried by AnalysisError.
const (
	ReasonTransport = "transport"
	ReasonStatus    = "status"
	ReasonMalformed = "malformed"
	ReasonSchema    = "schema"
)

// AnalysisError is a typed gateway failure. There is no silent fallback to a
// mock diagnosis: malformed or schema-violating model output is surfaced to
// the caller, who decides how to present it.
type AnalysisError struct {
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed (%s): %v", e.Reason, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }

func failure(reason string, err error) *AnalysisError {
	return &AnalysisError{Reason: reason, Err: err}
}
