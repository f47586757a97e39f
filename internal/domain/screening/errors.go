package screening

import "errors"

var (
	ErrResultNotFound    = errors.New("screening result not found")
	ErrPatientNotFound   = errors.New("patient not found")
	ErrUnknownAction     = errors.New("unknown lifecycle action")
	ErrRoleNotAllowed    = errors.New("role not allowed to perform this action")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrAnalysisInFlight  = errors.New("an analysis for this patient is already in flight")
)
