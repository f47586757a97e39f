// Package screening owns the screening result record and its status
// lifecycle. A result is created PENDING by a nurse-run analysis, moves to
// REFERRED when a nurse escalates it, and to REVIEWED when a doctor submits
// a prescription. Status only moves forward; REVIEWED is terminal; results
// are never deleted. Re-screening a patient creates a new result.
package screening

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ganeshcj/Optimedix/internal/platform/ai"
)

// Status values of a screening result.
const (
	StatusPending  = "PENDING"
	StatusReferred = "REFERRED"
	StatusReviewed = "REVIEWED"
)

// ScreeningResult records one bilateral analysis run. Eye findings are
// immutable once attached; a missing side means no image was captured for
// that eye.
type ScreeningResult struct {
	ID           uuid.UUID       `json:"id"`
	PatientID    uuid.UUID       `json:"patient_id"`
	NurseID      uuid.UUID       `json:"nurse_id"`
	Date         time.Time       `json:"date"`
	LeftEye      *ai.EyeAnalysis `json:"left_eye,omitempty"`
	RightEye     *ai.EyeAnalysis `json:"right_eye,omitempty"`
	LeftImageID  string          `json:"left_image_id,omitempty"`
	RightImageID string          `json:"right_image_id,omitempty"`
	Status       string          `json:"status"`
}

// Worst returns the eye finding with the higher risk score, or the only
// finding present.
func (r *ScreeningResult) Worst() *ai.EyeAnalysis {
	switch {
	case r.LeftEye == nil:
		return r.RightEye
	case r.RightEye == nil:
		return r.LeftEye
	case r.RightEye.RiskScore > r.LeftEye.RiskScore:
		return r.RightEye
	default:
		return r.LeftEye
	}
}

// Positive reports whether any eye shows a finding other than Normal.
func (r *ScreeningResult) Positive() bool {
	if r.LeftEye != nil && r.LeftEye.Disease != ai.DiseaseNormal {
		return true
	}
	if r.RightEye != nil && r.RightEye.Disease != ai.DiseaseNormal {
		return true
	}
	return false
}
