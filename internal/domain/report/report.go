// Package report composes a screening result, its patient, and (for doctor
// and admin viewers) its prescription into a read-only presentational
// document. It derives display values only; nothing here mutates state.
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ganeshcj/Optimedix/internal/domain/patient"
	"github.com/Ganeshcj/Optimedix/internal/domain/prescription"
	"github.com/Ganeshcj/Optimedix/internal/domain/screening"
	"github.com/Ganeshcj/Optimedix/internal/platform/ai"
	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

// ErrReportNotFound signals a missing result or patient. A report is never
// rendered from partial data.
var ErrReportNotFound = errors.New("report not found")

const dateLayout = "02 Jan 2006"

// EyeSection is one eye's findings formatted for display.
type EyeSection struct {
	Label         string `json:"label"`
	Disease       string `json:"disease"`
	Severity      string `json:"severity"`
	RiskScore     string `json:"risk_score"`
	Confidence    string `json:"confidence"`
	Abnormalities string `json:"abnormalities"`
}

// PrescriptionSection is the doctor's review formatted for display.
type PrescriptionSection struct {
	Diagnosis    string                    `json:"diagnosis"`
	Medications  []prescription.Medication `json:"medications"`
	FollowUpDate string                    `json:"follow_up_date,omitempty"`
	Notes        string                    `json:"notes,omitempty"`
}

// Report is the composed screening document.
type Report struct {
	ResultID     uuid.UUID            `json:"result_id"`
	PatientName  string               `json:"patient_name"`
	PatientLine  string               `json:"patient_line"`
	Phone        string               `json:"phone,omitempty"`
	ScreenedOn   string               `json:"screened_on"`
	Status       string               `json:"status"`
	Eyes         []EyeSection         `json:"eyes"`
	Prescription *PrescriptionSection `json:"prescription,omitempty"`
}

// ResultSource is the slice of the screening domain the renderer needs.
type ResultSource interface {
	Get(ctx context.Context, id uuid.UUID) (*screening.ScreeningResult, error)
}

// PatientSource is the slice of the patient registry the renderer needs.
type PatientSource interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// PrescriptionSource looks up the prescription issued for a result.
type PrescriptionSource interface {
	GetByResult(ctx context.Context, resultID uuid.UUID) (*prescription.Prescription, error)
}

type Service struct {
	results       ResultSource
	patients      PatientSource
	prescriptions PrescriptionSource
}

func NewService(results ResultSource, patients PatientSource, prescriptions PrescriptionSource) *Service {
	return &Service{results: results, patients: patients, prescriptions: prescriptions}
}

// Build composes the report for a viewer role. A missing result or patient
// yields ErrReportNotFound. The prescription section appears only for DOCTOR
// and ADMIN viewers, and only when one was issued.
func (s *Service) Build(ctx context.Context, resultID uuid.UUID, viewerRole string) (*Report, error) {
	result, err := s.results.Get(ctx, resultID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportNotFound, err)
	}
	p, err := s.patients.Get(ctx, result.PatientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReportNotFound, err)
	}

	r := &Report{
		ResultID:    result.ID,
		PatientName: p.Name,
		PatientLine: fmt.Sprintf("%d / %s", p.Age, p.Gender),
		Phone:       p.Phone,
		ScreenedOn:  result.Date.Format(dateLayout),
		Status:      result.Status,
		Eyes:        eyeSections(result),
	}

	if viewerRole == auth.RoleDoctor || viewerRole == auth.RoleAdmin {
		if rx, err := s.prescriptions.GetByResult(ctx, resultID); err == nil {
			section := &PrescriptionSection{
				Diagnosis:   rx.Diagnosis,
				Medications: rx.Medications,
				Notes:       rx.Notes,
			}
			if rx.FollowUpDate != nil {
				section.FollowUpDate = rx.FollowUpDate.Format(dateLayout)
			}
			r.Prescription = section
		}
	}

	return r, nil
}

func eyeSections(result *screening.ScreeningResult) []EyeSection {
	var sections []EyeSection
	if result.LeftEye != nil {
		sections = append(sections, eyeSection("Left Eye", result.LeftEye))
	}
	if result.RightEye != nil {
		sections = append(sections, eyeSection("Right Eye", result.RightEye))
	}
	return sections
}

func eyeSection(label string, a *ai.EyeAnalysis) EyeSection {
	return EyeSection{
		Label:         label,
		Disease:       string(a.Disease),
		Severity:      string(a.Severity),
		RiskScore:     fmt.Sprintf("%.0f%%", a.RiskScore),
		Confidence:    fmt.Sprintf("%.0f%%", a.ConfidenceScore),
		Abnormalities: a.Abnormalities,
	}
}
