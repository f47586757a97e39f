// Package prescription holds doctor-authored prescriptions. A prescription
// is created once during review of a screening result and is immutable.
package prescription

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Medication is one ordered entry on a prescription.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

// Prescription is the doctor's review output. Zero medications is valid
// (a diagnosis with advice only).
type Prescription struct {
	ID           uuid.UUID    `json:"id"`
	ResultID     uuid.UUID    `json:"result_id"`
	DoctorID     uuid.UUID    `json:"doctor_id"`
	Diagnosis    string       `json:"diagnosis"`
	Medications  []Medication `json:"medications"`
	FollowUpDate *time.Time   `json:"follow_up_date,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Validate checks the fields required at creation.
func (p *Prescription) Validate() error {
	if p.ResultID == uuid.Nil {
		return fmt.Errorf("result_id is required")
	}
	if p.DoctorID == uuid.Nil {
		return fmt.Errorf("doctor_id is required")
	}
	if strings.TrimSpace(p.Diagnosis) == "" {
		return fmt.Errorf("diagnosis is required")
	}
	for i, m := range p.Medications {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("medication %d: name is required", i)
		}
	}
	return nil
}
