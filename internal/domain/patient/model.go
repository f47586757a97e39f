// Package patient manages clinical intake records. A patient is registered
// once by a nurse and never deleted; after creation only the last screening
// date moves, touched by the screening module when it appends a result.
package patient

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Gender values accepted at intake.
var validGenders = map[string]bool{
	"Male": true, "Female": true, "Other": true,
}

// Patient is the clinical intake record.
type Patient struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Age               int        `json:"age"`
	Gender            string     `json:"gender"`
	Phone             string     `json:"phone"`
	DiabetesHistory   bool       `json:"diabetes_history"`
	BloodPressure     string     `json:"blood_pressure,omitempty"`
	BloodSugar        string     `json:"blood_sugar,omitempty"`
	RegisteredDate    time.Time  `json:"registered_date"`
	LastScreeningDate *time.Time `json:"last_screening_date,omitempty"`
	RegisteredBy      uuid.UUID  `json:"registered_by"`
}

// Validate checks the fields required at registration.
func (p *Patient) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.Age <= 0 || p.Age > 130 {
		return fmt.Errorf("age must be between 1 and 130, got %d", p.Age)
	}
	if !validGenders[p.Gender] {
		return fmt.Errorf("gender must be Male, Female, or Other, got %q", p.Gender)
	}
	return nil
}
