package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	patients Repository
	log      zerolog.Logger
}

func NewService(patients Repository, log zerolog.Logger) *Service {
	return &Service{patients: patients, log: log}
}

// RegisterInput carries the nurse-supplied intake fields.
type RegisterInput struct {
	Name            string `json:"name"`
	Age             int    `json:"age"`
	Gender          string `json:"gender"`
	Phone           string `json:"phone"`
	DiabetesHistory bool   `json:"diabetes_history"`
	BloodPressure   string `json:"blood_pressure"`
	BloodSugar      string `json:"blood_sugar"`
}

// Register creates a patient record. registeredBy is the nurse performing
// the intake.
func (s *Service) Register(ctx context.Context, in RegisterInput, registeredBy uuid.UUID) (*Patient, error) {
	p := &Patient{
		ID:              uuid.New(),
		Name:            strings.TrimSpace(in.Name),
		Age:             in.Age,
		Gender:          in.Gender,
		Phone:           in.Phone,
		DiabetesHistory: in.DiabetesHistory,
		BloodPressure:   in.BloodPressure,
		BloodSugar:      in.BloodSugar,
		RegisteredDate:  time.Now().UTC(),
		RegisteredBy:    registeredBy,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("patient_id", p.ID.String()).Msg("patient registered")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

// List returns patients in registration order, optionally filtered by a
// case-insensitive name substring.
func (s *Service) List(ctx context.Context, nameFilter string) ([]*Patient, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, err
	}
	if nameFilter == "" {
		return patients, nil
	}
	needle := strings.ToLower(nameFilter)
	var out []*Patient
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// TouchLastScreening records that a screening was performed for the patient.
func (s *Service) TouchLastScreening(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.patients.TouchLastScreening(ctx, id, at)
}
