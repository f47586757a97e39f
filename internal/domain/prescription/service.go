package prescription

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	prescriptions Repository
	log           zerolog.Logger
}

func NewService(prescriptions Repository, log zerolog.Logger) *Service {
	return &Service{prescriptions: prescriptions, log: log}
}

// Input carries the doctor-submitted prescription body.
type Input struct {
	Diagnosis    string       `json:"diagnosis"`
	Medications  []Medication `json:"medications"`
	FollowUpDate *time.Time   `json:"follow_up_date"`
	Notes        string       `json:"notes"`
}

// Create issues a prescription for a screening result.
func (s *Service) Create(ctx context.Context, resultID, doctorID uuid.UUID, in Input) (*Prescription, error) {
	p := &Prescription{
		ID:           uuid.New(),
		ResultID:     resultID,
		DoctorID:     doctorID,
		Diagnosis:    in.Diagnosis,
		Medications:  in.Medications,
		FollowUpDate: in.FollowUpDate,
		Notes:        in.Notes,
		CreatedAt:    time.Now().UTC(),
	}
	if p.Medications == nil {
		p.Medications = []Medication{}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("prescription_id", p.ID.String()).
		Str("result_id", resultID.String()).
		Int("medications", len(p.Medications)).
		Msg("prescription issued")
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

func (s *Service) GetByResult(ctx context.Context, resultID uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByResultID(ctx, resultID)
}

func (s *Service) List(ctx context.Context) ([]*Prescription, error) {
	return s.prescriptions.List(ctx)
}
