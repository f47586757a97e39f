// Package dashboard aggregates the shared collections into role-scoped
// statistics. Every view is a filter over the same records; nothing here
// writes.
package dashboard

import (
	"context"

	"github.com/samber/lo"

	"github.com/Ganeshcj/Optimedix/internal/domain/patient"
	"github.com/Ganeshcj/Optimedix/internal/domain/screening"
	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

const recentLimit = 5

// Stats is the role-scoped dashboard payload.
type Stats struct {
	Role            string                       `json:"role"`
	TotalScreenings int                          `json:"total_screenings"`
	PositiveCases   int                          `json:"positive_cases"`
	PendingCount    int                          `json:"pending_count"`
	ReferredCount   int                          `json:"referred_count"`
	ReviewedCount   int                          `json:"reviewed_count"`
	RecentPatients  []*patient.Patient           `json:"recent_patients,omitempty"`
	ReferralQueue   []*screening.ScreeningResult `json:"referral_queue,omitempty"`
}

// ResultSource lists all screening results.
type ResultSource interface {
	List(ctx context.Context) ([]*screening.ScreeningResult, error)
}

// PatientSource lists patients, optionally filtered by name.
type PatientSource interface {
	List(ctx context.Context, nameFilter string) ([]*patient.Patient, error)
}

type Service struct {
	results  ResultSource
	patients PatientSource
}

func NewService(results ResultSource, patients PatientSource) *Service {
	return &Service{results: results, patients: patients}
}

// Build computes the dashboard for a session. NURSE sees own screenings,
// DOCTOR the referred queue, PATIENT own records, ADMIN everything.
func (s *Service) Build(ctx context.Context, sess auth.Session) (*Stats, error) {
	all, err := s.results.List(ctx)
	if err != nil {
		return nil, err
	}

	visible := scopeResults(all, sess)

	stats := &Stats{
		Role:            sess.Role,
		TotalScreenings: len(visible),
		PositiveCases: lo.CountBy(visible, func(r *screening.ScreeningResult) bool {
			return r.Positive()
		}),
		PendingCount:  countStatus(visible, screening.StatusPending),
		ReferredCount: countStatus(visible, screening.StatusReferred),
		ReviewedCount: countStatus(visible, screening.StatusReviewed),
	}

	switch sess.Role {
	case auth.RoleDoctor:
		stats.ReferralQueue = lo.Filter(visible, func(r *screening.ScreeningResult, _ int) bool {
			return r.Status == screening.StatusReferred
		})
	case auth.RoleNurse, auth.RoleAdmin:
		patients, err := s.patients.List(ctx, "")
		if err != nil {
			return nil, err
		}
		if len(patients) > recentLimit {
			patients = patients[len(patients)-recentLimit:]
		}
		stats.RecentPatients = lo.Reverse(patients)
	}

	return stats, nil
}

func scopeResults(all []*screening.ScreeningResult, sess auth.Session) []*screening.ScreeningResult {
	switch sess.Role {
	case auth.RoleNurse:
		return lo.Filter(all, func(r *screening.ScreeningResult, _ int) bool {
			return r.NurseID == sess.UserID
		})
	case auth.RolePatient:
		return lo.Filter(all, func(r *screening.ScreeningResult, _ int) bool {
			return r.PatientID == sess.UserID
		})
	default:
		// DOCTOR and ADMIN see every result.
		return all
	}
}

func countStatus(results []*screening.ScreeningResult, status string) int {
	return lo.CountBy(results, func(r *screening.ScreeningResult) bool {
		return r.Status == status
	})
}
