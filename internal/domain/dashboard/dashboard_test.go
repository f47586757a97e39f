package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Ganeshcj/Optimedix/internal/domain/patient"
	"github.com/Ganeshcj/Optimedix/internal/domain/screening"
	"github.com/Ganeshcj/Optimedix/internal/platform/ai"
	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

type mockResults []*screening.ScreeningResult

func (m mockResults) List(context.Context) ([]*screening.ScreeningResult, error) {
	return m, nil
}

type mockPatients []*patient.Patient

func (m mockPatients) List(context.Context, string) ([]*patient.Patient, error) {
	return m, nil
}

func result(nurseID, patientID uuid.UUID, status string, positive bool) *screening.ScreeningResult {
	disease := ai.DiseaseNormal
	if positive {
		disease = ai.DiseaseGlaucoma
	}
	return &screening.ScreeningResult{
		ID:        uuid.New(),
		NurseID:   nurseID,
		PatientID: patientID,
		Date:      time.Now(),
		Status:    status,
		LeftEye: &ai.EyeAnalysis{
			Disease: disease, Severity: ai.SeverityLow,
			RiskScore: 10, ConfidenceScore: 90, Abnormalities: "none",
		},
	}
}

func TestBuild_NurseSeesOwnScreeningsOnly(t *testing.T) {
	nurse := uuid.New()
	other := uuid.New()
	results := mockResults{
		result(nurse, uuid.New(), screening.StatusPending, true),
		result(nurse, uuid.New(), screening.StatusReferred, false),
		result(other, uuid.New(), screening.StatusPending, true),
	}
	svc := NewService(results, mockPatients{})

	stats, err := svc.Build(context.Background(), auth.Session{UserID: nurse, Role: auth.RoleNurse})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalScreenings != 2 {
		t.Errorf("expected 2 screenings, got %d", stats.TotalScreenings)
	}
	if stats.PositiveCases != 1 {
		t.Errorf("expected 1 positive case, got %d", stats.PositiveCases)
	}
	if stats.PendingCount != 1 || stats.ReferredCount != 1 {
		t.Errorf("unexpected status counts: %+v", stats)
	}
}

func TestBuild_DoctorGetsReferralQueue(t *testing.T) {
	referred := result(uuid.New(), uuid.New(), screening.StatusReferred, true)
	results := mockResults{
		referred,
		result(uuid.New(), uuid.New(), screening.StatusPending, false),
		result(uuid.New(), uuid.New(), screening.StatusReviewed, true),
	}
	svc := NewService(results, mockPatients{})

	stats, err := svc.Build(context.Background(), auth.Session{UserID: uuid.New(), Role: auth.RoleDoctor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalScreenings != 3 {
		t.Errorf("expected doctor to see all 3 results, got %d", stats.TotalScreenings)
	}
	if len(stats.ReferralQueue) != 1 || stats.ReferralQueue[0].ID != referred.ID {
		t.Errorf("expected referral queue with the referred result, got %+v", stats.ReferralQueue)
	}
}

func TestBuild_PatientSeesOwnRecords(t *testing.T) {
	me := uuid.New()
	results := mockResults{
		result(uuid.New(), me, screening.StatusReviewed, true),
		result(uuid.New(), uuid.New(), screening.StatusPending, true),
	}
	svc := NewService(results, mockPatients{})

	stats, err := svc.Build(context.Background(), auth.Session{UserID: me, Role: auth.RolePatient})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalScreenings != 1 {
		t.Errorf("expected 1 own record, got %d", stats.TotalScreenings)
	}
	if stats.RecentPatients != nil {
		t.Error("patient view must not list other patients")
	}
}

func TestBuild_AdminRecentPatients(t *testing.T) {
	var patients mockPatients
	for i := 0; i < 7; i++ {
		patients = append(patients, &patient.Patient{ID: uuid.New()})
	}
	svc := NewService(mockResults{}, patients)

	stats, err := svc.Build(context.Background(), auth.Session{UserID: uuid.New(), Role: auth.RoleAdmin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.RecentPatients) != recentLimit {
		t.Fatalf("expected %d recent patients, got %d", recentLimit, len(stats.RecentPatients))
	}
	// Most recently registered first.
	if stats.RecentPatients[0].ID != patients[6].ID {
		t.Error("expected newest patient first")
	}
}
