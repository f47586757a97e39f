package report

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ganeshcj/Optimedix/internal/domain/patient"
	"github.com/Ganeshcj/Optimedix/internal/domain/prescription"
	"github.com/Ganeshcj/Optimedix/internal/domain/screening"
	"github.com/Ganeshcj/Optimedix/internal/platform/ai"
	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
)

type mockResults map[uuid.UUID]*screening.ScreeningResult

func (m mockResults) Get(_ context.Context, id uuid.UUID) (*screening.ScreeningResult, error) {
	if r, ok := m[id]; ok {
		return r, nil
	}
	return nil, screening.ErrResultNotFound
}

type mockPatients map[uuid.UUID]*patient.Patient

func (m mockPatients) Get(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, patient.ErrPatientNotFound
}

type mockPrescriptions map[uuid.UUID]*prescription.Prescription

func (m mockPrescriptions) GetByResult(_ context.Context, resultID uuid.UUID) (*prescription.Prescription, error) {
	if p, ok := m[resultID]; ok {
		return p, nil
	}
	return nil, prescription.ErrPrescriptionNotFound
}

func seed() (*Service, *screening.ScreeningResult) {
	patientID := uuid.New()
	result := &screening.ScreeningResult{
		ID:        uuid.New(),
		PatientID: patientID,
		NurseID:   uuid.New(),
		Date:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		LeftEye: &ai.EyeAnalysis{
			Disease:         ai.DiseaseMildDR,
			Severity:        ai.SeverityMedium,
			RiskScore:       45,
			ConfidenceScore: 82,
			Abnormalities:   "scattered microaneurysms",
		},
		Status: screening.StatusReviewed,
	}
	p := &patient.Patient{
		ID:     patientID,
		Name:   "Ramesh Kumar",
		Age:    54,
		Gender: "Male",
		Phone:  "9876543210",
	}
	rx := &prescription.Prescription{
		ID:        uuid.New(),
		ResultID:  result.ID,
		DoctorID:  uuid.New(),
		Diagnosis: "Early NPDR",
		Medications: []prescription.Medication{
			{Name: "Metformin", Dosage: "500mg", Frequency: "twice daily"},
		},
	}
	svc := NewService(
		mockResults{result.ID: result},
		mockPatients{patientID: p},
		mockPrescriptions{result.ID: rx},
	)
	return svc, result
}

func TestBuild_NurseView(t *testing.T) {
	svc, result := seed()

	r, err := svc.Build(context.Background(), result.ID, auth.RoleNurse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.PatientName != "Ramesh Kumar" {
		t.Errorf("unexpected patient name: %s", r.PatientName)
	}
	if r.PatientLine != "54 / Male" {
		t.Errorf("unexpected patient line: %s", r.PatientLine)
	}
	if r.ScreenedOn != "14 Mar 2026" {
		t.Errorf("unexpected screened-on date: %s", r.ScreenedOn)
	}
	if len(r.Eyes) != 1 || r.Eyes[0].Label != "Left Eye" {
		t.Fatalf("expected one left-eye section, got %+v", r.Eyes)
	}
	if r.Eyes[0].RiskScore != "45%" {
		t.Errorf("unexpected risk score formatting: %s", r.Eyes[0].RiskScore)
	}
	if r.Prescription != nil {
		t.Error("nurse view must not include the prescription")
	}
}

func TestBuild_DoctorViewIncludesPrescription(t *testing.T) {
	svc, result := seed()

	r, err := svc.Build(context.Background(), result.ID, auth.RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Prescription == nil {
		t.Fatal("expected prescription section for doctor view")
	}
	if r.Prescription.Diagnosis != "Early NPDR" {
		t.Errorf("unexpected diagnosis: %s", r.Prescription.Diagnosis)
	}
}

func TestBuild_UnknownResult(t *testing.T) {
	svc, _ := seed()

	_, err := svc.Build(context.Background(), uuid.New(), auth.RoleNurse)
	if !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound, got %v", err)
	}
}

func TestBuild_MissingPatientIsNotFound(t *testing.T) {
	result := &screening.ScreeningResult{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		Status:    screening.StatusPending,
		Date:      time.Now(),
	}
	svc := NewService(mockResults{result.ID: result}, mockPatients{}, mockPrescriptions{})

	_, err := svc.Build(context.Background(), result.ID, auth.RoleAdmin)
	if !errors.Is(err, ErrReportNotFound) {
		t.Fatalf("expected ErrReportNotFound for missing patient, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	e := echo.New()
	svc, _ := seed()
	h := NewHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/x", nil)
	req = req.WithContext(auth.WithSession(req.Context(), auth.Session{
		UserID: uuid.New(), Role: auth.RoleNurse,
	}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("resultId")
	c.SetParamValues(uuid.NewString())

	err := h.Get(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
