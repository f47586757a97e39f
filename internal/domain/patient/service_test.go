package patient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ganeshcj/Optimedix/internal/platform/store"
)

func newTestService() *Service {
	repo := NewStoreRepo(store.New(store.NewMemory()))
	return NewService(repo, zerolog.Nop())
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:            "Ramesh Kumar",
		Age:             54,
		Gender:          "Male",
		Phone:           "9876543210",
		DiabetesHistory: true,
		BloodPressure:   "140/90",
		BloodSugar:      "180 mg/dL",
	}
}

func TestRegister(t *testing.T) {
	svc := newTestService()
	nurse := uuid.New()

	p, err := svc.Register(context.Background(), validInput(), nurse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected populated id")
	}
	if p.RegisteredDate.IsZero() {
		t.Error("expected registered date")
	}
	if p.LastScreeningDate != nil {
		t.Error("expected no last screening date at registration")
	}
	if p.RegisteredBy != nurse {
		t.Error("expected registering nurse to be recorded")
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService()
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"empty name", func(in *RegisterInput) { in.Name = "  " }},
		{"zero age", func(in *RegisterInput) { in.Age = 0 }},
		{"absurd age", func(in *RegisterInput) { in.Age = 200 }},
		{"bad gender", func(in *RegisterInput) { in.Gender = "unknown" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			if _, err := svc.Register(context.Background(), in, uuid.New()); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestList_NameFilter(t *testing.T) {
	svc := newTestService()
	nurse := uuid.New()

	for _, name := range []string{"Ramesh Kumar", "Sita Devi", "Ram Prasad"} {
		in := validInput()
		in.Name = name
		if _, err := svc.Register(context.Background(), in, nurse); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	matched, err := svc.List(context.Background(), "ram")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches for 'ram', got %d", len(matched))
	}

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 patients, got %d", len(all))
	}
	if all[0].Name != "Ramesh Kumar" {
		t.Error("expected registration order preserved")
	}
}

func TestTouchLastScreening(t *testing.T) {
	svc := newTestService()
	p, err := svc.Register(context.Background(), validInput(), uuid.New())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := svc.TouchLastScreening(context.Background(), p.ID, at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LastScreeningDate == nil || !got.LastScreeningDate.Equal(at) {
		t.Errorf("expected last screening date %v, got %v", at, got.LastScreeningDate)
	}
}

func TestTouchLastScreening_UnknownPatient(t *testing.T) {
	svc := newTestService()
	err := svc.TouchLastScreening(context.Background(), uuid.New(), time.Now())
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}
