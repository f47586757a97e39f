package screening

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Ganeshcj/Optimedix/internal/domain/prescription"
	"github.com/Ganeshcj/Optimedix/internal/platform/ai"
	"github.com/Ganeshcj/Optimedix/internal/platform/auth"
	"github.com/Ganeshcj/Optimedix/internal/platform/blobstore"
	"github.com/Ganeshcj/Optimedix/internal/platform/metrics"
)

// Analyzer runs one bilateral analysis call.
type Analyzer interface {
	Analyze(ctx context.Context, req ai.Request) (*ai.Result, error)
}

// PatientDirectory is the slice of the patient registry this service needs.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	TouchLastScreening(ctx context.Context, id uuid.UUID, at time.Time) error
}

// PrescriptionCreator issues the prescription a doctor submits at review.
type PrescriptionCreator interface {
	Create(ctx context.Context, resultID, doctorID uuid.UUID, in prescription.Input) (*prescription.Prescription, error)
}

type Service struct {
	results       Repository
	analyzer      Analyzer
	patients      PatientDirectory
	prescriptions PrescriptionCreator
	images        blobstore.ImageStore
	metrics       *metrics.Collector
	log           zerolog.Logger

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

// NewService wires the screening workflow. images and collector may be nil;
// image persistence and instrumentation are then skipped.
func NewService(
	results Repository,
	analyzer Analyzer,
	patients PatientDirectory,
	prescriptions PrescriptionCreator,
	images blobstore.ImageStore,
	collector *metrics.Collector,
	log zerolog.Logger,
) *Service {
	return &Service{
		results:       results,
		analyzer:      analyzer,
		patients:      patients,
		prescriptions: prescriptions,
		images:        images,
		metrics:       collector,
		log:           log,
		inFlight:      make(map[uuid.UUID]struct{}),
	}
}

// ScreenInput carries the captured images for one screening run.
type ScreenInput struct {
	Left  *ai.Image
	Right *ai.Image
}

// Screen runs one analysis for a patient and persists a PENDING result.
// A second call for the same patient while one is in flight is rejected;
// the guard is advisory and single-process.
func (s *Service) Screen(ctx context.Context, patientID, nurseID uuid.UUID, in ScreenInput) (*ScreeningResult, error) {
	if in.Left == nil && in.Right == nil {
		return nil, ai.ErrNoImages
	}

	ok, err := s.patients.Exists(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPatientNotFound
	}

	s.mu.Lock()
	if _, busy := s.inFlight[patientID]; busy {
		s.mu.Unlock()
		return nil, ErrAnalysisInFlight
	}
	s.inFlight[patientID] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, patientID)
		s.mu.Unlock()
	}()

	start := time.Now()
	analysis, err := s.analyzer.Analyze(ctx, ai.Request{Left: in.Left, Right: in.Right})
	if s.metrics != nil {
		s.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if s.metrics != nil {
			var ae *ai.AnalysisError
			reason := "other"
			if errors.As(err, &ae) {
				reason = ae.Reason
			}
			s.metrics.AnalysisFailures.WithLabelValues(reason).Inc()
		}
		return nil, err
	}

	now := time.Now().UTC()
	result := &ScreeningResult{
		ID:        uuid.New(),
		PatientID: patientID,
		NurseID:   nurseID,
		Date:      now,
		LeftEye:   analysis.Left,
		RightEye:  analysis.Right,
		Status:    StatusPending,
	}
	result.LeftImageID = s.storeImage(ctx, patientID, nurseID, blobstore.EyeLeft, in.Left)
	result.RightImageID = s.storeImage(ctx, patientID, nurseID, blobstore.EyeRight, in.Right)

	if err := s.results.Create(ctx, result); err != nil {
		return nil, err
	}
	if err := s.patients.TouchLastScreening(ctx, patientID, now); err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID.String()).Msg("touch last screening date failed")
	}

	if s.metrics != nil {
		if worst := result.Worst(); worst != nil {
			s.metrics.ScreeningsTotal.WithLabelValues(string(worst.Disease)).Inc()
		}
	}
	s.log.Info().
		Str("result_id", result.ID.String()).
		Str("patient_id", patientID.String()).
		Bool("positive", result.Positive()).
		Msg("screening completed")
	return result, nil
}

func (s *Service) storeImage(ctx context.Context, patientID, nurseID uuid.UUID, eye string, img *ai.Image) string {
	if s.images == nil || img == nil {
		return ""
	}
	meta, err := s.images.Upload(ctx, blobstore.ImageMetadata{
		ContentType: img.MIMEType,
		PatientID:   patientID.String(),
		Eye:         eye,
		CreatedBy:   nurseID.String(),
	}, bytes.NewReader(img.Data))
	if err != nil {
		// The analysis already ran; a failed image save degrades the record
		// but does not void the result.
		s.log.Warn().Err(err).Str("eye", eye).Msg("fundus image save failed")
		return ""
	}
	return meta.ID
}

// Refer escalates a PENDING result to the doctor queue.
func (s *Service) Refer(ctx context.Context, resultID uuid.UUID, sess auth.Session) (*ScreeningResult, error) {
	return s.transition(ctx, resultID, sess, ActionRefer, nil)
}

// Review closes a REFERRED result. The doctor's prescription input is
// required; exactly one prescription is created as a side effect.
func (s *Service) Review(ctx context.Context, resultID uuid.UUID, sess auth.Session, in prescription.Input) (*ScreeningResult, error) {
	return s.transition(ctx, resultID, sess, ActionReview, &in)
}

func (s *Service) transition(ctx context.Context, resultID uuid.UUID, sess auth.Session, action string, rx *prescription.Input) (*ScreeningResult, error) {
	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		return nil, err
	}

	next, err := Transition(result.Status, sess.Role, action)
	if err != nil {
		return nil, err
	}

	if action == ActionReview {
		if _, err := s.prescriptions.Create(ctx, resultID, sess.UserID, *rx); err != nil {
			return nil, err
		}
		if s.metrics != nil {
			s.metrics.PrescriptionsIssued.Inc()
		}
	}

	if err := s.results.SetStatus(ctx, resultID, result.Status, next); err != nil {
		return nil, err
	}
	result.Status = next

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(next).Inc()
	}
	s.log.Info().
		Str("result_id", resultID.String()).
		Str("action", action).
		Str("status", next).
		Msg("screening status moved")
	return result, nil
}

// Get returns a screening result by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ScreeningResult, error) {
	return s.results.GetByID(ctx, id)
}

// List returns all screening results in creation order.
func (s *Service) List(ctx context.Context) ([]*ScreeningResult, error) {
	return s.results.List(ctx)
}
