package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/raycare/hospital/internal/domain/catalog"
	"github.com/raycare/hospital/internal/domain/scheduling"
)

var (
	// ErrInvalid is returned when registration input fails validation.
	ErrInvalid = errors.New("invalid patient")
	// ErrNotFound is returned when a patient does not exist.
	ErrNotFound = errors.New("not found")
)

const maxNameLength = 200

// Transactor runs fn atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Scheduler books a consultation for a newly created patient.
type Scheduler interface {
	Schedule(ctx context.Context, req scheduling.Request) (*scheduling.Consultation, error)
}

// ConsultationFinder looks up a patient's booked consultation.
type ConsultationFinder interface {
	ConsultationForPatient(ctx context.Context, patientID uuid.UUID) (*scheduling.Consultation, error)
}

// ImageFinder resolves image references.
type ImageFinder interface {
	GetImage(ctx context.Context, id uuid.UUID) (*catalog.Image, error)
}

type Service struct {
	patients      Repository
	scheduler     Scheduler
	consultations ConsultationFinder
	images        ImageFinder
	tx            Transactor
	logger        zerolog.Logger
	now           func() time.Time
}

func NewService(patients Repository, scheduler Scheduler, consultations ConsultationFinder, images ImageFinder, tx Transactor, logger zerolog.Logger) *Service {
	return &Service{
		patients:      patients,
		scheduler:     scheduler,
		consultations: consultations,
		images:        images,
		tx:            tx,
		logger:        logger.With().Str("component", "patient").Logger(),
		now:           time.Now,
	}
}

// Register creates a patient and books its consultation in one transaction.
// When no consultation can be booked the patient is not created.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Registration, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if len(name) > maxNameLength {
		return nil, fmt.Errorf("%w: name must be at most %d characters", ErrInvalid, maxNameLength)
	}
	condition, err := scheduling.ParseCondition(req.Condition)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if req.ImageID == uuid.Nil {
		return nil, fmt.Errorf("%w: imageId is required", ErrInvalid)
	}
	if _, err := s.images.GetImage(ctx, req.ImageID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, fmt.Errorf("%w: image %s does not exist", ErrInvalid, req.ImageID)
		}
		return nil, err
	}

	p := &Patient{
		ID:           uuid.New(),
		Name:         name,
		Condition:    condition,
		ImageID:      req.ImageID,
		RegisteredAt: s.now().Truncate(time.Microsecond),
	}

	var reg *Registration
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.patients.Create(ctx, p); err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		cons, err := s.scheduler.Schedule(ctx, scheduling.Request{
			PatientID:    p.ID,
			Condition:    p.Condition,
			RegisteredAt: p.RegisteredAt,
		})
		if err != nil {
			return err
		}
		reg = &Registration{Patient: *p, Consultation: cons}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("patient_id", p.ID.String()).
		Str("condition", string(p.Condition)).
		Str("consultation_id", reg.Consultation.ID.String()).
		Time("consultation_date", reg.Consultation.ConsultationDate).
		Msg("patient registered")
	return reg, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

// ConsultationFor returns the consultation booked at the patient's registration.
func (s *Service) ConsultationFor(ctx context.Context, id uuid.UUID) (*scheduling.Consultation, error) {
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.consultations.ConsultationForPatient(ctx, id)
}
