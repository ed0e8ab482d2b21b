package scheduling

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidFilter is returned for an unsupported combination of list filters.
var ErrInvalidFilter = errors.New("invalid filter")

// Filter narrows a consultation listing. DoctorID and RoomID need Day.
type Filter struct {
	DoctorID *uuid.UUID
	RoomID   *uuid.UUID
	Day      *Date
}

type Service struct {
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

func (s *Service) GetConsultation(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.ledger.GetByID(ctx, id)
}

func (s *Service) ConsultationForPatient(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	return s.ledger.GetByPatient(ctx, patientID)
}

func (s *Service) ListConsultations(ctx context.Context, f Filter) ([]*Consultation, error) {
	switch {
	case f.DoctorID != nil && f.RoomID != nil:
		return nil, errors.Join(ErrInvalidFilter, errors.New("doctorId and roomId are mutually exclusive"))
	case (f.DoctorID != nil || f.RoomID != nil) && f.Day == nil:
		return nil, errors.Join(ErrInvalidFilter, errors.New("date is required with doctorId or roomId"))
	case f.DoctorID != nil:
		return s.ledger.ListByDoctorAndDate(ctx, *f.DoctorID, *f.Day)
	case f.RoomID != nil:
		return s.ledger.ListByRoomAndDate(ctx, *f.RoomID, *f.Day)
	case f.Day != nil:
		return s.ledger.ListByDate(ctx, *f.Day)
	}
	return s.ledger.ListAll(ctx)
}
