package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// Ledger is the append-only record of booked consultations. Every list comes
// back in booking order.
type Ledger interface {
	// Append records c. It fails with ErrConflict when the doctor or the room
	// is already booked on c.Day, or the patient already has a consultation.
	Append(ctx context.Context, c *Consultation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error)
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*Consultation, error)
	ListAll(ctx context.Context) ([]*Consultation, error)
	ListByDate(ctx context.Context, day Date) ([]*Consultation, error)
	ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, day Date) ([]*Consultation, error)
	ListByRoomAndDate(ctx context.Context, roomID uuid.UUID, day Date) ([]*Consultation, error)
	// OccupancyOn returns the doctors and rooms booked on day.
	OccupancyOn(ctx context.Context, day Date) (*Occupancy, error)
}
