package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/raycare/hospital/internal/domain/scheduling"
)

// Patient is a registered person awaiting a consultation.
type Patient struct {
	ID        uuid.UUID            `json:"id"`
	Name      string               `json:"name"`
	Condition scheduling.Condition `json:"condition"`
	ImageID   uuid.UUID            `json:"imageId"`

	RegisteredAt time.Time `json:"-"`
}

// RegisterRequest is the input of a registration.
type RegisterRequest struct {
	Name      string    `json:"name" validate:"required,max=200"`
	Condition string    `json:"condition" validate:"required"`
	ImageID   uuid.UUID `json:"imageId" validate:"required"`
}

// Registration is a created patient together with its booked consultation.
type Registration struct {
	Patient
	Consultation *scheduling.Consultation `json:"consultation"`
}
