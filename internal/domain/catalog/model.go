package catalog

import (
	"github.com/google/uuid"
)

// Role is a qualification a doctor holds.
type Role string

const (
	RoleOncologist          Role = "oncologist"
	RoleGeneralPractitioner Role = "generalpractitioner"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOncologist, RoleGeneralPractitioner:
		return true
	}
	return false
}

// Capability is the treatment level a machine offers.
type Capability string

const (
	CapabilityAdvanced Capability = "advanced"
	CapabilitySimple   Capability = "simple"
)

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityAdvanced, CapabilitySimple:
		return true
	}
	return false
}

// Machine is a treatment machine installed in a room.
type Machine struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Capability Capability `json:"capability"`
}

// Room is a treatment room. TreatmentMachineID is nil for consult-only rooms.
type Room struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	TreatmentMachineID *uuid.UUID `json:"treatmentMachineId"`
}

// HasMachine reports whether a machine is installed in the room.
func (r Room) HasMachine() bool { return r.TreatmentMachineID != nil }

// Doctor is a member of staff who can be booked for consultations.
type Doctor struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	Roles   []Role     `json:"roles"`
	ImageID *uuid.UUID `json:"imageId"`
}

// HasRole reports whether the doctor holds role.
func (d Doctor) HasRole(role Role) bool {
	for _, r := range d.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (d Doctor) clone() Doctor {
	d.Roles = append([]Role(nil), d.Roles...)
	return d
}

// Image is an opaque picture attachment referenced by patients and doctors.
type Image struct {
	ID  uuid.UUID `json:"id"`
	URL string    `json:"url"`
}
