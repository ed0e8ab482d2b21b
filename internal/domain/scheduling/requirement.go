package scheduling

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/raycare/hospital/internal/domain/catalog"
)

// MachineRequirement is the equipment a consultation room must provide.
type MachineRequirement int

const (
	// MachineNone asks for a room without a machine.
	MachineNone MachineRequirement = iota
	// MachineAny asks for a room with a machine of any capability.
	MachineAny
	// MachineAdvanced asks for a room with an advanced machine.
	MachineAdvanced
)

func (m MachineRequirement) String() string {
	switch m {
	case MachineNone:
		return "no machine"
	case MachineAny:
		return "any machine"
	case MachineAdvanced:
		return "advanced machine"
	}
	return fmt.Sprintf("MachineRequirement(%d)", int(m))
}

// Requirement is what a condition demands of the doctor and the room.
type Requirement struct {
	Role    catalog.Role
	Machine MachineRequirement
}

var requirements = map[Condition]Requirement{
	ConditionBreastCancer:      {Role: catalog.RoleOncologist, Machine: MachineAny},
	ConditionHeadAndNeckCancer: {Role: catalog.RoleOncologist, Machine: MachineAdvanced},
	ConditionFlu:               {Role: catalog.RoleGeneralPractitioner, Machine: MachineNone},
}

// RequirementFor returns the doctor role and room equipment for c.
func RequirementFor(c Condition) (Requirement, error) {
	r, ok := requirements[c]
	if !ok {
		return Requirement{}, fmt.Errorf("%w: %q", ErrUnknownCondition, c)
	}
	return r, nil
}

// Accepts reports whether a room holding machine (nil for none) meets r.
func (r Requirement) Accepts(machine *catalog.Machine) bool {
	switch r.Machine {
	case MachineNone:
		return machine == nil
	case MachineAny:
		return machine != nil
	case MachineAdvanced:
		return machine != nil && machine.Capability == catalog.CapabilityAdvanced
	}
	return false
}

// Doctors filters doctors to those holding the required role, keeping order.
func (r Requirement) Doctors(doctors []catalog.Doctor) []catalog.Doctor {
	var out []catalog.Doctor
	for _, d := range doctors {
		if d.HasRole(r.Role) {
			out = append(out, d)
		}
	}
	return out
}

// Rooms filters rooms to those whose machine meets r, keeping order. A
// requirement for no machine falls back to every room when the hospital has
// no machine-free room.
func (r Requirement) Rooms(rooms []catalog.Room, machines map[uuid.UUID]catalog.Machine) []catalog.Room {
	var out []catalog.Room
	for _, room := range rooms {
		var m *catalog.Machine
		if room.TreatmentMachineID != nil {
			if found, ok := machines[*room.TreatmentMachineID]; ok {
				m = &found
			}
		}
		if r.Accepts(m) {
			out = append(out, room)
		}
	}
	if len(out) == 0 && r.Machine == MachineNone {
		return append([]catalog.Room(nil), rooms...)
	}
	return out
}
