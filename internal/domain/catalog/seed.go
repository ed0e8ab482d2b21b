package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// SeedConfig sizes the inventory generated at startup.
type SeedConfig struct {
	AdvancedMachines     int `mapstructure:"SEED_ADVANCED_MACHINES"`
	SimpleMachines       int `mapstructure:"SEED_SIMPLE_MACHINES"`
	Rooms                int `mapstructure:"SEED_ROOMS"`
	Oncologists          int `mapstructure:"SEED_ONCOLOGISTS"`
	GeneralPractitioners int `mapstructure:"SEED_GENERAL_PRACTITIONERS"`
}

// DefaultSeedConfig returns the stock hospital: one advanced and one simple
// machine, three rooms, two oncologists and one general practitioner.
func DefaultSeedConfig() SeedConfig {
	return SeedConfig{
		AdvancedMachines:     1,
		SimpleMachines:       1,
		Rooms:                3,
		Oncologists:          2,
		GeneralPractitioners: 1,
	}
}

// Validate checks the counts are consistent.
func (c SeedConfig) Validate() error {
	for name, n := range map[string]int{
		"advanced machines":     c.AdvancedMachines,
		"simple machines":       c.SimpleMachines,
		"rooms":                 c.Rooms,
		"oncologists":           c.Oncologists,
		"general practitioners": c.GeneralPractitioners,
	} {
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalid, name)
		}
	}
	if c.AdvancedMachines+c.SimpleMachines > c.Rooms {
		return fmt.Errorf("%w: %d machines do not fit in %d rooms", ErrInvalid, c.AdvancedMachines+c.SimpleMachines, c.Rooms)
	}
	return nil
}

// Seed generates an inventory. Advanced machines go into the first rooms,
// simple machines into the following ones, and the remaining rooms are left
// without a machine. Oncologists are listed before general practitioners and
// every doctor gets a portrait image.
func Seed(cfg SeedConfig) (*Inventory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var machines []Machine
	for i := 1; i <= cfg.AdvancedMachines; i++ {
		machines = append(machines, Machine{ID: uuid.New(), Name: fmt.Sprintf("Advanced machine %d", i), Capability: CapabilityAdvanced})
	}
	for i := 1; i <= cfg.SimpleMachines; i++ {
		machines = append(machines, Machine{ID: uuid.New(), Name: fmt.Sprintf("Simple machine %d", i), Capability: CapabilitySimple})
	}

	rooms := make([]Room, 0, cfg.Rooms)
	for i := 0; i < cfg.Rooms; i++ {
		room := Room{ID: uuid.New(), Name: fmt.Sprintf("Room %d", i+1)}
		if i < len(machines) {
			id := machines[i].ID
			room.TreatmentMachineID = &id
		}
		rooms = append(rooms, room)
	}

	var doctors []Doctor
	var images []Image
	addDoctor := func(name string, role Role) {
		img := Image{ID: uuid.New(), URL: fmt.Sprintf("/static/doctors/doctor-%d.png", len(doctors)+1)}
		images = append(images, img)
		doctors = append(doctors, Doctor{ID: uuid.New(), Name: name, Roles: []Role{role}, ImageID: &img.ID})
	}
	for i := 1; i <= cfg.Oncologists; i++ {
		addDoctor(fmt.Sprintf("Oncologist %d", i), RoleOncologist)
	}
	for i := 1; i <= cfg.GeneralPractitioners; i++ {
		addDoctor(fmt.Sprintf("General practitioner %d", i), RoleGeneralPractitioner)
	}

	return NewInventory(machines, rooms, doctors, images)
}
