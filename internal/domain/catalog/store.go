package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a catalog entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNotInitialized is returned by a catalog that was never seeded.
	ErrNotInitialized = errors.New("catalog not initialized")
	// ErrInvalid is returned for malformed catalog input.
	ErrInvalid = errors.New("invalid catalog data")
)

// Store exposes the fixed inventory the scheduler reads. Collections come back
// in seed order and are copies; callers may not mutate the inventory.
type Store interface {
	ListMachines(ctx context.Context) ([]Machine, error)
	ListRooms(ctx context.Context) ([]Room, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	GetMachine(ctx context.Context, id uuid.UUID) (*Machine, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*Room, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error)
}

// Inventory is an immutable snapshot of machines, rooms and doctors. It is
// built once at startup and shared by every request without locking.
type Inventory struct {
	machines []Machine
	rooms    []Room
	doctors  []Doctor
	images   []Image

	machineByID map[uuid.UUID]int
	roomByID    map[uuid.UUID]int
	doctorByID  map[uuid.UUID]int
}

var _ Store = (*Inventory)(nil)

// NewInventory validates the collections and builds the lookup indexes.
// images are the seed images doctors point at; they are only kept so the
// inventory can be persisted.
func NewInventory(machines []Machine, rooms []Room, doctors []Doctor, images []Image) (*Inventory, error) {
	inv := &Inventory{
		machines:    append([]Machine(nil), machines...),
		rooms:       append([]Room(nil), rooms...),
		images:      append([]Image(nil), images...),
		machineByID: make(map[uuid.UUID]int, len(machines)),
		roomByID:    make(map[uuid.UUID]int, len(rooms)),
		doctorByID:  make(map[uuid.UUID]int, len(doctors)),
	}
	for _, d := range doctors {
		inv.doctors = append(inv.doctors, d.clone())
	}

	for i, m := range inv.machines {
		if !m.Capability.Valid() {
			return nil, fmt.Errorf("%w: machine %s has capability %q", ErrInvalid, m.ID, m.Capability)
		}
		if _, dup := inv.machineByID[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate machine id %s", ErrInvalid, m.ID)
		}
		inv.machineByID[m.ID] = i
	}
	for i, r := range inv.rooms {
		if r.TreatmentMachineID != nil {
			if _, ok := inv.machineByID[*r.TreatmentMachineID]; !ok {
				return nil, fmt.Errorf("%w: room %s references unknown machine %s", ErrInvalid, r.ID, *r.TreatmentMachineID)
			}
		}
		if _, dup := inv.roomByID[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate room id %s", ErrInvalid, r.ID)
		}
		inv.roomByID[r.ID] = i
	}
	for i, d := range inv.doctors {
		if len(d.Roles) == 0 {
			return nil, fmt.Errorf("%w: doctor %s has no roles", ErrInvalid, d.ID)
		}
		for _, role := range d.Roles {
			if !role.Valid() {
				return nil, fmt.Errorf("%w: doctor %s has role %q", ErrInvalid, d.ID, role)
			}
		}
		if _, dup := inv.doctorByID[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate doctor id %s", ErrInvalid, d.ID)
		}
		inv.doctorByID[d.ID] = i
	}
	return inv, nil
}

// ListMachines implements Store.
func (inv *Inventory) ListMachines(_ context.Context) ([]Machine, error) {
	if inv == nil {
		return nil, ErrNotInitialized
	}
	return append([]Machine(nil), inv.machines...), nil
}

// ListRooms implements Store.
func (inv *Inventory) ListRooms(_ context.Context) ([]Room, error) {
	if inv == nil {
		return nil, ErrNotInitialized
	}
	return append([]Room(nil), inv.rooms...), nil
}

// ListDoctors implements Store.
func (inv *Inventory) ListDoctors(_ context.Context) ([]Doctor, error) {
	if inv == nil {
		return nil, ErrNotInitialized
	}
	out := make([]Doctor, 0, len(inv.doctors))
	for _, d := range inv.doctors {
		out = append(out, d.clone())
	}
	return out, nil
}

// GetMachine implements Store.
func (inv *Inventory) GetMachine(_ context.Context, id uuid.UUID) (*Machine, error) {
	if inv == nil {
		return nil, ErrNotInitialized
	}
	i, ok := inv.machineByID[id]
	if !ok {
		return nil, fmt.Errorf("machine %s: %w", id, ErrNotFound)
	}
	m := inv.machines[i]
	return &m, nil
}

// GetRoom implements Store.
func (inv *Inventory) GetRoom(_ context.Context, id uuid.UUID) (*Room, error) {
	if inv == nil {
		return nil, ErrNotInitialized
	}
	i, ok := inv.roomByID[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, ErrNotFound)
	}
	r := inv.rooms[i]
	return &r, nil
}

// GetDoctor implements Store.
func (inv *Inventory) GetDoctor(_ context.Context, id uuid.UUID) (*Doctor, error) {
	if inv == nil {
		return nil, ErrNotInitialized
	}
	i, ok := inv.doctorByID[id]
	if !ok {
		return nil, fmt.Errorf("doctor %s: %w", id, ErrNotFound)
	}
	d := inv.doctors[i].clone()
	return &d, nil
}

// Images returns the seed images referenced by the inventory's doctors.
func (inv *Inventory) Images() []Image {
	if inv == nil {
		return nil
	}
	return append([]Image(nil), inv.images...)
}
