package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/raycare/hospital/internal/platform/memdb"
)

type dayIndex struct {
	items   []*Consultation
	doctors map[uuid.UUID]*Consultation
	rooms   map[uuid.UUID]*Consultation
}

type ledgerMem struct {
	db        *memdb.DB
	items     []*Consultation
	byID      map[uuid.UUID]*Consultation
	byPatient map[uuid.UUID]*Consultation
	byDay     map[Date]*dayIndex
}

// NewLedgerMem creates an in-memory ledger guarded by db.
func NewLedgerMem(db *memdb.DB) Ledger {
	return &ledgerMem{
		db:        db,
		byID:      make(map[uuid.UUID]*Consultation),
		byPatient: make(map[uuid.UUID]*Consultation),
		byDay:     make(map[Date]*dayIndex),
	}
}

func (l *ledgerMem) Append(ctx context.Context, c *Consultation) error {
	stored := *c
	var err error
	l.db.Write(ctx, func() func() {
		idx := l.byDay[stored.Day]
		switch {
		case l.byID[stored.ID] != nil:
			err = fmt.Errorf("%w: consultation %s exists", ErrConflict, stored.ID)
		case l.byPatient[stored.PatientID] != nil:
			err = fmt.Errorf("%w: patient %s already booked", ErrConflict, stored.PatientID)
		case idx != nil && idx.doctors[stored.DoctorID] != nil:
			err = fmt.Errorf("%w: doctor %s booked on %s", ErrConflict, stored.DoctorID, stored.Day)
		case idx != nil && idx.rooms[stored.RoomID] != nil:
			err = fmt.Errorf("%w: room %s booked on %s", ErrConflict, stored.RoomID, stored.Day)
		}
		if err != nil {
			return nil
		}

		created := idx == nil
		if created {
			idx = &dayIndex{doctors: map[uuid.UUID]*Consultation{}, rooms: map[uuid.UUID]*Consultation{}}
			l.byDay[stored.Day] = idx
		}
		l.items = append(l.items, &stored)
		l.byID[stored.ID] = &stored
		l.byPatient[stored.PatientID] = &stored
		idx.items = append(idx.items, &stored)
		idx.doctors[stored.DoctorID] = &stored
		idx.rooms[stored.RoomID] = &stored

		return func() {
			l.items = l.items[:len(l.items)-1]
			delete(l.byID, stored.ID)
			delete(l.byPatient, stored.PatientID)
			if created {
				delete(l.byDay, stored.Day)
				return
			}
			idx.items = idx.items[:len(idx.items)-1]
			delete(idx.doctors, stored.DoctorID)
			delete(idx.rooms, stored.RoomID)
		}
	})
	return err
}

func (l *ledgerMem) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	var out *Consultation
	l.db.Read(ctx, func() { out = clone(l.byID[id]) })
	if out == nil {
		return nil, fmt.Errorf("consultation %s: %w", id, ErrNotFound)
	}
	return out, nil
}

func (l *ledgerMem) GetByPatient(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	var out *Consultation
	l.db.Read(ctx, func() { out = clone(l.byPatient[patientID]) })
	if out == nil {
		return nil, fmt.Errorf("consultation for patient %s: %w", patientID, ErrNotFound)
	}
	return out, nil
}

func (l *ledgerMem) ListAll(ctx context.Context) ([]*Consultation, error) {
	var out []*Consultation
	l.db.Read(ctx, func() { out = cloneAll(l.items, nil) })
	return out, nil
}

func (l *ledgerMem) ListByDate(ctx context.Context, day Date) ([]*Consultation, error) {
	var out []*Consultation
	l.db.Read(ctx, func() {
		if idx := l.byDay[day]; idx != nil {
			out = cloneAll(idx.items, nil)
		}
	})
	return out, nil
}

func (l *ledgerMem) ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, day Date) ([]*Consultation, error) {
	var out []*Consultation
	l.db.Read(ctx, func() {
		if idx := l.byDay[day]; idx != nil {
			out = cloneAll(idx.items, func(c *Consultation) bool { return c.DoctorID == doctorID })
		}
	})
	return out, nil
}

func (l *ledgerMem) ListByRoomAndDate(ctx context.Context, roomID uuid.UUID, day Date) ([]*Consultation, error) {
	var out []*Consultation
	l.db.Read(ctx, func() {
		if idx := l.byDay[day]; idx != nil {
			out = cloneAll(idx.items, func(c *Consultation) bool { return c.RoomID == roomID })
		}
	})
	return out, nil
}

func (l *ledgerMem) OccupancyOn(ctx context.Context, day Date) (*Occupancy, error) {
	occ := newOccupancy()
	l.db.Read(ctx, func() {
		idx := l.byDay[day]
		if idx == nil {
			return
		}
		for id := range idx.doctors {
			occ.Doctors[id] = true
		}
		for id := range idx.rooms {
			occ.Rooms[id] = true
		}
	})
	return occ, nil
}

func clone(c *Consultation) *Consultation {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

func cloneAll(items []*Consultation, keep func(*Consultation) bool) []*Consultation {
	out := make([]*Consultation, 0, len(items))
	for _, c := range items {
		if keep == nil || keep(c) {
			out = append(out, clone(c))
		}
	}
	return out
}
