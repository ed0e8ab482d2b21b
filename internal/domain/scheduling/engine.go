package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/raycare/hospital/internal/domain/catalog"
)

// DefaultHorizonDays bounds how far ahead the engine searches for a free day.
const DefaultHorizonDays = 365

// Transactor runs fn atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EngineConfig tunes the booking search.
type EngineConfig struct {
	HorizonDays int
	Location    *time.Location
}

// Request asks for a consultation for a newly registered patient.
type Request struct {
	PatientID    uuid.UUID
	Condition    Condition
	RegisteredAt time.Time
}

// Engine books the earliest consultation a patient's condition allows.
// Doctors and rooms are tried in catalog order so identical registration
// sequences always produce identical bookings.
type Engine struct {
	store   catalog.Store
	ledger  Ledger
	tx      Transactor
	horizon int
	loc     *time.Location
	logger  zerolog.Logger
}

func NewEngine(store catalog.Store, ledger Ledger, tx Transactor, cfg EngineConfig, logger zerolog.Logger) *Engine {
	if cfg.HorizonDays <= 0 {
		cfg.HorizonDays = DefaultHorizonDays
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Engine{
		store:   store,
		ledger:  ledger,
		tx:      tx,
		horizon: cfg.HorizonDays,
		loc:     cfg.Location,
		logger:  logger.With().Str("component", "scheduling").Logger(),
	}
}

// Location is the time zone calendar days are computed in.
func (e *Engine) Location() *time.Location { return e.loc }

// Schedule books the patient on the first day after registration where a
// doctor with the required role and a suitably equipped room are both free.
// The occupancy check and the append run in one transaction.
func (e *Engine) Schedule(ctx context.Context, req Request) (*Consultation, error) {
	requirement, err := RequirementFor(req.Condition)
	if err != nil {
		return nil, err
	}
	doctors, rooms, err := e.candidates(ctx, requirement)
	if err != nil {
		return nil, err
	}
	if len(doctors) == 0 {
		e.logger.Warn().Str("condition", string(req.Condition)).Msg("no doctor holds the required role")
		return nil, fmt.Errorf("%w: no %s on staff", ErrInfeasible, requirement.Role)
	}
	if len(rooms) == 0 {
		e.logger.Warn().Str("condition", string(req.Condition)).Msg("no room has the required equipment")
		return nil, fmt.Errorf("%w: no room with %s", ErrInfeasible, requirement.Machine)
	}

	registeredAt := req.RegisteredAt
	if registeredAt.IsZero() {
		registeredAt = time.Now()
	}
	// Stored timestamps keep microseconds; render both dates in one zone.
	registeredAt = registeredAt.Truncate(time.Microsecond).In(e.loc)
	first := DateOf(registeredAt).AddDays(1)

	var booked *Consultation
	err = e.tx.WithinTx(ctx, func(ctx context.Context) error {
		for i := 0; i < e.horizon; i++ {
			day := first.AddDays(i)
			occ, err := e.ledger.OccupancyOn(ctx, day)
			if err != nil {
				return fmt.Errorf("read occupancy for %s: %w", day, err)
			}
			doctor, ok := firstFreeDoctor(doctors, occ)
			if !ok {
				continue
			}
			room, ok := firstFreeRoom(rooms, occ)
			if !ok {
				continue
			}

			c := &Consultation{
				ID:               uuid.New(),
				RegistrationDate: registeredAt,
				PatientID:        req.PatientID,
				DoctorID:         doctor.ID,
				RoomID:           room.ID,
				ConsultationDate: day.Midnight(e.loc),
				Day:              day,
			}
			if err := e.ledger.Append(ctx, c); err != nil {
				return err
			}
			booked = c
			return nil
		}
		return fmt.Errorf("%w: every %s or room is booked for the next %d days", ErrInfeasible, requirement.Role, e.horizon)
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("patient_id", req.PatientID.String()).Msg("consultation not booked")
		return nil, err
	}

	e.logger.Debug().
		Str("patient_id", booked.PatientID.String()).
		Str("doctor_id", booked.DoctorID.String()).
		Str("room_id", booked.RoomID.String()).
		Str("day", booked.Day.String()).
		Msg("consultation booked")
	return booked, nil
}

func (e *Engine) candidates(ctx context.Context, r Requirement) ([]catalog.Doctor, []catalog.Room, error) {
	doctors, err := e.store.ListDoctors(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list doctors: %w", err)
	}
	rooms, err := e.store.ListRooms(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list rooms: %w", err)
	}
	machines, err := e.store.ListMachines(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list machines: %w", err)
	}
	byID := make(map[uuid.UUID]catalog.Machine, len(machines))
	for _, m := range machines {
		byID[m.ID] = m
	}
	return r.Doctors(doctors), r.Rooms(rooms, byID), nil
}

func firstFreeDoctor(doctors []catalog.Doctor, occ *Occupancy) (catalog.Doctor, bool) {
	for _, d := range doctors {
		if !occ.Doctors[d.ID] {
			return d, true
		}
	}
	return catalog.Doctor{}, false
}

func firstFreeRoom(rooms []catalog.Room, occ *Occupancy) (catalog.Room, bool) {
	for _, r := range rooms {
		if !occ.Rooms[r.ID] {
			return r, true
		}
	}
	return catalog.Room{}, false
}
