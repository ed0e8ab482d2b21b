package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raycare/hospital/internal/platform/db"
)

const uniqueViolation = "23505"

type ledgerPG struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewLedgerPG creates a ledger on the consultations table. Timestamps read
// back are expressed in loc, the zone consultations are booked in.
func NewLedgerPG(pool *pgxpool.Pool, loc *time.Location) Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &ledgerPG{pool: pool, loc: loc}
}

func (l *ledgerPG) conn(ctx context.Context) db.Querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return l.pool
}

const consultationCols = `id, registration_date, patient_id, doctor_id, room_id, consultation_date, consultation_day`

func scanConsultation(row pgx.Row, loc *time.Location) (*Consultation, error) {
	var c Consultation
	var day time.Time
	if err := row.Scan(&c.ID, &c.RegistrationDate, &c.PatientID, &c.DoctorID, &c.RoomID, &c.ConsultationDate, &day); err != nil {
		return nil, err
	}
	// pgx returns TIMESTAMPTZ in time.Local.
	c.RegistrationDate = c.RegistrationDate.In(loc)
	c.ConsultationDate = c.ConsultationDate.In(loc)
	c.Day = DateOf(day)
	return &c, nil
}

func (l *ledgerPG) Append(ctx context.Context, c *Consultation) error {
	_, err := l.conn(ctx).Exec(ctx, `
		INSERT INTO consultations (`+consultationCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.RegistrationDate, c.PatientID, c.DoctorID, c.RoomID, c.ConsultationDate,
		c.Day.Midnight(time.UTC))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

func (l *ledgerPG) get(ctx context.Context, what, where string, arg interface{}) (*Consultation, error) {
	c, err := scanConsultation(l.conn(ctx).QueryRow(ctx,
		`SELECT `+consultationCols+` FROM consultations WHERE `+where, arg), l.loc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return c, err
}

func (l *ledgerPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return l.get(ctx, "consultation "+id.String(), "id = $1", id)
}

func (l *ledgerPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	return l.get(ctx, "consultation for patient "+patientID.String(), "patient_id = $1", patientID)
}

func (l *ledgerPG) list(ctx context.Context, where string, args ...interface{}) ([]*Consultation, error) {
	query := `SELECT ` + consultationCols + ` FROM consultations`
	if where != "" {
		query += ` WHERE ` + where
	}
	rows, err := l.conn(ctx).Query(ctx, query+` ORDER BY seq`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Consultation
	for rows.Next() {
		c, err := scanConsultation(rows, l.loc)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (l *ledgerPG) ListAll(ctx context.Context) ([]*Consultation, error) {
	return l.list(ctx, "")
}

func (l *ledgerPG) ListByDate(ctx context.Context, day Date) ([]*Consultation, error) {
	return l.list(ctx, "consultation_day = $1", day.Midnight(time.UTC))
}

func (l *ledgerPG) ListByDoctorAndDate(ctx context.Context, doctorID uuid.UUID, day Date) ([]*Consultation, error) {
	return l.list(ctx, "doctor_id = $1 AND consultation_day = $2", doctorID, day.Midnight(time.UTC))
}

func (l *ledgerPG) ListByRoomAndDate(ctx context.Context, roomID uuid.UUID, day Date) ([]*Consultation, error) {
	return l.list(ctx, "room_id = $1 AND consultation_day = $2", roomID, day.Midnight(time.UTC))
}

func (l *ledgerPG) OccupancyOn(ctx context.Context, day Date) (*Occupancy, error) {
	rows, err := l.conn(ctx).Query(ctx,
		`SELECT doctor_id, room_id FROM consultations WHERE consultation_day = $1`, day.Midnight(time.UTC))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	occ := newOccupancy()
	for rows.Next() {
		var doctorID, roomID uuid.UUID
		if err := rows.Scan(&doctorID, &roomID); err != nil {
			return nil, err
		}
		occ.Doctors[doctorID] = true
		occ.Rooms[roomID] = true
	}
	return occ, rows.Err()
}
