package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raycare/hospital/internal/domain/scheduling"
	"github.com/raycare/hospital/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewRepoPG creates a patient repository; registered_at is read back in loc.
func NewRepoPG(pool *pgxpool.Pool, loc *time.Location) Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &repoPG{pool: pool, loc: loc}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, name, condition, image_id, registered_at`

func (r *repoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var condition string
	if err := row.Scan(&p.ID, &p.Name, &condition, &p.ImageID, &p.RegisteredAt); err != nil {
		return nil, err
	}
	p.Condition = scheduling.Condition(condition)
	p.RegisteredAt = p.RegisteredAt.In(r.loc)
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (`+patientCols+`)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, string(p.Condition), p.ImageID, p.RegisteredAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := r.scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	return p, err
}

func (r *repoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
