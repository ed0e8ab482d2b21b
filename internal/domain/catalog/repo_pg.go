package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raycare/hospital/internal/platform/db"
)

// =========== Inventory Repository ===========

// InventoryRepoPG persists the seeded inventory so ids survive restarts.
type InventoryRepoPG struct{ pool *pgxpool.Pool }

func NewInventoryRepoPG(pool *pgxpool.Pool) *InventoryRepoPG { return &InventoryRepoPG{pool: pool} }

func (r *InventoryRepoPG) conn(ctx context.Context) db.Querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

// Empty reports whether no machines, rooms or doctors are stored yet.
func (r *InventoryRepoPG) Empty(ctx context.Context) (bool, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM machines) + (SELECT COUNT(*) FROM rooms) + (SELECT COUNT(*) FROM doctors)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count inventory: %w", err)
	}
	return n == 0, nil
}

// Save writes inv. It must run inside a transaction so a partial seed is
// never visible.
func (r *InventoryRepoPG) Save(ctx context.Context, inv *Inventory) error {
	q := r.conn(ctx)
	for _, img := range inv.images {
		if _, err := q.Exec(ctx, `INSERT INTO images (id, url) VALUES ($1, $2)`, img.ID, img.URL); err != nil {
			return fmt.Errorf("insert image: %w", err)
		}
	}
	for i, m := range inv.machines {
		if _, err := q.Exec(ctx, `INSERT INTO machines (id, name, capability, position) VALUES ($1, $2, $3, $4)`,
			m.ID, m.Name, string(m.Capability), i); err != nil {
			return fmt.Errorf("insert machine: %w", err)
		}
	}
	for i, rm := range inv.rooms {
		if _, err := q.Exec(ctx, `INSERT INTO rooms (id, name, treatment_machine_id, position) VALUES ($1, $2, $3, $4)`,
			rm.ID, rm.Name, rm.TreatmentMachineID, i); err != nil {
			return fmt.Errorf("insert room: %w", err)
		}
	}
	for i, d := range inv.doctors {
		roles := make([]string, len(d.Roles))
		for j, role := range d.Roles {
			roles[j] = string(role)
		}
		if _, err := q.Exec(ctx, `INSERT INTO doctors (id, name, roles, image_id, position) VALUES ($1, $2, $3, $4, $5)`,
			d.ID, d.Name, roles, d.ImageID, i); err != nil {
			return fmt.Errorf("insert doctor: %w", err)
		}
	}
	return nil
}

// Load reads the stored inventory in seed order.
func (r *InventoryRepoPG) Load(ctx context.Context) (*Inventory, error) {
	q := r.conn(ctx)

	rows, err := q.Query(ctx, `SELECT id, name, capability FROM machines ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load machines: %w", err)
	}
	var machines []Machine
	for rows.Next() {
		var m Machine
		var capability string
		if err := rows.Scan(&m.ID, &m.Name, &capability); err != nil {
			rows.Close()
			return nil, err
		}
		m.Capability = Capability(capability)
		machines = append(machines, m)
	}
	rows.Close()

	rows, err = q.Query(ctx, `SELECT id, name, treatment_machine_id FROM rooms ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	var rooms []Room
	for rows.Next() {
		var rm Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.TreatmentMachineID); err != nil {
			rows.Close()
			return nil, err
		}
		rooms = append(rooms, rm)
	}
	rows.Close()

	rows, err = q.Query(ctx, `SELECT id, name, roles, image_id FROM doctors ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}
	var doctors []Doctor
	for rows.Next() {
		var d Doctor
		var roles []string
		if err := rows.Scan(&d.ID, &d.Name, &roles, &d.ImageID); err != nil {
			rows.Close()
			return nil, err
		}
		for _, role := range roles {
			d.Roles = append(d.Roles, Role(role))
		}
		doctors = append(doctors, d)
	}
	rows.Close()

	return NewInventory(machines, rooms, doctors, nil)
}

// =========== Image Repository ===========

type imageRepoPG struct{ pool *pgxpool.Pool }

func NewImageRepoPG(pool *pgxpool.Pool) ImageRepository { return &imageRepoPG{pool: pool} }

func (r *imageRepoPG) conn(ctx context.Context) db.Querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

func (r *imageRepoPG) Create(ctx context.Context, img *Image) error {
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `INSERT INTO images (id, url) VALUES ($1, $2)`, img.ID, img.URL)
	return err
}

func (r *imageRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	var img Image
	err := r.conn(ctx).QueryRow(ctx, `SELECT id, url FROM images WHERE id = $1`, id).Scan(&img.ID, &img.URL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("image %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *imageRepoPG) List(ctx context.Context) ([]*Image, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT id, url FROM images ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.URL); err != nil {
			return nil, err
		}
		items = append(items, &img)
	}
	return items, rows.Err()
}
