package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/raycare/hospital/internal/platform/memdb"
)

type repoMem struct {
	db    *memdb.DB
	items []*Patient
	byID  map[uuid.UUID]*Patient
}

// NewRepoMem creates an in-memory patient repository guarded by db.
func NewRepoMem(db *memdb.DB) Repository {
	return &repoMem{db: db, byID: make(map[uuid.UUID]*Patient)}
}

func (r *repoMem) Create(ctx context.Context, p *Patient) error {
	stored := *p
	var err error
	r.db.Write(ctx, func() func() {
		if _, dup := r.byID[stored.ID]; dup {
			err = fmt.Errorf("patient %s already exists", stored.ID)
			return nil
		}
		r.items = append(r.items, &stored)
		r.byID[stored.ID] = &stored
		return func() {
			r.items = r.items[:len(r.items)-1]
			delete(r.byID, stored.ID)
		}
	})
	return err
}

func (r *repoMem) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var out *Patient
	r.db.Read(ctx, func() {
		if p, ok := r.byID[id]; ok {
			c := *p
			out = &c
		}
	})
	if out == nil {
		return nil, fmt.Errorf("patient %s: %w", id, ErrNotFound)
	}
	return out, nil
}

func (r *repoMem) List(ctx context.Context) ([]*Patient, error) {
	var out []*Patient
	r.db.Read(ctx, func() {
		out = make([]*Patient, 0, len(r.items))
		for _, p := range r.items {
			c := *p
			out = append(out, &c)
		}
	})
	return out, nil
}
