package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/raycare/hospital/internal/platform/memdb"
)

type imageRepoMem struct {
	db    *memdb.DB
	items []*Image
	byID  map[uuid.UUID]*Image
}

// NewImageRepoMem creates an in-memory image repository pre-loaded with seed.
func NewImageRepoMem(db *memdb.DB, seed []Image) ImageRepository {
	r := &imageRepoMem{db: db, byID: make(map[uuid.UUID]*Image, len(seed))}
	for i := range seed {
		img := seed[i]
		r.items = append(r.items, &img)
		r.byID[img.ID] = &img
	}
	return r
}

func (r *imageRepoMem) Create(ctx context.Context, img *Image) error {
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	stored := *img
	var err error
	r.db.Write(ctx, func() func() {
		if _, dup := r.byID[stored.ID]; dup {
			err = fmt.Errorf("image %s already exists", stored.ID)
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

func (r *imageRepoMem) GetByID(ctx context.Context, id uuid.UUID) (*Image, error) {
	var out *Image
	r.db.Read(ctx, func() {
		if img, ok := r.byID[id]; ok {
			c := *img
			out = &c
		}
	})
	if out == nil {
		return nil, fmt.Errorf("image %s: %w", id, ErrNotFound)
	}
	return out, nil
}

func (r *imageRepoMem) List(ctx context.Context) ([]*Image, error) {
	var out []*Image
	r.db.Read(ctx, func() {
		out = make([]*Image, 0, len(r.items))
		for _, img := range r.items {
			c := *img
			out = append(out, &c)
		}
	})
	return out, nil
}
