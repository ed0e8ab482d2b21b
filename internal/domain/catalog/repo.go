package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ImageRepository stores uploaded image records.
type ImageRepository interface {
	Create(ctx context.Context, img *Image) error
	GetByID(ctx context.Context, id uuid.UUID) (*Image, error)
	List(ctx context.Context) ([]*Image, error)
}
