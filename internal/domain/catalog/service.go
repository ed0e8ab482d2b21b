package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Transactor runs fn atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// InventoryRepository persists an inventory between restarts.
type InventoryRepository interface {
	Empty(ctx context.Context) (bool, error)
	Save(ctx context.Context, inv *Inventory) error
	Load(ctx context.Context) (*Inventory, error)
}

// Bootstrap seeds the repository on first start and returns the stored
// inventory. Later starts load what was saved and ignore cfg.
func Bootstrap(ctx context.Context, repo InventoryRepository, tx Transactor, cfg SeedConfig) (*Inventory, error) {
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		empty, err := repo.Empty(ctx)
		if err != nil || !empty {
			return err
		}
		inv, err := Seed(cfg)
		if err != nil {
			return err
		}
		log.Info().
			Int("machines", len(inv.machines)).
			Int("rooms", len(inv.rooms)).
			Int("doctors", len(inv.doctors)).
			Msg("seeding catalog")
		return repo.Save(ctx, inv)
	})
	if err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return repo.Load(ctx)
}

type Service struct {
	store  Store
	images ImageRepository
}

func NewService(store Store, images ImageRepository) *Service {
	return &Service{store: store, images: images}
}

func (s *Service) ListMachines(ctx context.Context) ([]Machine, error) {
	return s.store.ListMachines(ctx)
}

func (s *Service) GetMachine(ctx context.Context, id uuid.UUID) (*Machine, error) {
	return s.store.GetMachine(ctx, id)
}

func (s *Service) ListRooms(ctx context.Context) ([]Room, error) {
	return s.store.ListRooms(ctx)
}

func (s *Service) GetRoom(ctx context.Context, id uuid.UUID) (*Room, error) {
	return s.store.GetRoom(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return s.store.ListDoctors(ctx)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.store.GetDoctor(ctx, id)
}

// -- Images --

func (s *Service) CreateImage(ctx context.Context, img *Image) error {
	img.URL = strings.TrimSpace(img.URL)
	if img.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalid)
	}
	if _, err := url.Parse(img.URL); err != nil {
		return fmt.Errorf("%w: url is malformed", ErrInvalid)
	}
	img.ID = uuid.New()
	return s.images.Create(ctx, img)
}

func (s *Service) GetImage(ctx context.Context, id uuid.UUID) (*Image, error) {
	return s.images.GetByID(ctx, id)
}

func (s *Service) ListImages(ctx context.Context) ([]*Image, error) {
	return s.images.List(ctx)
}
