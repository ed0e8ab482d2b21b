package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_Default(t *testing.T) {
	inv, err := Seed(DefaultSeedConfig())
	require.NoError(t, err)
	ctx := context.Background()

	machines, err := inv.ListMachines(ctx)
	require.NoError(t, err)
	require.Len(t, machines, 2)
	assert.Equal(t, CapabilityAdvanced, machines[0].Capability)
	assert.Equal(t, CapabilitySimple, machines[1].Capability)

	rooms, err := inv.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	require.NotNil(t, rooms[0].TreatmentMachineID)
	assert.Equal(t, machines[0].ID, *rooms[0].TreatmentMachineID)
	require.NotNil(t, rooms[1].TreatmentMachineID)
	assert.Equal(t, machines[1].ID, *rooms[1].TreatmentMachineID)
	assert.Nil(t, rooms[2].TreatmentMachineID)

	doctors, err := inv.ListDoctors(ctx)
	require.NoError(t, err)
	require.Len(t, doctors, 3)
	assert.True(t, doctors[0].HasRole(RoleOncologist))
	assert.True(t, doctors[1].HasRole(RoleOncologist))
	assert.True(t, doctors[2].HasRole(RoleGeneralPractitioner))
	assert.False(t, doctors[2].HasRole(RoleOncologist))

	images := inv.Images()
	require.Len(t, images, 3)
	for i, d := range doctors {
		require.NotNil(t, d.ImageID)
		assert.Equal(t, images[i].ID, *d.ImageID)
	}
}

func TestSeed_MoreMachinesThanRooms(t *testing.T) {
	cfg := DefaultSeedConfig()
	cfg.Rooms = 1
	_, err := Seed(cfg)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSeed_NegativeCount(t *testing.T) {
	cfg := DefaultSeedConfig()
	cfg.Oncologists = -1
	_, err := Seed(cfg)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSeed_Empty(t *testing.T) {
	inv, err := Seed(SeedConfig{})
	require.NoError(t, err)
	rooms, err := inv.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestInventory_NilIsNotInitialized(t *testing.T) {
	var inv *Inventory
	ctx := context.Background()

	_, err := inv.ListMachines(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = inv.ListRooms(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = inv.ListDoctors(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = inv.GetDoctor(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInventory_Get(t *testing.T) {
	inv, err := Seed(DefaultSeedConfig())
	require.NoError(t, err)
	ctx := context.Background()
	rooms, _ := inv.ListRooms(ctx)

	got, err := inv.GetRoom(ctx, rooms[1].ID)
	require.NoError(t, err)
	assert.Equal(t, rooms[1], *got)

	require.NotNil(t, rooms[0].TreatmentMachineID)
	m, err := inv.GetMachine(ctx, *rooms[0].TreatmentMachineID)
	require.NoError(t, err)
	assert.Equal(t, CapabilityAdvanced, m.Capability)
	assert.Nil(t, rooms[2].TreatmentMachineID)

	_, err = inv.GetMachine(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInventory_ListReturnsCopies(t *testing.T) {
	inv, err := Seed(DefaultSeedConfig())
	require.NoError(t, err)
	ctx := context.Background()

	doctors, _ := inv.ListDoctors(ctx)
	doctors[0].Name = "changed"
	doctors[0].Roles[0] = RoleGeneralPractitioner

	again, _ := inv.ListDoctors(ctx)
	assert.Equal(t, "Oncologist 1", again[0].Name)
	assert.Equal(t, RoleOncologist, again[0].Roles[0])
}

func TestNewInventory_Invalid(t *testing.T) {
	missing := uuid.New()

	tests := []struct {
		name     string
		machines []Machine
		rooms    []Room
		doctors  []Doctor
	}{
		{
			name:     "bad capability",
			machines: []Machine{{ID: uuid.New(), Capability: "laser"}},
		},
		{
			name:  "unknown machine",
			rooms: []Room{{ID: uuid.New(), TreatmentMachineID: &missing}},
		},
		{
			name:    "no roles",
			doctors: []Doctor{{ID: uuid.New()}},
		},
		{
			name:    "bad role",
			doctors: []Doctor{{ID: uuid.New(), Roles: []Role{"surgeon"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInventory(tt.machines, tt.rooms, tt.doctors, nil)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}
