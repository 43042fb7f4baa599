package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stargods/boxcode/internal/boxsrv/auth"
	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/catalog"
	"github.com/stargods/boxcode/internal/boxsrv/db"
	"github.com/stargods/boxcode/internal/boxsrv/db/dberror"
	"github.com/stargods/boxcode/internal/boxsrv/db/memory"
	"github.com/stargods/boxcode/internal/boxsrv/db/models"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

func testSeed() []catalog.SeedRow {
	return []catalog.SeedRow{
		{Serial: 1, Code: "A1", Name: "Kitchen", NameCode: "KI"},
		{Serial: 2, Code: "A2", Name: "Kitchen", NameCode: "KI"},
		{Serial: 3, Code: "B1", Name: "Garage", NameCode: "GA", Notes: "fragile"},
	}
}

func newTestManager(store db.AssetStore) *Manager {
	return NewManager(store, testSeed(), boxcommon.NewKeyedMutex())
}

func TestCreateSeedsNamespace(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAssetStore()
	m := newTestManager(store)

	key, err := m.Create(ctx, "ashwin", "melon")
	require.Nil(t, err)
	assert.Len(t, key.String(), 16)

	// the namespace exists and carries exactly the seed records
	assets, derr := store.FindAssets(ctx, key, nil, 100)
	require.Nil(t, derr)
	require.Len(t, assets, 3)
	assert.Equal(t, "A1", assets[0].Code)
	assert.False(t, assets[0].InUse)
	assert.Empty(t, assets[0].Contents)
	assert.Equal(t, "fragile", assets[2].Notes)
}

func TestCreateConflict(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(memory.NewAssetStore())

	_, err := m.Create(ctx, "ashwin", "melon")
	require.Nil(t, err)

	_, err = m.Create(ctx, "ashwin", "melon")
	assert.NotNil(t, err)
	assert.True(t, err.Is(ErrTenantExists))
	assert.Equal(t, 409, err.StatusCode())
}

func TestCreateDistinctTenants(t *testing.T) {
	ctx := context.Background()
	store := memory.NewAssetStore()
	m := newTestManager(store)

	keyA, err := m.Create(ctx, "ashwin", "melon")
	require.Nil(t, err)
	keyB, err := m.Create(ctx, "anand", "melon")
	require.Nil(t, err)
	assert.NotEqual(t, keyA, keyB)

	// each namespace is independently seeded
	assets, derr := store.FindAssets(ctx, keyB, nil, 100)
	require.Nil(t, derr)
	assert.Len(t, assets, 3)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(memory.NewAssetStore())

	created, err := m.Create(ctx, "ashwin", "melon")
	require.Nil(t, err)

	key, err := m.Authenticate(ctx, "ashwin", "melon")
	require.Nil(t, err)
	assert.Equal(t, created, key)

	// wrong password derives a different key, hence unknown tenant
	_, err = m.Authenticate(ctx, "ashwin", "mango")
	assert.NotNil(t, err)
	assert.True(t, err.Is(auth.ErrUnauthorized))
	assert.Equal(t, 401, err.StatusCode())
}

func TestDestroy(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(memory.NewAssetStore())

	_, err := m.Create(ctx, "ashwin", "melon")
	require.Nil(t, err)
	require.Nil(t, m.Destroy(ctx, "ashwin", "melon"))

	_, err = m.Authenticate(ctx, "ashwin", "melon")
	assert.NotNil(t, err)

	// deleting again reports a conflict, not an internal failure
	err = m.Destroy(ctx, "ashwin", "melon")
	assert.NotNil(t, err)
	assert.True(t, err.Is(ErrTenantConflict))
	assert.Equal(t, 409, err.StatusCode())
}

func TestDestroyThenRecreate(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(memory.NewAssetStore())

	_, err := m.Create(ctx, "ashwin", "melon")
	require.Nil(t, err)
	require.Nil(t, m.Destroy(ctx, "ashwin", "melon"))

	// the same credentials provision a fresh tenant
	_, err = m.Create(ctx, "ashwin", "melon")
	assert.Nil(t, err)
}

// seedFailStore fails InsertAssets a configurable number of times, so a
// provisioning attempt fails after namespace, grant and credential exist.
type seedFailStore struct {
	db.AssetStore
	failures int
}

func (s *seedFailStore) InsertAssets(ctx context.Context, key boxcommon.TenantKey, assets []models.Asset) apperrors.Error {
	if s.failures > 0 {
		s.failures--
		return dberror.ErrDatabase.Msg("injected seed failure")
	}
	return s.AssetStore.InsertAssets(ctx, key, assets)
}

func TestCreateRollsBackOnSeedFailure(t *testing.T) {
	ctx := context.Background()
	store := &seedFailStore{AssetStore: memory.NewAssetStore(), failures: 1}
	m := newTestManager(store)

	_, err := m.Create(ctx, "ashwin", "melon")
	assert.NotNil(t, err)
	assert.True(t, err.Is(ErrProvisioningFailed))

	// no partial tenant survives
	_, aerr := m.Authenticate(ctx, "ashwin", "melon")
	assert.NotNil(t, aerr)

	// the rollback left the store clean enough to provision again
	key, err := m.Create(ctx, "ashwin", "melon")
	require.Nil(t, err)
	assets, derr := store.FindAssets(ctx, key, nil, 100)
	require.Nil(t, derr)
	assert.Len(t, assets, 3)
}
