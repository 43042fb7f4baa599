package document

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stargods/boxcode/internal/boxsrv/artifacts"
	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/db/dberror"
	"github.com/stargods/boxcode/internal/boxsrv/db/memory"
	"github.com/stargods/boxcode/internal/boxsrv/db/models"
	"github.com/stargods/boxcode/internal/boxsrv/registry"
)

const testKey = boxcommon.TenantKey("0123456789abcdef")

func newTestBuilder(t *testing.T) (*Builder, *artifacts.Cache) {
	store := memory.NewAssetStore()
	ctx := context.Background()
	require.Nil(t, store.CreateNamespace(ctx, testKey))
	require.Nil(t, store.InsertAssets(ctx, testKey, []models.Asset{
		{Serial: 1, Code: "A1", Name: "Kitchen", NameCode: "KI", Contents: []string{}},
		{Serial: 2, Code: "A2", Name: "Kitchen", NameCode: "KI", Contents: []string{}},
		{Serial: 3, Code: "B1", Name: "Garage", NameCode: "GA", Contents: []string{}},
		{Serial: 4, Code: "B2", Name: "Garage", NameCode: "GA", Contents: []string{}},
		{Serial: 5, Code: "C1", Name: "Attic", NameCode: "AT", Contents: []string{}},
	}))
	cache, err := artifacts.NewCache(t.TempDir(), boxcommon.NewKeyedMutex())
	require.NoError(t, err)
	return NewBuilder(registry.NewRegistry(store), cache), cache
}

func TestBuildBatch(t *testing.T) {
	b, cache := newTestBuilder(t)
	ctx := context.Background()

	// five labels: one full row of four plus one on the next row
	codes := []string{"A1", "A2", "B1", "B2", "C1"}
	data, err := b.Build(ctx, testKey, codes)
	require.Nil(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output must be a PDF document")

	// the document landed in the tenant's slot
	stored, err := cache.ReadBatchPDF(testKey)
	require.Nil(t, err)
	assert.Equal(t, data, stored)

	// every label was persisted individually as well
	for _, code := range codes {
		img, rerr := cache.ReadLabel(testKey, code)
		assert.Nil(t, rerr)
		assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
	}
}

func TestBuildSingleLabel(t *testing.T) {
	b, _ := newTestBuilder(t)
	data, err := b.Build(context.Background(), testKey, []string{"A1"})
	require.Nil(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBuildEmptyBatch(t *testing.T) {
	b, _ := newTestBuilder(t)
	_, err := b.Build(context.Background(), testKey, nil)
	assert.NotNil(t, err)
	assert.True(t, err.Is(ErrEmptyBatch))
	assert.Equal(t, 400, err.StatusCode())
}

func TestBuildUnknownCodeAborts(t *testing.T) {
	b, cache := newTestBuilder(t)
	ctx := context.Background()

	first, err := b.Build(ctx, testKey, []string{"A1"})
	require.Nil(t, err)

	_, err = b.Build(ctx, testKey, []string{"A2", "Z9"})
	assert.NotNil(t, err)
	assert.True(t, err.Is(dberror.ErrNotFound))

	// the failed batch left the previous document in place
	stored, rerr := cache.ReadBatchPDF(testKey)
	require.Nil(t, rerr)
	assert.Equal(t, first, stored)
}

func TestBuildRepeatedCodes(t *testing.T) {
	b, _ := newTestBuilder(t)
	// duplicates simply occupy multiple cells
	data, err := b.Build(context.Background(), testKey, []string{"A1", "A1", "A1"})
	require.Nil(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
