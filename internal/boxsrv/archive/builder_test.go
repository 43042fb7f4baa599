package archive

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/klauspost/compress/zip"
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
	}))
	cache, err := artifacts.NewCache(t.TempDir(), boxcommon.NewKeyedMutex())
	require.NoError(t, err)
	return NewBuilder(registry.NewRegistry(store), cache), cache
}

func TestBuildArchive(t *testing.T) {
	b, cache := newTestBuilder(t)
	ctx := context.Background()

	data, err := b.Build(ctx, testKey, []string{"A1", "A2"})
	require.Nil(t, err)

	zr, zerr := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, zerr)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "A1.png", zr.File[0].Name)
	assert.Equal(t, "A2.png", zr.File[1].Name)

	// each entry is a copy of the persisted label
	for _, f := range zr.File {
		rc, oerr := f.Open()
		require.NoError(t, oerr)
		entry, rerr := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, rerr)

		code := f.Name[:len(f.Name)-len(".png")]
		stored, aerr := cache.ReadLabel(testKey, code)
		require.Nil(t, aerr)
		assert.Equal(t, stored, entry)
	}

	// the archive landed in the tenant's slot
	stored, aerr := cache.ReadArchive(testKey)
	require.Nil(t, aerr)
	assert.Equal(t, data, stored)
}

func TestBuildArchiveEmpty(t *testing.T) {
	b, _ := newTestBuilder(t)
	_, err := b.Build(context.Background(), testKey, []string{})
	assert.NotNil(t, err)
	assert.True(t, err.Is(ErrEmptyBatch))
}

func TestBuildArchiveUnknownCodeAborts(t *testing.T) {
	b, cache := newTestBuilder(t)
	ctx := context.Background()

	first, err := b.Build(ctx, testKey, []string{"A1"})
	require.Nil(t, err)

	_, err = b.Build(ctx, testKey, []string{"A2", "Z9"})
	assert.NotNil(t, err)
	assert.True(t, err.Is(dberror.ErrNotFound))

	stored, aerr := cache.ReadArchive(testKey)
	require.Nil(t, aerr)
	assert.Equal(t, first, stored)
}
