// Package archive bundles a tenant's rendered labels into a ZIP. Input
// validation and resolution mirror the batch document builder; the
// tenant's archive slot is single and a rebuild overwrites it.
package archive

import (
	"bytes"
	"context"
	"net/http"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"

	"github.com/stargods/boxcode/internal/boxsrv/artifacts"
	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/label"
	"github.com/stargods/boxcode/internal/boxsrv/registry"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

var (
	ErrArchive    apperrors.Error = apperrors.New("archive error").SetStatusCode(http.StatusInternalServerError)
	ErrEmptyBatch apperrors.Error = ErrArchive.New("empty code list").SetStatusCode(http.StatusBadRequest)
)

type Builder struct {
	registry *registry.Registry
	cache    *artifacts.Cache
}

func NewBuilder(reg *registry.Registry, cache *artifacts.Cache) *Builder {
	return &Builder{
		registry: reg,
		cache:    cache,
	}
}

// Build resolves every code, renders its label, persists the label files
// and bundles them into the tenant's archive. Any failing code aborts the
// whole batch, leaving a previous archive untouched.
func (b *Builder) Build(ctx context.Context, key boxcommon.TenantKey, codes []string) ([]byte, apperrors.Error) {
	if len(codes) == 0 {
		return nil, ErrEmptyBatch
	}

	b.cache.Lock(key)
	defer b.cache.Unlock(key)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, code := range codes {
		box, err := b.registry.Get(ctx, key, code)
		if err != nil {
			return nil, err
		}
		img, err := label.Compose(box)
		if err != nil {
			return nil, err
		}
		if err := b.cache.WriteLabelLocked(key, code, img); err != nil {
			return nil, err
		}
		entry, errzip := zw.Create(code + ".png")
		if errzip != nil {
			return nil, ErrArchive.Err(errzip)
		}
		if _, errzip := entry.Write(img); errzip != nil {
			return nil, ErrArchive.Err(errzip)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, ErrArchive.Err(err)
	}

	data := buf.Bytes()
	if err := b.cache.WriteArchive(key, data); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int("labels", len(codes)).Msg("archive built")
	return data, nil
}
