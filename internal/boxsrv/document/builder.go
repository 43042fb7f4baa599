// Package document builds the multi-label batch PDF for a tenant. Labels
// are tiled uniformly four per row in the order the codes were given, with
// automatic page breaks. The tenant's PDF slot is single: a rebuild
// overwrites the previous document.
package document

import (
	"bytes"
	"context"
	"net/http"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"

	"github.com/stargods/boxcode/internal/boxsrv/artifacts"
	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/label"
	"github.com/stargods/boxcode/internal/boxsrv/registry"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

var (
	ErrDocument   apperrors.Error = apperrors.New("document error").SetStatusCode(http.StatusInternalServerError)
	ErrEmptyBatch apperrors.Error = ErrDocument.New("empty code list").SetStatusCode(http.StatusBadRequest)
)

// Page geometry in millimeters (A4 portrait).
const (
	pageMargin   = 10.0
	labelsPerRow = 4
	rowGap       = 4.0

	pageWidth  = 210.0
	pageHeight = 297.0
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
// and lays the labels out into the tenant's batch PDF. Any code failing to
// resolve or render aborts the whole batch; the previous document, if any,
// is left untouched in that case.
func (b *Builder) Build(ctx context.Context, key boxcommon.TenantKey, codes []string) ([]byte, apperrors.Error) {
	if len(codes) == 0 {
		return nil, ErrEmptyBatch
	}

	b.cache.Lock(key)
	defer b.cache.Unlock(key)

	images := make([][]byte, 0, len(codes))
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
		images = append(images, img)
	}

	data, err := layout(codes, images)
	if err != nil {
		return nil, err
	}
	if err := b.cache.WriteBatchPDF(key, data); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int("labels", len(codes)).Msg("batch document built")
	return data, nil
}

// layout tiles the label images four per row. The label aspect ratio is
// fixed by the renderer (2:1), so the cell height follows from the width.
func layout(codes []string, images [][]byte) ([]byte, apperrors.Error) {
	cellWidth := (pageWidth - 2*pageMargin) / labelsPerRow
	cellHeight := cellWidth / 2

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	y := pageMargin
	for i, img := range images {
		col := i % labelsPerRow
		if col == 0 && i > 0 {
			y += cellHeight + rowGap
			if y+cellHeight > pageHeight-pageMargin {
				pdf.AddPage()
				y = pageMargin
			}
		}
		name := "label-" + codes[i]
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img))
		x := pageMargin + float64(col)*cellWidth
		pdf.ImageOptions(name, x, y, cellWidth, cellHeight, false, opts, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, ErrDocument.MsgErr("unable to produce document", err)
	}
	return buf.Bytes(), nil
}
