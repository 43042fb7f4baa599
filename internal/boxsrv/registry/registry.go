// Package registry exposes CRUD and query over one tenant's asset records.
// Every operation is scoped by the tenant key, which is the namespace name
// itself, so cross-tenant access cannot be expressed. Store-internal
// identifiers are stripped from every returned record.
package registry

import (
	"context"
	"net/http"
	"strings"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/db"
	"github.com/stargods/boxcode/internal/boxsrv/db/models"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

var (
	ErrRegistry    apperrors.Error = apperrors.New("registry error").SetStatusCode(http.StatusInternalServerError)
	ErrInvalidCode apperrors.Error = ErrRegistry.New("empty or invalid code").SetStatusCode(http.StatusBadRequest)
)

// DefaultQueryLimit caps query results when the caller does not give a
// limit.
const DefaultQueryLimit = 10

// Box is the externally visible shape of an asset record.
type Box struct {
	Serial   int      `json:"serial"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	NameCode string   `json:"namecode"`
	Contents []string `json:"contents"`
	Notes    string   `json:"notes"`
	InUse    bool     `json:"inuse"`
}

func fromModel(a *models.Asset) *Box {
	contents := a.Contents
	if contents == nil {
		contents = []string{}
	}
	return &Box{
		Serial:   a.Serial,
		Code:     a.Code,
		Name:     a.Name,
		NameCode: a.NameCode,
		Contents: contents,
		Notes:    a.Notes,
		InUse:    a.InUse,
	}
}

type Registry struct {
	store        db.AssetManager
	defaultLimit int
}

func NewRegistry(store db.AssetManager) *Registry {
	return &Registry{
		store:        store,
		defaultLimit: DefaultQueryLimit,
	}
}

func validCode(code string) apperrors.Error {
	if strings.TrimSpace(code) == "" {
		return ErrInvalidCode
	}
	return nil
}

// Get returns the record with the exact code.
func (reg *Registry) Get(ctx context.Context, key boxcommon.TenantKey, code string) (*Box, apperrors.Error) {
	if err := validCode(code); err != nil {
		return nil, err
	}
	a, err := reg.store.GetAssetByCode(ctx, key, code)
	if err != nil {
		return nil, err
	}
	return fromModel(a), nil
}

// Query returns up to limit records matching the filter conjunction;
// absent filters are not applied. limit<=0 selects the default. Result
// order is store-defined and not stable across calls.
func (reg *Registry) Query(ctx context.Context, key boxcommon.TenantKey, filter *models.AssetFilter, limit int) ([]Box, apperrors.Error) {
	if limit <= 0 {
		limit = reg.defaultLimit
	}
	assets, err := reg.store.FindAssets(ctx, key, filter, limit)
	if err != nil {
		return nil, err
	}
	boxes := make([]Box, 0, len(assets))
	for i := range assets {
		boxes = append(boxes, *fromModel(&assets[i]))
	}
	return boxes, nil
}

// GetNextFree returns the first record with inuse=false in store-defined
// order. Two concurrent callers can receive the same record; claiming it
// is a separate Update with last-write-wins resolution.
func (reg *Registry) GetNextFree(ctx context.Context, key boxcommon.TenantKey) (*Box, apperrors.Error) {
	a, err := reg.store.FirstFreeAsset(ctx, key)
	if err != nil {
		return nil, err
	}
	return fromModel(a), nil
}

// Update overwrites exactly notes, contents and inuse on the record and
// returns the post-update record.
func (reg *Registry) Update(ctx context.Context, key boxcommon.TenantKey, code string, m *models.AssetMutation) (*Box, apperrors.Error) {
	if err := validCode(code); err != nil {
		return nil, err
	}
	a, err := reg.store.UpdateAssetFields(ctx, key, code, m)
	if err != nil {
		return nil, err
	}
	return fromModel(a), nil
}

// Deactivate sets inuse=false keeping all other fields. Idempotent.
func (reg *Registry) Deactivate(ctx context.Context, key boxcommon.TenantKey, code string) (*Box, apperrors.Error) {
	if err := validCode(code); err != nil {
		return nil, err
	}
	current, err := reg.store.GetAssetByCode(ctx, key, code)
	if err != nil {
		return nil, err
	}
	a, err := reg.store.UpdateAssetFields(ctx, key, code, &models.AssetMutation{
		Notes:    current.Notes,
		Contents: current.Contents,
		InUse:    false,
	})
	if err != nil {
		return nil, err
	}
	return fromModel(a), nil
}
