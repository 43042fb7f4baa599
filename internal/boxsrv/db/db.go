// Package db defines the AssetStore interface the box service is built
// against. The store exposes per-namespace document operations keyed by the
// tenant key; implementations live in the postgresql and memory
// subpackages. The interface is injected into each component rather than
// reached through process-wide state, so a test can swap the backend.
package db

import (
	"context"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/db/models"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

// NamespaceManager manages tenant namespaces, their access grants and the
// credential registry. The namespace name is the tenant key itself.
type NamespaceManager interface {
	// CreateNamespace creates an empty namespace for the key.
	// Returns dberror.ErrAlreadyExists if the namespace exists.
	CreateNamespace(ctx context.Context, key boxcommon.TenantKey) apperrors.Error

	// DropNamespace removes the namespace and all its records.
	// Returns dberror.ErrNotFound if the namespace does not exist.
	DropNamespace(ctx context.Context, key boxcommon.TenantKey) apperrors.Error

	// NamespaceExists reports whether the namespace for the key exists.
	NamespaceExists(ctx context.Context, key boxcommon.TenantKey) (bool, apperrors.Error)

	// GrantAccess creates a permission scope for the namespace limited to
	// find/update/insert. Returns dberror.ErrAlreadyExists for a duplicate
	// grant.
	GrantAccess(ctx context.Context, key boxcommon.TenantKey, username string) apperrors.Error

	// RevokeAccess drops the namespace's permission scope. Returns
	// dberror.ErrNotFound if no grant exists.
	RevokeAccess(ctx context.Context, key boxcommon.TenantKey, username string) apperrors.Error

	// RegisterCredential records the username for the namespace. Returns
	// dberror.ErrAlreadyExists for a duplicate registration.
	RegisterCredential(ctx context.Context, key boxcommon.TenantKey, username string) apperrors.Error

	// RemoveCredential removes the username registration. Returns
	// dberror.ErrNotFound if the username is not registered.
	RemoveCredential(ctx context.Context, username string) apperrors.Error
}

// AssetManager holds the record operations. Every call is scoped to exactly
// one namespace by the tenant key; a key without a namespace yields
// dberror.ErrUnknownNamespace.
type AssetManager interface {
	// InsertAssets bulk-inserts records into the namespace. Used only at
	// provisioning time.
	InsertAssets(ctx context.Context, key boxcommon.TenantKey, assets []models.Asset) apperrors.Error

	// GetAssetByCode returns the record with the exact code, or
	// dberror.ErrNotFound.
	GetAssetByCode(ctx context.Context, key boxcommon.TenantKey, code string) (*models.Asset, apperrors.Error)

	// FindAssets returns up to limit records matching the filter
	// conjunction, in store-defined order.
	FindAssets(ctx context.Context, key boxcommon.TenantKey, filter *models.AssetFilter, limit int) ([]models.Asset, apperrors.Error)

	// FirstFreeAsset returns the first record with inuse=false in
	// store-defined order, or dberror.ErrNotFound if there is none.
	FirstFreeAsset(ctx context.Context, key boxcommon.TenantKey) (*models.Asset, apperrors.Error)

	// UpdateAssetFields overwrites exactly notes, contents and inuse on the
	// record with the given code and returns the post-update record, or
	// dberror.ErrNotFound.
	UpdateAssetFields(ctx context.Context, key boxcommon.TenantKey, code string, m *models.AssetMutation) (*models.Asset, apperrors.Error)
}

// AssetStore is the full store contract.
type AssetStore interface {
	NamespaceManager
	AssetManager
	Close()
}
