// Package tenant provisions, destroys and authenticates tenants. A tenant
// is a namespace named by the credential-derived key, an access grant on
// that namespace, a credential registration, and the seeded asset records.
// All operations for one tenant key are serialized under a keyed mutex, so
// a half-finished provisioning never interleaves with a concurrent destroy.
package tenant

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/stargods/boxcode/internal/boxsrv/auth"
	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/catalog"
	"github.com/stargods/boxcode/internal/boxsrv/db"
	"github.com/stargods/boxcode/internal/boxsrv/db/dberror"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

type Manager struct {
	store db.AssetStore
	seed  []catalog.SeedRow
	locks *boxcommon.KeyedMutex
}

func NewManager(store db.AssetStore, seed []catalog.SeedRow, locks *boxcommon.KeyedMutex) *Manager {
	return &Manager{
		store: store,
		seed:  seed,
		locks: locks,
	}
}

// Create provisions a tenant: derive the key, create the namespace, grant
// scoped access, register the credential, seed the catalog. Later steps
// failing roll back the earlier ones, so no partial tenant survives.
// Re-provisioning an existing tenant fails with a conflict.
func (m *Manager) Create(ctx context.Context, username, password string) (boxcommon.TenantKey, apperrors.Error) {
	key, err := auth.DeriveKey(username, password)
	if err != nil {
		return "", err
	}
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	exists, err := m.store.NamespaceExists(ctx, key)
	if err != nil {
		return "", err
	}
	if exists {
		log.Ctx(ctx).Info().Str("username", username).Msg("tenant already provisioned")
		return "", ErrTenantExists
	}

	if err := m.store.CreateNamespace(ctx, key); err != nil {
		if err.Is(dberror.ErrAlreadyExists) {
			return "", ErrTenantExists
		}
		return "", ErrProvisioningFailed.Err(err)
	}

	if err := m.store.GrantAccess(ctx, key, username); err != nil {
		m.rollback(ctx, key, username, false, false)
		return "", ErrProvisioningFailed.Err(err)
	}

	if err := m.store.RegisterCredential(ctx, key, username); err != nil {
		m.rollback(ctx, key, username, true, false)
		if err.Is(dberror.ErrAlreadyExists) {
			return "", ErrTenantExists
		}
		return "", ErrProvisioningFailed.Err(err)
	}

	if err := m.store.InsertAssets(ctx, key, catalog.Assets(m.seed)); err != nil {
		m.rollback(ctx, key, username, true, true)
		return "", ErrProvisioningFailed.Err(err)
	}

	log.Ctx(ctx).Info().Str("username", username).Int("seeded", len(m.seed)).Msg("tenant provisioned")
	return key, nil
}

// rollback undoes the completed provisioning steps in reverse order.
// Rollback failures are logged and swallowed; the caller already has the
// primary error.
func (m *Manager) rollback(ctx context.Context, key boxcommon.TenantKey, username string, grant, cred bool) {
	if cred {
		if err := m.store.RemoveCredential(ctx, username); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("rollback: failed to remove credential")
		}
	}
	if grant {
		if err := m.store.RevokeAccess(ctx, key, username); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("rollback: failed to revoke access")
		}
	}
	if err := m.store.DropNamespace(ctx, key); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("rollback: failed to drop namespace")
	}
}

// Destroy deprovisions a tenant: revoke the grant, remove the credential,
// drop the namespace. A missing grant, credential or namespace reports a
// conflict rather than propagating the store's internal failure.
func (m *Manager) Destroy(ctx context.Context, username, password string) apperrors.Error {
	key, err := auth.DeriveKey(username, password)
	if err != nil {
		return err
	}
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	if err := m.store.RevokeAccess(ctx, key, username); err != nil {
		if err.Is(dberror.ErrNotFound) {
			return ErrTenantConflict.Msg("access grant not found")
		}
		return err
	}
	if err := m.store.RemoveCredential(ctx, username); err != nil {
		if err.Is(dberror.ErrNotFound) {
			return ErrTenantConflict.Msg("credential not found")
		}
		return err
	}
	if err := m.store.DropNamespace(ctx, key); err != nil {
		if err.Is(dberror.ErrNotFound) {
			return ErrTenantConflict.Msg("namespace not found")
		}
		return err
	}
	log.Ctx(ctx).Info().Str("username", username).Msg("tenant deprovisioned")
	return nil
}

// Authenticate re-derives the key and confirms the tenant's namespace
// exists. Unknown tenants are unauthorized.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (boxcommon.TenantKey, apperrors.Error) {
	key, err := auth.DeriveKey(username, password)
	if err != nil {
		return "", err
	}
	exists, err := m.store.NamespaceExists(ctx, key)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", auth.ErrUnauthorized
	}
	return key, nil
}
