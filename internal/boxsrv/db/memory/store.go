// Package memory implements db.AssetStore as an in-process map store. It
// backs unit tests and the single-node dev mode; semantics mirror the
// postgresql implementation, including store-defined (insertion) order and
// the error taxonomy.
package memory

import (
	"context"
	"sync"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/db"
	"github.com/stargods/boxcode/internal/boxsrv/db/dberror"
	"github.com/stargods/boxcode/internal/boxsrv/db/models"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

type namespace struct {
	assets []*models.Asset // insertion order
	nextID int64
}

type store struct {
	mu         sync.Mutex
	namespaces map[boxcommon.TenantKey]*namespace
	grants     map[boxcommon.TenantKey]string // key -> username
	creds      map[string]boxcommon.TenantKey // username -> key
}

var _ db.AssetStore = (*store)(nil)

func NewAssetStore() db.AssetStore {
	return &store{
		namespaces: make(map[boxcommon.TenantKey]*namespace),
		grants:     make(map[boxcommon.TenantKey]string),
		creds:      make(map[string]boxcommon.TenantKey),
	}
}

func (s *store) Close() {}

func copyAsset(a *models.Asset) *models.Asset {
	c := *a
	c.Contents = append([]string{}, a.Contents...)
	return &c
}

func (s *store) namespaceLocked(key boxcommon.TenantKey) (*namespace, apperrors.Error) {
	ns, ok := s.namespaces[key]
	if !ok {
		return nil, dberror.ErrUnknownNamespace
	}
	return ns, nil
}

func (s *store) CreateNamespace(ctx context.Context, key boxcommon.TenantKey) apperrors.Error {
	if !key.IsValid() {
		return dberror.ErrMissingTenantKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.namespaces[key]; ok {
		return dberror.ErrAlreadyExists.Msg("namespace already exists")
	}
	s.namespaces[key] = &namespace{nextID: 1}
	return nil
}

func (s *store) DropNamespace(ctx context.Context, key boxcommon.TenantKey) apperrors.Error {
	if !key.IsValid() {
		return dberror.ErrMissingTenantKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.namespaces[key]; !ok {
		return dberror.ErrNotFound.Msg("namespace not found")
	}
	delete(s.namespaces, key)
	return nil
}

func (s *store) NamespaceExists(ctx context.Context, key boxcommon.TenantKey) (bool, apperrors.Error) {
	if !key.IsValid() {
		return false, dberror.ErrMissingTenantKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.namespaces[key]
	return ok, nil
}

func (s *store) GrantAccess(ctx context.Context, key boxcommon.TenantKey, username string) apperrors.Error {
	if !key.IsValid() {
		return dberror.ErrMissingTenantKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[key]; ok {
		return dberror.ErrAlreadyExists.Msg("access grant already exists")
	}
	s.grants[key] = username
	return nil
}

func (s *store) RevokeAccess(ctx context.Context, key boxcommon.TenantKey, username string) apperrors.Error {
	if !key.IsValid() {
		return dberror.ErrMissingTenantKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[key]; !ok {
		return dberror.ErrNotFound.Msg("access grant not found")
	}
	delete(s.grants, key)
	return nil
}

func (s *store) RegisterCredential(ctx context.Context, key boxcommon.TenantKey, username string) apperrors.Error {
	if !key.IsValid() {
		return dberror.ErrMissingTenantKey
	}
	if username == "" {
		return dberror.ErrInvalidInput.Msg("missing username")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[username]; ok {
		return dberror.ErrAlreadyExists.Msg("credential already registered")
	}
	s.creds[username] = key
	return nil
}

func (s *store) RemoveCredential(ctx context.Context, username string) apperrors.Error {
	if username == "" {
		return dberror.ErrInvalidInput.Msg("missing username")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.creds[username]; !ok {
		return dberror.ErrNotFound.Msg("credential not found")
	}
	delete(s.creds, username)
	return nil
}

func (s *store) InsertAssets(ctx context.Context, key boxcommon.TenantKey, assets []models.Asset) apperrors.Error {
	if !key.IsValid() {
		return dberror.ErrMissingTenantKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, err := s.namespaceLocked(key)
	if err != nil {
		return err
	}
	for _, a := range assets {
		for _, existing := range ns.assets {
			if existing.Code == a.Code {
				return dberror.ErrAlreadyExists.Msg("duplicate code: " + a.Code)
			}
		}
	}
	for _, a := range assets {
		c := copyAsset(&a)
		c.ID = ns.nextID
		ns.nextID++
		ns.assets = append(ns.assets, c)
	}
	return nil
}

func (s *store) GetAssetByCode(ctx context.Context, key boxcommon.TenantKey, code string) (*models.Asset, apperrors.Error) {
	if !key.IsValid() {
		return nil, dberror.ErrMissingTenantKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, err := s.namespaceLocked(key)
	if err != nil {
		return nil, err
	}
	for _, a := range ns.assets {
		if a.Code == code {
			return copyAsset(a), nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("no asset with code " + code)
}

func matches(a *models.Asset, f *models.AssetFilter) bool {
	if f == nil {
		return true
	}
	if f.InUse != nil && a.InUse != *f.InUse {
		return false
	}
	if f.Serial != nil && a.Serial != *f.Serial {
		return false
	}
	if f.Notes != nil && a.Notes != *f.Notes {
		return false
	}
	if f.Name != nil && a.Name != *f.Name {
		return false
	}
	if f.ContainsItem != nil {
		found := false
		for _, item := range a.Contents {
			if item == *f.ContainsItem {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *store) FindAssets(ctx context.Context, key boxcommon.TenantKey, filter *models.AssetFilter, limit int) ([]models.Asset, apperrors.Error) {
	if !key.IsValid() {
		return nil, dberror.ErrMissingTenantKey
	}
	if limit <= 0 {
		limit = 10
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, err := s.namespaceLocked(key)
	if err != nil {
		return nil, err
	}
	result := []models.Asset{}
	for _, a := range ns.assets {
		if len(result) >= limit {
			break
		}
		if matches(a, filter) {
			result = append(result, *copyAsset(a))
		}
	}
	return result, nil
}

func (s *store) FirstFreeAsset(ctx context.Context, key boxcommon.TenantKey) (*models.Asset, apperrors.Error) {
	if !key.IsValid() {
		return nil, dberror.ErrMissingTenantKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, err := s.namespaceLocked(key)
	if err != nil {
		return nil, err
	}
	for _, a := range ns.assets {
		if !a.InUse {
			return copyAsset(a), nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("no free asset")
}

func (s *store) UpdateAssetFields(ctx context.Context, key boxcommon.TenantKey, code string, m *models.AssetMutation) (*models.Asset, apperrors.Error) {
	if !key.IsValid() {
		return nil, dberror.ErrMissingTenantKey
	}
	if m == nil {
		return nil, dberror.ErrInvalidInput.Msg("missing mutation")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, err := s.namespaceLocked(key)
	if err != nil {
		return nil, err
	}
	for _, a := range ns.assets {
		if a.Code == code {
			a.Notes = m.Notes
			a.Contents = append([]string{}, m.Contents...)
			a.InUse = m.InUse
			return copyAsset(a), nil
		}
	}
	return nil, dberror.ErrNotFound.Msg("no asset with code " + code)
}
