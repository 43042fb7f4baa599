// Package artifacts owns the on-disk lifecycle of generated files: single
// label PNGs, the per-tenant batch PDF and the per-tenant archive ZIP.
// Paths are deterministic functions of tenant key (and code, for labels);
// batch artifacts are single-slot, so regeneration overwrites. Every write
// and delete for one tenant key runs under a keyed mutex, so a regenerate
// cannot interleave with a delete for the same tenant while unrelated
// tenants are never blocked.
package artifacts

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

var (
	ErrArtifact            apperrors.Error = apperrors.New("artifact error").SetStatusCode(http.StatusInternalServerError)
	ErrArtifactNotFound    apperrors.Error = ErrArtifact.New("artifact not found").SetStatusCode(http.StatusNotFound)
	ErrInvalidArtifactName apperrors.Error = ErrArtifact.New("invalid artifact name").SetStatusCode(http.StatusBadRequest)
)

type Cache struct {
	root  string
	locks *boxcommon.KeyedMutex
}

// NewCache prepares the artifact directory tree under root.
func NewCache(root string, locks *boxcommon.KeyedMutex) (*Cache, error) {
	for _, dir := range []string{"labels", "batches", "archives"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, errors.Wrap(err, "unable to prepare artifact directory")
		}
	}
	return &Cache{root: root, locks: locks}, nil
}

// safeName rejects names that would escape the artifact tree.
func safeName(name string) apperrors.Error {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return ErrInvalidArtifactName.Msg("invalid name: " + name)
	}
	return nil
}

func (c *Cache) labelPath(key boxcommon.TenantKey, code string) string {
	return filepath.Join(c.root, "labels", key.String(), code+".png")
}

// BatchPDFPath is the tenant's single batch document slot.
func (c *Cache) BatchPDFPath(key boxcommon.TenantKey) string {
	return filepath.Join(c.root, "batches", key.String()+".pdf")
}

// ArchivePath is the tenant's single archive slot.
func (c *Cache) ArchivePath(key boxcommon.TenantKey) string {
	return filepath.Join(c.root, "archives", key.String()+".zip")
}

// Lock acquires the tenant's artifact lock. Builders hold it across a full
// resolve-render-write sequence.
func (c *Cache) Lock(key boxcommon.TenantKey) {
	c.locks.Lock(key)
}

func (c *Cache) Unlock(key boxcommon.TenantKey) {
	c.locks.Unlock(key)
}

// write stores data at path via a temp file and rename, so a reader never
// observes a torn artifact.
func (c *Cache) write(path string, data []byte) apperrors.Error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ErrArtifact.MsgErr("unable to prepare artifact directory", err)
	}
	suffix, err := gonanoid.New(8)
	if err != nil {
		return ErrArtifact.Err(err)
	}
	tmp := path + ".tmp-" + suffix
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return ErrArtifact.MsgErr("unable to write artifact", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return ErrArtifact.MsgErr("unable to store artifact", err)
	}
	return nil
}

func (c *Cache) read(path string) ([]byte, apperrors.Error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrArtifactNotFound
		}
		return nil, ErrArtifact.MsgErr("unable to read artifact", err)
	}
	return data, nil
}

// remove deletes the file at path, mapping a missing file to not found.
func (c *Cache) remove(path string) apperrors.Error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrArtifactNotFound
		}
		return ErrArtifact.MsgErr("unable to delete artifact", err)
	}
	return nil
}

// WriteLabel stores the label PNG for (key, code), overwriting any
// previous one.
func (c *Cache) WriteLabel(key boxcommon.TenantKey, code string, data []byte) apperrors.Error {
	if err := safeName(code); err != nil {
		return err
	}
	c.locks.Lock(key)
	defer c.locks.Unlock(key)
	return c.write(c.labelPath(key, code), data)
}

// WriteLabelLocked is WriteLabel for callers already holding the tenant
// lock (the document and archive builders).
func (c *Cache) WriteLabelLocked(key boxcommon.TenantKey, code string, data []byte) apperrors.Error {
	if err := safeName(code); err != nil {
		return err
	}
	return c.write(c.labelPath(key, code), data)
}

// ReadLabel returns the stored label PNG for (key, code).
func (c *Cache) ReadLabel(key boxcommon.TenantKey, code string) ([]byte, apperrors.Error) {
	if err := safeName(code); err != nil {
		return nil, err
	}
	return c.read(c.labelPath(key, code))
}

// DeleteLabel removes the stored label for (key, code); not found if it
// was never generated.
func (c *Cache) DeleteLabel(key boxcommon.TenantKey, code string) apperrors.Error {
	if err := safeName(code); err != nil {
		return err
	}
	c.locks.Lock(key)
	defer c.locks.Unlock(key)
	return c.remove(c.labelPath(key, code))
}

// WriteBatchPDF fills the tenant's batch PDF slot. Caller holds the lock.
func (c *Cache) WriteBatchPDF(key boxcommon.TenantKey, data []byte) apperrors.Error {
	return c.write(c.BatchPDFPath(key), data)
}

func (c *Cache) ReadBatchPDF(key boxcommon.TenantKey) ([]byte, apperrors.Error) {
	return c.read(c.BatchPDFPath(key))
}

// DeleteBatchPDF clears the tenant's batch PDF slot.
func (c *Cache) DeleteBatchPDF(key boxcommon.TenantKey) apperrors.Error {
	c.locks.Lock(key)
	defer c.locks.Unlock(key)
	return c.remove(c.BatchPDFPath(key))
}

// WriteArchive fills the tenant's archive slot. Caller holds the lock.
func (c *Cache) WriteArchive(key boxcommon.TenantKey, data []byte) apperrors.Error {
	return c.write(c.ArchivePath(key), data)
}

func (c *Cache) ReadArchive(key boxcommon.TenantKey) ([]byte, apperrors.Error) {
	return c.read(c.ArchivePath(key))
}

// DeleteArchive clears the tenant's archive slot.
func (c *Cache) DeleteArchive(key boxcommon.TenantKey) apperrors.Error {
	c.locks.Lock(key)
	defer c.locks.Unlock(key)
	return c.remove(c.ArchivePath(key))
}
