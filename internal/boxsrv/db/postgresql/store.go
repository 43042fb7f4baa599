// Package postgresql implements db.AssetStore on PostgreSQL. A tenant
// namespace is a schema named from the tenant key holding a single assets
// table; the access grant is a per-tenant role limited to select, insert
// and update on that table; credentials are registered in a shared
// box_tenants table.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/db"
	"github.com/stargods/boxcode/internal/boxsrv/db/dberror"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

type store struct {
	db *sql.DB
}

var _ db.AssetStore = (*store)(nil)

// NewAssetStore opens a connection pool against dsn and prepares the shared
// credential table. Connection establishment is retried with backoff, so
// the server can come up before the database does.
func NewAssetStore(dsn string) (db.AssetStore, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Error().Err(err).Msg("failed to open db")
		return nil, err
	}

	err = retry.Do(
		func() error {
			return sqlDB.Ping()
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Uint("attempt", n).Err(err).Msg("db not reachable, retrying")
		}),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to ping db")
		return nil, err
	}

	s := &store{db: sqlDB}
	if err := s.ensureCredentialTable(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *store) ensureCredentialTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS box_tenants (
			tenant_key TEXT PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		log.Error().Err(err).Msg("failed to create credential table")
	}
	return err
}

func (s *store) Close() {
	s.db.Close()
}

// schemaName returns the quoted schema identifier for a tenant key. Keys
// are hex strings, but quoting keeps the DDL safe regardless.
func schemaName(key boxcommon.TenantKey) string {
	return pq.QuoteIdentifier("t_" + key.String())
}

// roleName returns the quoted role identifier for a tenant key.
func roleName(key boxcommon.TenantKey) string {
	return pq.QuoteIdentifier("r_" + key.String())
}

// assetsTable returns the fully qualified, quoted assets table name for a
// tenant key.
func assetsTable(key boxcommon.TenantKey) string {
	return fmt.Sprintf("%s.assets", schemaName(key))
}

func requireKey(ctx context.Context, key boxcommon.TenantKey) apperrors.Error {
	if !key.IsValid() {
		log.Ctx(ctx).Error().Msg("missing tenant key")
		return dberror.ErrMissingTenantKey
	}
	return nil
}
