package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/db/dberror"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

// PostgreSQL error codes the namespace operations care about.
const (
	pgDuplicateSchema   = "42P06"
	pgInvalidSchemaName = "3F000"
	pgUndefinedTable    = "42P01"
	pgDuplicateObject   = "42710"
	pgUndefinedObject   = "42704"
	pgUniqueViolation   = "23505"
)

func pgErrCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code
	}
	return ""
}

// CreateNamespace creates the tenant schema and its assets table.
func (s *store) CreateNamespace(ctx context.Context, key boxcommon.TenantKey) (err apperrors.Error) {
	if err := requireKey(ctx, key); err != nil {
		return err
	}
	tx, errdb := s.db.BeginTx(ctx, &sql.TxOptions{})
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to start transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, errdb = tx.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA %s", schemaName(key))); errdb != nil {
		if pgErrCode(errdb) == pgDuplicateSchema {
			log.Ctx(ctx).Info().Str("tenant_key", key.String()).Msg("namespace already exists")
			return dberror.ErrAlreadyExists.Msg("namespace already exists")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to create schema")
		return dberror.ErrDatabase.Err(errdb)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE %s (
			id       BIGSERIAL PRIMARY KEY,
			serial   INTEGER NOT NULL,
			code     TEXT NOT NULL UNIQUE,
			name     TEXT NOT NULL,
			namecode TEXT NOT NULL,
			contents JSONB NOT NULL DEFAULT '[]'::jsonb,
			notes    TEXT NOT NULL DEFAULT '',
			inuse    BOOLEAN NOT NULL DEFAULT false
		);
	`, assetsTable(key))
	if _, errdb = tx.ExecContext(ctx, createTable); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to create assets table")
		return dberror.ErrDatabase.Err(errdb)
	}

	if errdb = tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// DropNamespace drops the tenant schema with all records.
func (s *store) DropNamespace(ctx context.Context, key boxcommon.TenantKey) apperrors.Error {
	if err := requireKey(ctx, key); err != nil {
		return err
	}
	_, errdb := s.db.ExecContext(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schemaName(key)))
	if errdb != nil {
		if pgErrCode(errdb) == pgInvalidSchemaName {
			return dberror.ErrNotFound.Msg("namespace not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to drop schema")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// NamespaceExists checks the catalog for the tenant schema.
func (s *store) NamespaceExists(ctx context.Context, key boxcommon.TenantKey) (bool, apperrors.Error) {
	if err := requireKey(ctx, key); err != nil {
		return false, err
	}
	var one int
	errdb := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM information_schema.schemata WHERE schema_name = $1`,
		"t_"+key.String()).Scan(&one)
	if errdb == sql.ErrNoRows {
		return false, nil
	}
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to query schemata")
		return false, dberror.ErrDatabase.Err(errdb)
	}
	return true, nil
}

// GrantAccess creates the tenant role and grants it find/update/insert on
// the namespace's assets table.
func (s *store) GrantAccess(ctx context.Context, key boxcommon.TenantKey, username string) (err apperrors.Error) {
	if err := requireKey(ctx, key); err != nil {
		return err
	}
	tx, errdb := s.db.BeginTx(ctx, &sql.TxOptions{})
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to start transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, errdb = tx.ExecContext(ctx, fmt.Sprintf("CREATE ROLE %s NOLOGIN", roleName(key))); errdb != nil {
		if pgErrCode(errdb) == pgDuplicateObject {
			log.Ctx(ctx).Info().Str("tenant_key", key.String()).Msg("access grant already exists")
			return dberror.ErrAlreadyExists.Msg("access grant already exists")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to create role")
		return dberror.ErrDatabase.Err(errdb)
	}

	grants := []string{
		fmt.Sprintf("GRANT USAGE ON SCHEMA %s TO %s", schemaName(key), roleName(key)),
		fmt.Sprintf("GRANT SELECT, INSERT, UPDATE ON %s TO %s", assetsTable(key), roleName(key)),
	}
	for _, grant := range grants {
		if _, errdb = tx.ExecContext(ctx, grant); errdb != nil {
			log.Ctx(ctx).Error().Err(errdb).Msg("failed to grant access")
			return dberror.ErrDatabase.Err(errdb)
		}
	}

	if errdb = tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// RevokeAccess revokes the tenant role's privileges and drops the role.
// A missing role reports not found so deprovisioning can map it to a
// conflict instead of a raw store failure.
func (s *store) RevokeAccess(ctx context.Context, key boxcommon.TenantKey, username string) apperrors.Error {
	if err := requireKey(ctx, key); err != nil {
		return err
	}
	if _, errdb := s.db.ExecContext(ctx, fmt.Sprintf("DROP OWNED BY %s", roleName(key))); errdb != nil {
		if pgErrCode(errdb) == pgUndefinedObject {
			return dberror.ErrNotFound.Msg("access grant not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to revoke privileges")
		return dberror.ErrDatabase.Err(errdb)
	}
	if _, errdb := s.db.ExecContext(ctx, fmt.Sprintf("DROP ROLE %s", roleName(key))); errdb != nil {
		if pgErrCode(errdb) == pgUndefinedObject {
			return dberror.ErrNotFound.Msg("access grant not found")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to drop role")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// RegisterCredential records the username against the tenant key.
func (s *store) RegisterCredential(ctx context.Context, key boxcommon.TenantKey, username string) apperrors.Error {
	if err := requireKey(ctx, key); err != nil {
		return err
	}
	if username == "" {
		return dberror.ErrInvalidInput.Msg("missing username")
	}
	_, errdb := s.db.ExecContext(ctx,
		`INSERT INTO box_tenants (tenant_key, username) VALUES ($1, $2)`,
		key.String(), username)
	if errdb != nil {
		if pgErrCode(errdb) == pgUniqueViolation {
			log.Ctx(ctx).Info().Str("username", username).Msg("credential already registered")
			return dberror.ErrAlreadyExists.Msg("credential already registered")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to register credential")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// RemoveCredential deletes the username registration.
func (s *store) RemoveCredential(ctx context.Context, username string) apperrors.Error {
	if username == "" {
		return dberror.ErrInvalidInput.Msg("missing username")
	}
	res, errdb := s.db.ExecContext(ctx, `DELETE FROM box_tenants WHERE username = $1`, username)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to remove credential")
		return dberror.ErrDatabase.Err(errdb)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return dberror.ErrNotFound.Msg("credential not found")
	}
	return nil
}
