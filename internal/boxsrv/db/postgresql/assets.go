package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgtype"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"

	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/db/dberror"
	"github.com/stargods/boxcode/internal/boxsrv/db/models"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const assetColumns = "id, serial, code, name, namecode, contents, notes, inuse"

// mapNamespaceErr converts "schema/table missing" failures into the
// unknown-namespace error: a record operation against a key without a
// namespace is an authorization failure, not a server fault.
func mapNamespaceErr(err error) apperrors.Error {
	switch pgErrCode(err) {
	case pgInvalidSchemaName, pgUndefinedTable:
		return dberror.ErrUnknownNamespace
	}
	return dberror.ErrDatabase.Err(err)
}

func contentsParam(contents []string) (pgtype.JSONB, error) {
	if contents == nil {
		contents = []string{}
	}
	b, err := json.Marshal(contents)
	if err != nil {
		return pgtype.JSONB{Status: pgtype.Null}, err
	}
	return pgtype.JSONB{Bytes: b, Status: pgtype.Present}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*models.Asset, error) {
	var a models.Asset
	var contents pgtype.JSONB
	if err := row.Scan(&a.ID, &a.Serial, &a.Code, &a.Name, &a.NameCode, &contents, &a.Notes, &a.InUse); err != nil {
		return nil, err
	}
	a.Contents = []string{}
	if contents.Status == pgtype.Present {
		if err := json.Unmarshal(contents.Bytes, &a.Contents); err != nil {
			return nil, err
		}
	}
	return &a, nil
}

// InsertAssets bulk-inserts seed records into the tenant's assets table.
func (s *store) InsertAssets(ctx context.Context, key boxcommon.TenantKey, assets []models.Asset) (err apperrors.Error) {
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

	query := fmt.Sprintf(`
		INSERT INTO %s (serial, code, name, namecode, contents, notes, inuse)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, assetsTable(key))
	for _, a := range assets {
		contents, jerr := contentsParam(a.Contents)
		if jerr != nil {
			return dberror.ErrInvalidInput.MsgErr("invalid contents", jerr)
		}
		if _, errdb = tx.ExecContext(ctx, query, a.Serial, a.Code, a.Name, a.NameCode, contents, a.Notes, a.InUse); errdb != nil {
			if pgErrCode(errdb) == pgUniqueViolation {
				log.Ctx(ctx).Error().Str("code", a.Code).Msg("duplicate code in seed")
				return dberror.ErrAlreadyExists.Msg("duplicate code: " + a.Code)
			}
			log.Ctx(ctx).Error().Err(errdb).Str("code", a.Code).Msg("failed to insert asset")
			return mapNamespaceErr(errdb)
		}
	}

	if errdb = tx.Commit(); errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to commit transaction")
		return dberror.ErrDatabase.Err(errdb)
	}
	return nil
}

// GetAssetByCode fetches one record by its exact code.
func (s *store) GetAssetByCode(ctx context.Context, key boxcommon.TenantKey, code string) (*models.Asset, apperrors.Error) {
	if err := requireKey(ctx, key); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE code = $1`, assetColumns, assetsTable(key))
	a, errdb := scanAsset(s.db.QueryRowContext(ctx, query, code))
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("no asset with code " + code)
		}
		log.Ctx(ctx).Error().Err(errdb).Str("code", code).Msg("failed to get asset")
		return nil, mapNamespaceErr(errdb)
	}
	return a, nil
}

// FindAssets runs the filter conjunction with a row limit. No ORDER BY:
// result order is whatever the store returns.
func (s *store) FindAssets(ctx context.Context, key boxcommon.TenantKey, filter *models.AssetFilter, limit int) ([]models.Asset, apperrors.Error) {
	if err := requireKey(ctx, key); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if filter != nil {
		if filter.InUse != nil {
			clauses = append(clauses, "inuse = "+arg(*filter.InUse))
		}
		if filter.Serial != nil {
			clauses = append(clauses, "serial = "+arg(*filter.Serial))
		}
		if filter.Notes != nil {
			clauses = append(clauses, "notes = "+arg(*filter.Notes))
		}
		if filter.Name != nil {
			clauses = append(clauses, "name = "+arg(*filter.Name))
		}
		if filter.ContainsItem != nil {
			item, jerr := contentsParam([]string{*filter.ContainsItem})
			if jerr != nil {
				return nil, dberror.ErrInvalidInput.MsgErr("invalid contents filter", jerr)
			}
			clauses = append(clauses, "contents @> "+arg(item))
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s", assetColumns, assetsTable(key))
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " LIMIT " + arg(limit)

	rows, errdb := s.db.QueryContext(ctx, query, args...)
	if errdb != nil {
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to query assets")
		return nil, mapNamespaceErr(errdb)
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		a, errScan := scanAsset(rows)
		if errScan != nil {
			log.Ctx(ctx).Error().Err(errScan).Msg("failed to scan asset")
			return nil, dberror.ErrDatabase.Err(errScan)
		}
		assets = append(assets, *a)
	}
	if errdb = rows.Err(); errdb != nil {
		return nil, dberror.ErrDatabase.Err(errdb)
	}
	return assets, nil
}

// FirstFreeAsset returns one record with inuse=false, store-defined order.
func (s *store) FirstFreeAsset(ctx context.Context, key boxcommon.TenantKey) (*models.Asset, apperrors.Error) {
	if err := requireKey(ctx, key); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE inuse = false LIMIT 1`, assetColumns, assetsTable(key))
	a, errdb := scanAsset(s.db.QueryRowContext(ctx, query))
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("no free asset")
		}
		log.Ctx(ctx).Error().Err(errdb).Msg("failed to get free asset")
		return nil, mapNamespaceErr(errdb)
	}
	return a, nil
}

// UpdateAssetFields overwrites notes, contents and inuse and returns the
// updated record.
func (s *store) UpdateAssetFields(ctx context.Context, key boxcommon.TenantKey, code string, m *models.AssetMutation) (*models.Asset, apperrors.Error) {
	if err := requireKey(ctx, key); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, dberror.ErrInvalidInput.Msg("missing mutation")
	}
	contents, jerr := contentsParam(m.Contents)
	if jerr != nil {
		return nil, dberror.ErrInvalidInput.MsgErr("invalid contents", jerr)
	}
	query := fmt.Sprintf(`
		UPDATE %s SET notes = $1, contents = $2, inuse = $3
		WHERE code = $4
		RETURNING %s
	`, assetsTable(key), assetColumns)
	a, errdb := scanAsset(s.db.QueryRowContext(ctx, query, m.Notes, contents, m.InUse, code))
	if errdb != nil {
		if errdb == sql.ErrNoRows {
			return nil, dberror.ErrNotFound.Msg("no asset with code " + code)
		}
		log.Ctx(ctx).Error().Err(errdb).Str("code", code).Msg("failed to update asset")
		return nil, mapNamespaceErr(errdb)
	}
	return a, nil
}
