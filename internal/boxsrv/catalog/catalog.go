// Package catalog loads the seed catalog every new tenant's namespace is
// populated from. The catalog is a header-driven CSV with columns serial,
// code, name, namecode and notes; any further columns (the legacy URL
// column) are ignored.
package catalog

import (
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/stargods/boxcode/internal/boxsrv/db/models"
	"github.com/stargods/boxcode/internal/common/apperrors"
)

var (
	ErrCatalog        apperrors.Error = apperrors.New("catalog error").SetStatusCode(http.StatusInternalServerError)
	ErrCatalogFormat  apperrors.Error = ErrCatalog.New("malformed catalog")
	ErrCatalogMissing apperrors.Error = ErrCatalog.New("catalog file not found")
)

var requiredColumns = []string{"serial", "code", "name", "namecode", "notes"}

// SeedRow is one catalog entry before it becomes an asset record.
type SeedRow struct {
	Serial   int
	Code     string
	Name     string
	NameCode string
	Notes    string
}

// LoadFile reads the catalog at path.
func LoadFile(path string) ([]SeedRow, apperrors.Error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrCatalogMissing.Err(err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses catalog rows from r.
func Load(r io.Reader) ([]SeedRow, apperrors.Error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // extra columns tolerated

	header, err := reader.Read()
	if err != nil {
		return nil, ErrCatalogFormat.MsgErr("missing header row", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, ErrCatalogFormat.Msg("missing column: " + name)
		}
	}

	var rows []SeedRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, ErrCatalogFormat.Err(err)
		}
		field := func(name string) string {
			i := cols[name]
			if i >= len(record) {
				return ""
			}
			return record[i]
		}
		serial, err := strconv.Atoi(field("serial"))
		if err != nil {
			return nil, ErrCatalogFormat.MsgErr("invalid serial: "+field("serial"), err)
		}
		if field("code") == "" {
			return nil, ErrCatalogFormat.Msg("empty code in catalog row")
		}
		rows = append(rows, SeedRow{
			Serial:   serial,
			Code:     field("code"),
			Name:     field("name"),
			NameCode: field("namecode"),
			Notes:    field("notes"),
		})
	}
	if len(rows) == 0 {
		return nil, ErrCatalogFormat.Msg("catalog has no rows")
	}
	return rows, nil
}

// Assets converts catalog rows into the seed records a fresh namespace
// receives: empty contents, not in use.
func Assets(rows []SeedRow) []models.Asset {
	assets := make([]models.Asset, 0, len(rows))
	for _, row := range rows {
		assets = append(assets, models.Asset{
			Serial:   row.Serial,
			Code:     row.Code,
			Name:     row.Name,
			NameCode: row.NameCode,
			Contents: []string{},
			Notes:    row.Notes,
			InUse:    false,
		})
	}
	return assets
}
