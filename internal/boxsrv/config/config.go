package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type ConfigParam struct {
	ServerPort string `toml:"server_port"`
	HandleCORS bool   `toml:"handle_cors"`

	// Store selects the asset store backend: "postgres" or "memory".
	Store string `toml:"store"`
	DBDsn string `toml:"db_dsn"`

	// ArtifactRoot is the directory holding generated labels, batch PDFs
	// and archives.
	ArtifactRoot string `toml:"artifact_root"`

	// SeedCatalog is the path to the CSV catalog new tenants are seeded from.
	SeedCatalog string `toml:"seed_catalog"`

	DefaultQueryLimit int `toml:"default_query_limit"`
}

var cfg *ConfigParam

func Config() *ConfigParam {
	return cfg
}

func LoadConfig(filename string) error {
	if filename == "" {
		cfg = &ConfigParam{
			ServerPort:        "8270",
			HandleCORS:        true,
			Store:             "memory",
			ArtifactRoot:      "artifacts",
			SeedCatalog:       "codes.csv",
			DefaultQueryLimit: 10,
		}
		return nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	var cp ConfigParam
	if _, err := toml.Decode(string(content), &cp); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}
	if cp.DefaultQueryLimit <= 0 {
		cp.DefaultQueryLimit = 10
	}
	if cp.Store == "" {
		cp.Store = "postgres"
	}
	cfg = &cp
	return nil
}

func init() {
	err := LoadConfig("")
	if err != nil {
		panic(err)
	}
}
