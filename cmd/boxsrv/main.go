package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/stargods/boxcode/internal/boxsrv/apis"
	"github.com/stargods/boxcode/internal/boxsrv/archive"
	"github.com/stargods/boxcode/internal/boxsrv/artifacts"
	"github.com/stargods/boxcode/internal/boxsrv/boxcommon"
	"github.com/stargods/boxcode/internal/boxsrv/catalog"
	"github.com/stargods/boxcode/internal/boxsrv/config"
	"github.com/stargods/boxcode/internal/boxsrv/db"
	"github.com/stargods/boxcode/internal/boxsrv/db/memory"
	"github.com/stargods/boxcode/internal/boxsrv/db/postgresql"
	"github.com/stargods/boxcode/internal/boxsrv/document"
	"github.com/stargods/boxcode/internal/boxsrv/registry"
	"github.com/stargods/boxcode/internal/boxsrv/server"
	"github.com/stargods/boxcode/internal/boxsrv/tenant"
	"github.com/stargods/boxcode/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger()
}

type cmdoptions struct {
	configFile *string
}

func main() {
	slog := log.With().Str("state", "init").Logger()
	opt := parseFlags()

	slog.Info().Str("config_file", *opt.configFile).Msg("loading config file")
	if err := config.LoadConfig(*opt.configFile); err != nil {
		slog.Error().Str("config_file", *opt.configFile).Err(err).Msg("unable to load config file")
		os.Exit(1)
	}
	if config.Config().ServerPort == "" {
		slog.Error().Msg("server port not defined")
		os.Exit(1)
	}

	store, err := openStore()
	if err != nil {
		slog.Error().Err(err).Msg("unable to open asset store")
		os.Exit(1)
	}
	defer store.Close()

	seed, aerr := catalog.LoadFile(config.Config().SeedCatalog)
	if aerr != nil {
		slog.Error().Err(aerr).Str("path", config.Config().SeedCatalog).Msg("unable to load seed catalog")
		os.Exit(1)
	}
	slog.Info().Int("rows", len(seed)).Msg("seed catalog loaded")

	locks := boxcommon.NewKeyedMutex()
	cache, err := artifacts.NewCache(config.Config().ArtifactRoot, locks)
	if err != nil {
		slog.Error().Err(err).Msg("unable to prepare artifact cache")
		os.Exit(1)
	}

	reg := registry.NewRegistry(store)
	handler := &apis.Handler{
		Registry: reg,
		Tenants:  tenant.NewManager(store, seed, locks),
		Document: document.NewBuilder(reg, cache),
		Archive:  archive.NewBuilder(reg, cache),
		Cache:    cache,
	}

	s, err := server.CreateNewServer(handler)
	if err != nil {
		slog.Error().Err(err).Msg("Unable to create server")
		os.Exit(1)
	}
	s.MountHandlers()
	slog.Info().Str("port", config.Config().ServerPort).Msg("starting server")
	if err := http.ListenAndServe(":"+config.Config().ServerPort, s.Router); err != nil {
		slog.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func openStore() (db.AssetStore, error) {
	switch config.Config().Store {
	case "memory":
		return memory.NewAssetStore(), nil
	case "postgres":
		return postgresql.NewAssetStore(config.Config().DBDsn)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", config.Config().Store)
	}
}

func parseFlags() cmdoptions {
	var opt cmdoptions
	opt.configFile = flag.String("config", "", "Path to the config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options]\n\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
	}
	flag.Parse()
	return opt
}
