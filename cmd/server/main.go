// Command server runs the warren LLM provider gateway.
//
// Configuration is layered: built-in defaults, a YAML config file
// (-config flag, WARREN_CONFIG, ./config.yaml, /etc/warren/config.yaml),
// then WARREN_* environment overrides. See pkg/config for the full
// reference.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rabbithole-ai/warren/pkg/auth"
	"github.com/rabbithole-ai/warren/pkg/auth/apikey"
	"github.com/rabbithole-ai/warren/pkg/config"
	"github.com/rabbithole-ai/warren/pkg/debug"
	"github.com/rabbithole-ai/warren/pkg/dispatch"
	"github.com/rabbithole-ai/warren/pkg/gateway"
	"github.com/rabbithole-ai/warren/pkg/keyring"
	"github.com/rabbithole-ai/warren/pkg/storage"
	"github.com/rabbithole-ai/warren/pkg/storage/memory"
	"github.com/rabbithole-ai/warren/pkg/storage/postgres"
	"github.com/rabbithole-ai/warren/pkg/storage/sqlite"
	"github.com/rabbithole-ai/warren/pkg/transport"
	transporthttp "github.com/rabbithole-ai/warren/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	debug.Init(cfg.Logging.Debug, cfg.Logging.Level)
	logger := slog.Default()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Storage.Type, err)
	}
	defer store.Close()

	ring := keyring.New()

	client := dispatch.NewClient(dispatch.Config{
		BaseURL: cfg.Dispatch.BackendURL,
		APIKey:  cfg.Dispatch.APIKey,
		Timeout: cfg.Dispatch.Timeout,
	}, ring)
	defer client.Close()

	gw, err := gateway.New(store, client, ring, gateway.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	// Make stored credentials available to dispatch before serving.
	syncCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = gw.SyncCredentials(syncCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("initial credential sync: %w", err)
	}

	var extra []transport.Middleware
	if mw, err := authMiddleware(cfg); err != nil {
		return err
	} else if mw != nil {
		extra = append(extra, mw)
	}

	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metricsPath = cfg.Observability.Metrics.Path
	}

	srv := transporthttp.NewServer(gw, extra,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithMetricsPath(metricsPath),
		transporthttp.WithLogger(logger),
	)

	logger.Info("warren starting",
		"port", cfg.Server.Port,
		"backend", cfg.Dispatch.BackendURL,
		"storage", cfg.Storage.Type,
		"auth", cfg.Auth.Type)

	return srv.ListenAndServe()
}

// openStore builds the provider store named by the configuration.
func openStore(cfg *config.Config) (storage.ProviderStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.Storage.Type {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(ctx, cfg.Storage.SQLite.Path)
	case "postgres":
		return postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// authMiddleware builds the auth chain from configuration. Returns nil
// when authentication is disabled.
func authMiddleware(cfg *config.Config) (transport.Middleware, error) {
	if cfg.Auth.Type != "apikey" {
		return nil, nil
	}

	entries := make([]apikey.RawKeyEntry, 0, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		entries = append(entries, apikey.RawKeyEntry{
			Key:      k.Key,
			Identity: auth.Identity{Subject: k.Subject},
		})
	}

	chain := &auth.AuthChain{
		Authenticators:  []auth.Authenticator{apikey.New(entries)},
		DefaultDecision: auth.No,
	}
	return auth.Middleware(chain, auth.DefaultBypassEndpoints), nil
}
