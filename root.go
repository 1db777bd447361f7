// driveshelf is a CLI for the content-store indexing library: it lists
// the categorized collections (newsletters, recordings, resources,
// committee files), browses folder trees, and offers cache and overlay
// maintenance commands for administrators.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/driveshelf/driveshelf/internal/auth"
	"github.com/driveshelf/driveshelf/internal/cache"
	"github.com/driveshelf/driveshelf/internal/config"
	"github.com/driveshelf/driveshelf/internal/drive"
	"github.com/driveshelf/driveshelf/internal/index"
	"github.com/driveshelf/driveshelf/internal/overlay"
	"github.com/driveshelf/driveshelf/internal/tree"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// newRootCmd builds and returns the fully-assembled root command with
// all subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "driveshelf",
		Short:   "Content-store listing and cache tool",
		Long:    "driveshelf indexes a remote content store into categorized, cached collections.",
		Version: version,
		// Silence Cobra's default error/usage printing — main handles it.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newNewslettersCmd())
	cmd.AddCommand(newRecordingsCmd())
	cmd.AddCommand(newResourcesCmd())
	cmd.AddCommand(newCommitteeCmd())
	cmd.AddCommand(newTreeCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newCacheCmd())
	cmd.AddCommand(newOverlayCmd())

	return cmd
}

// app holds the wired-up composition root for one command invocation.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *drive.Client
	token   *auth.TokenSource
	cache   *cache.Cache
	overlay overlay.Source
	indexer *index.Indexer
	tree    *tree.Builder

	closers []func() error
}

// close releases resources opened during wiring.
func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", slog.String("error", err.Error()))
		}
	}
}

// buildApp loads configuration and wires the full stack: signer → token
// source → listing client → cache → overlay → indexer and tree builder.
// Commands that only need a subset still pay one cheap wiring pass.
func buildApp(ctx context.Context) (*app, error) {
	cfgPath := flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv(config.EnvConfig)
	}

	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}

	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Logging)

	a := &app{cfg: cfg, logger: logger}

	httpClient := &http.Client{Timeout: cfg.Network.TimeoutDuration()}

	if cfg.ServiceAccount.Configured() {
		signer, err := auth.NewSigner(auth.Credentials{
			ClientEmail:  cfg.ServiceAccount.ClientEmail,
			PrivateKey:   cfg.ServiceAccount.PrivateKey,
			PrivateKeyID: cfg.ServiceAccount.PrivateKeyID,
		}, "", "")
		if err != nil {
			return nil, err
		}

		a.token = auth.NewTokenSource(signer, "", httpClient, logger)
		a.client = drive.NewClient("", httpClient, a.token, logger, cfg.Network.UserAgent)
	}

	var store cache.Store
	if cfg.Cache.Enabled && cfg.Cache.Path != "" {
		sqliteStore, err := cache.OpenSQLite(ctx, cfg.Cache.Path, logger)
		if err != nil {
			// Degrade to uncached operation rather than failing the
			// command.
			logger.Warn("cache store unavailable, running uncached",
				slog.String("path", cfg.Cache.Path),
				slog.String("error", err.Error()),
			)
		} else {
			store = sqliteStore
			a.closers = append(a.closers, sqliteStore.Close)
		}
	} else if cfg.Cache.Enabled {
		store = cache.NewMemory()
	}

	a.cache = cache.New(store, cfg.Cache.TTLDuration(), logger)

	if cfg.Cache.Path != "" {
		overlayStore, err := overlay.OpenSQLite(ctx, cfg.Cache.Path, logger)
		if err != nil {
			logger.Warn("overlay store unavailable, listings render without overrides",
				slog.String("path", cfg.Cache.Path),
				slog.String("error", err.Error()),
			)
		} else {
			a.overlay = overlayStore
			a.closers = append(a.closers, overlayStore.Close)
		}
	}

	// A typed-nil *drive.Client must not reach the interface fields —
	// the consumers check for interface nil to detect "no credentials".
	var lister index.Lister
	if a.client != nil {
		lister = a.client
	}

	a.indexer = index.New(lister, a.cache, a.overlay, index.Folders{
		Newsletters: cfg.Folders.Newsletters,
		Recordings:  cfg.Folders.Recordings,
		Resources:   cfg.Folders.Resources,
		Committees:  cfg.Folders.Committees,
	}, logger)

	var treeLister tree.Lister
	if a.client != nil {
		treeLister = a.client
	}

	a.tree = tree.NewBuilder(treeLister, a.overlay, cfg.Tree.MaxDepth, cfg.Tree.ParallelLists, logger)

	return a, nil
}

// newLogger builds the slog logger from config and the --verbose flag.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo

	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
