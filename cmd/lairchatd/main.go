// Command lairchatd is the engine's entrypoint: a cobra CLI exposing the
// `serve` command plus `admin` bookkeeping subcommands. Run with no
// subcommand, it prints usage.
// Grounded on tinode-db/main.go's cobra-free flag parsing generalized to
// spf13/cobra, the dependency the rest of the pack (RoseWrightdev,
// element-hq-dendrite) reaches for instead.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/berrym/lair-chat/internal/auth"
	"github.com/berrym/lair-chat/internal/config"
	"github.com/berrym/lair-chat/internal/logging"
	"github.com/berrym/lair-chat/internal/store"
	"github.com/berrym/lair-chat/internal/store/memory"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lairchatd",
		Short: "The Lair chat engine",
	}
	root.AddCommand(serveCmd(), adminCmd())
	return root
}

// openStore builds the storage adapter named in spec.md §1/§4.1. Only the
// in-memory/bleve reference adapter ships with this rewrite (see
// DESIGN.md); cfg.DatabaseURL is accepted and logged but not yet consulted
// to select a different backend.
func openStore(cfg *config.Config) (store.Store, func() error, error) {
	if cfg.DatabaseURL != "" {
		logging.L().Warn("DATABASE_URL is set but only the in-memory reference adapter is wired; ignoring")
	}
	adapter, err := memory.New()
	if err != nil {
		return nil, nil, err
	}
	return adapter, adapter.Close, nil
}

// bootstrap loads config, initializes logging, opens the store, and
// bootstraps the admin account. Shared by serve and every admin subcommand.
// Each call opens a fresh in-memory store, so an admin subcommand run as its
// own process does not see the accounts or rooms of a running serve.
func bootstrap() (*config.Config, store.Store, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := logging.Initialize(cfg.Development); err != nil {
		return nil, nil, nil, err
	}

	st, closeFn, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx := cmdContext()
	if err := auth.BootstrapAdmin(ctx, st.Users(), cfg.AdminUser, cfg.AdminPass); err != nil {
		return nil, nil, nil, err
	}

	return cfg, st, closeFn, nil
}
