package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/berrym/lair-chat/internal/logging"
	"github.com/berrym/lair-chat/internal/server"
)

func cmdContext() context.Context {
	return context.Background()
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat engine's TCP and metrics listeners",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, st, closeStore, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() {
				if err := closeStore(); err != nil {
					logging.L().Warn("error closing store on shutdown")
				}
			}()

			srv, err := server.New(cfg, st)
			if err != nil {
				return err
			}
			return srv.Run(cmdContext())
		},
	}
}
