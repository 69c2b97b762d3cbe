package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phdjsep/aacr-genie/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a finished result database over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfg.Database.Path); err != nil {
			return fmt.Errorf("result database %s not found, run `genie run` first: %w",
				cfg.Database.Path, err)
		}

		srv := server.New(cfg.Database.Path,
			cfg.Analysis.GenesOfInterest, cfg.Analysis.Indications, logger)
		logger.Info("serving result database",
			zap.String("db", cfg.Database.Path),
			zap.String("addr", cfg.Server.Addr))
		return srv.Run(cfg.Server.Addr)
	},
}
