package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phdjsep/aacr-genie/internal/therapy"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Tidy the scraped therapy table and refresh the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(cfg.Inputs.TherapyHTML)
		if err != nil {
			return fmt.Errorf("open therapy source: %w", err)
		}
		defer f.Close()

		raw, err := therapy.ParseHTML(f)
		if err != nil {
			return err
		}
		records := therapy.Explode(raw)
		if err := therapy.WriteCache(cfg.Cache.TherapyFile, records); err != nil {
			return err
		}
		logger.Info("therapy cache written",
			zap.String("path", cfg.Cache.TherapyFile),
			zap.Int("agents", len(raw)),
			zap.Int("rows", len(records)))
		return nil
	},
}
