package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phdjsep/aacr-genie/internal/clinical"
	"github.com/phdjsep/aacr-genie/internal/mutation"
	"github.com/phdjsep/aacr-genie/internal/report"
	"github.com/phdjsep/aacr-genie/internal/store"
	"github.com/phdjsep/aacr-genie/internal/therapy"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis pipeline and print the summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clinicalRecs, clinReport, err := clinical.Load(cfg.Inputs.ClinicalFile, logger)
		if err != nil {
			return fmt.Errorf("load clinical table: %w", err)
		}
		logger.Info("loaded clinical table",
			zap.Int("rows", clinReport.Rows),
			zap.Int("blank_age", clinReport.BlankAge),
			zap.Int("censored_young", clinReport.CensoredYoung),
			zap.Int("censored_old", clinReport.CensoredOld),
			zap.Int("unparsable_age", clinReport.UnparsableAge),
			zap.Int("unknown_centers", clinReport.UnknownCenters))

		mutationRecs, mutReport, err := mutation.Load(cfg.Inputs.MutationFile, logger)
		if err != nil {
			return fmt.Errorf("load mutation table: %w", err)
		}
		logger.Info("loaded mutation table", zap.Int("rows", mutReport.Rows))

		therapyRecs, err := therapy.Load(cfg.Inputs.TherapyHTML, cfg.Cache.TherapyFile, logger)
		if err != nil {
			return fmt.Errorf("load therapy table: %w", err)
		}
		logger.Info("loaded therapy table", zap.Int("rows", len(therapyRecs)))

		st, err := store.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Init(ctx); err != nil {
			return err
		}
		if err := st.InsertClinical(ctx, clinicalRecs); err != nil {
			return fmt.Errorf("store clinical: %w", err)
		}
		if err := st.InsertMutations(ctx, mutationRecs); err != nil {
			return fmt.Errorf("store mutations: %w", err)
		}
		if err := st.InsertTherapies(ctx, therapyRecs); err != nil {
			return fmt.Errorf("store therapies: %w", err)
		}

		pathogenic, err := st.PathogenicSummary(ctx)
		if err != nil {
			return err
		}
		counts, err := st.GeneIndicationCounts(ctx, cfg.Analysis.GenesOfInterest)
		if err != nil {
			return err
		}
		summary := report.Summarize(counts, cfg.Analysis.GenesOfInterest, cfg.Analysis.Indications)

		fmt.Println("Pathogenic mutation summary")
		report.RenderPathogenic(os.Stdout, pathogenic)
		fmt.Println()

		fmt.Println("Pathogenic samples per gene and cancer type")
		report.RenderCounts(os.Stdout, counts)
		fmt.Println()

		fmt.Println("On-label vs off-label, genes of interest")
		report.RenderLabelSummary(os.Stdout, summary)

		logger.Info("pipeline finished",
			zap.String("database", cfg.Database.Path),
			zap.Int64("pathogenic_rows", pathogenic.PathogenicRows))
		return nil
	},
}
