package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deliveryeta/internal/modules/dataset"
)

var cleanOutput string

func init() {
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "output path (defaults to stdout)")
}

var cleanCmd = &cobra.Command{
	Use:   "clean raw.csv",
	Short: "run the feature pipeline over a raw dataset and write the feature CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPipeline()
		if err != nil {
			return err
		}
		rows, err := readDataset(args[0])
		if err != nil {
			return err
		}
		res := dataset.Clean(p, rows)

		out := os.Stdout
		if cleanOutput != "" {
			out, err = os.Create(cleanOutput)
			if err != nil {
				return err
			}
			defer out.Close()
		}
		if err := dataset.WriteFeatures(out, res.Features); err != nil {
			return err
		}
		logger.Info("dataset cleaned",
			zap.Int("rows", len(rows)),
			zap.Int("kept", len(res.Features)),
			zap.Int("skipped", res.Skipped),
			zap.Any("skipped_by_stage", res.SkippedByStage),
		)
		return nil
	},
}
