package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deliveryeta/internal/modules/dataset"
	"deliveryeta/internal/modules/scoring"
)

var (
	maeThreshold float64
	evalWorkers  int
)

func init() {
	evaluateCmd.Flags().Float64Var(&maeThreshold, "threshold", dataset.DefaultMAEThreshold, "maximum acceptable mean absolute error (minutes)")
	evaluateCmd.Flags().IntVar(&evalWorkers, "workers", runtime.NumCPU(), "concurrent predictions")
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate labelled.csv",
	Short: "score a labelled dataset and fail if the mean absolute error exceeds the threshold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPipeline()
		if err != nil {
			return err
		}
		artifact, err := loadModel(p)
		if err != nil {
			return err
		}
		rows, err := readDataset(args[0])
		if err != nil {
			return err
		}

		rep, err := dataset.Evaluate(cmd.Context(), p, scoring.NewService(artifact), rows, evalWorkers)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}

		if !rep.Passed(maeThreshold) {
			return fmt.Errorf("model %s/%s failed: mae %.3f > %.3f", artifact.Name, artifact.Version, rep.MAE, maeThreshold)
		}
		logger.Info("model passed evaluation",
			zap.String("model", artifact.Name),
			zap.String("version", artifact.Version),
			zap.Float64("mae", rep.MAE),
		)
		return nil
	},
}
