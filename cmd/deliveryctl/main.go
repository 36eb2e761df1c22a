// README: deliveryctl: offline tooling for the prediction service (sample, evaluate, clean, model, route).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"deliveryeta/internal/config"
	"deliveryeta/internal/infra"
	"deliveryeta/internal/modules/dataset"
	"deliveryeta/internal/modules/features"
	"deliveryeta/internal/modules/scoring"
)

var (
	modelPath    string
	bucketScheme string
	logger       *zap.Logger
	cfg          config.Config
)

var rootCmd = &cobra.Command{
	Use:          "deliveryctl",
	Short:        "tools for the delivery time prediction service",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		if !cmd.Flags().Changed("model") {
			modelPath = cfg.Model.Path
		}
		if !cmd.Flags().Changed("scheme") {
			bucketScheme = cfg.Model.BucketScheme
		}
		logger = infra.NewLogger(cfg.Log.Level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modelPath, "model", config.DefaultModelPath, "model artifact path (default from DELIVERY_MODEL_PATH)")
	rootCmd.PersistentFlags().StringVar(&bucketScheme, "scheme", config.DefaultBucketScheme, "bucket scheme version (default from DELIVERY_BUCKET_SCHEME)")
	rootCmd.AddCommand(sampleCmd, evaluateCmd, cleanCmd, modelCmd, routeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadPipeline() (*features.Pipeline, error) {
	scheme, err := features.LookupScheme(bucketScheme)
	if err != nil {
		return nil, err
	}
	return features.NewPipeline(scheme)
}

// loadModel loads the artifact and checks it against the pipeline's scheme.
func loadModel(p *features.Pipeline) (*scoring.Artifact, error) {
	artifact, err := scoring.LoadFile(modelPath)
	if err != nil {
		return nil, err
	}
	if err := artifact.CheckScheme(p.Scheme()); err != nil {
		return nil, err
	}
	return artifact, nil
}

func readDataset(path string) ([]dataset.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rows, err := dataset.Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}
