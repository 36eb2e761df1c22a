package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"deliveryeta/internal/modules/scoring"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "load the model artifact, check it against the bucket scheme and print its metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPipeline()
		if err != nil {
			return err
		}
		artifact, err := loadModel(p)
		if err != nil {
			return err
		}
		info := struct {
			scoring.ModelInfo
			Width int `json:"width"`
			Trees int `json:"trees"`
		}{
			ModelInfo: scoring.NewService(artifact).Model(),
			Width:     artifact.Preprocessor.Width(),
			Trees:     len(artifact.Ensemble.Trees),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	},
}
