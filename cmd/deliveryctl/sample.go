package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"deliveryeta/internal/modules/dataset"
)

var predictURL string

func init() {
	sampleCmd.Flags().StringVar(&predictURL, "url", "http://127.0.0.1:8000/predict", "prediction endpoint")
}

var sampleCmd = &cobra.Command{
	Use:   "sample raw.csv",
	Short: "send one random complete row to a running server and compare with its label",
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
		var complete []dataset.Row
		for _, row := range rows {
			if _, err := row.Target(); err != nil {
				continue
			}
			if _, err := p.Transform(row.RawOrderRecord); err != nil {
				continue
			}
			complete = append(complete, row)
		}
		if len(complete) == 0 {
			return fmt.Errorf("%s has no complete rows", args[0])
		}
		row := complete[rand.IntN(len(complete))]
		target, _ := row.Target()
		fmt.Println("The target value is", target)

		body, err := json.Marshal(row.RawOrderRecord)
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, predictURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		fmt.Println("The status code for response is", resp.StatusCode)

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("prediction failed: %s", payload)
		}
		var result struct {
			Prediction float64 `json:"prediction"`
			Distance   float64 `json:"distance"`
		}
		if err := json.Unmarshal(payload, &result); err != nil {
			return err
		}
		fmt.Printf("Predicted time: %.2f min\n", result.Prediction)
		fmt.Printf("Predicted distance: %.2f km\n", result.Distance)
		return nil
	},
}
