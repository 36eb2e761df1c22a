// README: Labelled order dataset: CSV decoding, target parsing, batch cleaning.
package dataset

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"deliveryeta/internal/modules/features"
)

// TargetColumn is the label column in the raw training data.
const TargetColumn = "Time_taken(min)"

// Row is one raw order plus its observed delivery time.
type Row struct {
	features.RawOrderRecord
	TimeTaken string `csv:"Time_taken(min)"`
}

// Target parses the label, which the raw data stores as "(min) 24".
func (r Row) Target() (float64, error) {
	s := strings.TrimSpace(r.TimeTaken)
	s = strings.TrimSpace(strings.TrimPrefix(s, "(min)"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("target %q: %w", r.TimeTaken, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("target %q is not finite", r.TimeTaken)
	}
	return v, nil
}

func Read(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return rows, nil
}

// CleanResult holds the rows that made it through the pipeline, in input order.
type CleanResult struct {
	Features       []features.FeatureRecord
	Skipped        int
	SkippedByStage map[string]int
}

// Clean runs every row through the pipeline. Rows the pipeline rejects are
// counted and dropped.
func Clean(p *features.Pipeline, rows []Row) CleanResult {
	res := CleanResult{SkippedByStage: map[string]int{}}
	for _, row := range rows {
		f, err := p.Transform(row.RawOrderRecord)
		if err != nil {
			res.Skipped++
			res.SkippedByStage[stageOf(err)]++
			continue
		}
		res.Features = append(res.Features, f)
	}
	return res
}

// WriteFeatures writes feature records as CSV with a header row.
func WriteFeatures(w io.Writer, records []features.FeatureRecord) error {
	return gocsv.Marshal(&records, w)
}

func stageOf(err error) string {
	var fde *features.FeatureDerivationError
	if errors.As(err, &fde) {
		return fde.Stage
	}
	return "unknown"
}
