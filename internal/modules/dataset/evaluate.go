// README: Offline model evaluation: mean absolute error over a labelled dataset.
package dataset

import (
	"context"
	"errors"
	"math"

	"golang.org/x/sync/errgroup"

	"deliveryeta/internal/modules/features"
)

// DefaultMAEThreshold is the acceptance bar for a model, in minutes.
const DefaultMAEThreshold = 5.0

var ErrNoScoredRows = errors.New("no rows could be scored")

type Scorer interface {
	Predict(ctx context.Context, f features.FeatureRecord) (float64, error)
}

type Report struct {
	Rows           int            `json:"rows"`
	Scored         int            `json:"scored"`
	Skipped        int            `json:"skipped"`
	SkippedByStage map[string]int `json:"skipped_by_stage"`
	MAE            float64        `json:"mae"`
}

func (r Report) Passed(threshold float64) bool {
	return r.Scored > 0 && r.MAE <= threshold
}

type scoredRow struct {
	ok     bool
	stage  string
	absErr float64
}

// Evaluate scores every row with up to workers concurrent predictions. Rows
// rejected by the pipeline or with an unparseable target are skipped; a
// scoring failure aborts the run.
func Evaluate(ctx context.Context, p *features.Pipeline, scorer Scorer, rows []Row, workers int) (Report, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]scoredRow, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range rows {
		g.Go(func() error {
			row := rows[i]
			target, err := row.Target()
			if err != nil {
				out[i] = scoredRow{stage: "target"}
				return nil
			}
			f, err := p.Transform(row.RawOrderRecord)
			if err != nil {
				out[i] = scoredRow{stage: stageOf(err)}
				return nil
			}
			y, err := scorer.Predict(ctx, f)
			if err != nil {
				return err
			}
			out[i] = scoredRow{ok: true, absErr: math.Abs(y - target)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	rep := Report{Rows: len(rows), SkippedByStage: map[string]int{}}
	var sum float64
	for _, r := range out {
		if !r.ok {
			rep.Skipped++
			rep.SkippedByStage[r.stage]++
			continue
		}
		rep.Scored++
		sum += r.absErr
	}
	if rep.Scored == 0 {
		return rep, ErrNoScoredRows
	}
	rep.MAE = sum / float64(rep.Scored)
	return rep, nil
}
