package experiment

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/drevalgo/core/model"
	"github.com/YuminosukeSato/drevalgo/pkg/errors"
)

// Objective scores one hyperparameter configuration; lower is better. It must
// be a pure function of its input so that sequential and parallel tuning
// select the same configuration.
type Objective func(hyperparameters model.Hyperparameters) (float64, error)

// Tuner selects the best configuration from a candidate set. Ties are broken
// by iteration order: the first configuration reaching the lowest score wins.
type Tuner interface {
	Tune(hpamSet []model.Hyperparameters, objective Objective) (model.Hyperparameters, error)
}

// SequentialTuner walks the grid in order, keeping the configuration with
// the strictly lowest score seen so far.
type SequentialTuner struct{}

// Tune implements Tuner.
func (SequentialTuner) Tune(hpamSet []model.Hyperparameters, objective Objective) (model.Hyperparameters, error) {
	if len(hpamSet) == 0 {
		return nil, errors.NewValueError("SequentialTuner.Tune", "empty hyperparameter set")
	}

	var best model.Hyperparameters
	bestScore := 0.0
	for i, hpams := range hpamSet {
		score, err := objective(hpams)
		if err != nil {
			return nil, errors.Wrapf(err, "trial %d", i)
		}
		if best == nil || score < bestScore {
			best = hpams
			bestScore = score
		}
	}
	return best, nil
}

// ParallelTuner evaluates all configurations concurrently and reduces the
// scores in index order, so for a deterministic objective it returns exactly
// the configuration SequentialTuner would. Trials share no state: each
// objective call receives its own inputs.
type ParallelTuner struct {
	// MaxWorkers bounds concurrent trials. Zero means GOMAXPROCS.
	MaxWorkers int
}

// Tune implements Tuner.
func (t ParallelTuner) Tune(hpamSet []model.Hyperparameters, objective Objective) (model.Hyperparameters, error) {
	if len(hpamSet) == 0 {
		return nil, errors.NewValueError("ParallelTuner.Tune", "empty hyperparameter set")
	}

	workers := t.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	scores := make([]float64, len(hpamSet))
	var g errgroup.Group
	g.SetLimit(workers)
	for i, hpams := range hpamSet {
		g.Go(func() error {
			score, err := objective(hpams)
			if err != nil {
				return errors.Wrapf(err, "trial %d", i)
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bestIdx := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] < scores[bestIdx] {
			bestIdx = i
		}
	}
	return hpamSet[bestIdx], nil
}
