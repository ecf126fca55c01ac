// Package metrics provides the regression metrics and the evaluation entry
// point used to score drug response predictions.
package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/drevalgo/dataset"
	"github.com/YuminosukeSato/drevalgo/pkg/errors"
)

// Metric names accepted by Evaluate.
const (
	MetricMSE      = "mse"
	MetricRMSE     = "rmse"
	MetricMAE      = "mae"
	MetricR2       = "r2"
	MetricPearson  = "pcc"
	MetricSpearman = "scc"
)

// Evaluate reduces the predictions attached to a response dataset to one
// scalar per requested metric. The dataset must carry predictions.
func Evaluate(d *dataset.ResponseDataset, metricNames []string) (map[string]float64, error) {
	if !d.HasPredictions() {
		return nil, errors.NewValueError("Evaluate", "dataset has no predictions")
	}
	if d.Len() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Evaluate")
	}

	yTrue := mat.NewVecDense(d.Len(), append([]float64(nil), d.Response...))
	yPred := mat.NewVecDense(d.Len(), append([]float64(nil), d.Predictions...))

	results := make(map[string]float64, len(metricNames))
	for _, name := range metricNames {
		var (
			score float64
			err   error
		)
		switch name {
		case MetricMSE:
			score, err = MSE(yTrue, yPred)
		case MetricRMSE:
			score, err = RMSE(yTrue, yPred)
		case MetricMAE:
			score, err = MAE(yTrue, yPred)
		case MetricR2:
			score, err = R2Score(yTrue, yPred)
		case MetricPearson:
			score, err = PearsonCorrelation(d.Response, d.Predictions)
		case MetricSpearman:
			score, err = SpearmanCorrelation(d.Response, d.Predictions)
		default:
			return nil, errors.NewConfigurationError("Evaluate", "metric", name,
				MetricMSE, MetricRMSE, MetricMAE, MetricR2, MetricPearson, MetricSpearman)
		}
		if err != nil {
			return nil, err
		}
		results[name] = score
	}
	return results, nil
}
