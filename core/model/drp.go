// Package model provides the capability interfaces shared by all drug
// response prediction models. The experiment runner only depends on these
// interfaces; concrete models (linear baselines, boosting, neural variants)
// live in their own packages.
package model

import (
	"github.com/YuminosukeSato/drevalgo/dataset"
)

// Hyperparameters is one hyperparameter configuration of a model.
// Keys and value types are model-specific.
type Hyperparameters map[string]interface{}

// DRPModel is the contract every drug response prediction model fulfils.
//
// A model predicts a scalar response for a (cell line, drug) pair from the
// feature views of both entities. Training consumes a response dataset as the
// target; prediction returns one value per requested pair, in order.
type DRPModel interface {
	// ModelName returns the name used for result directories and logging.
	ModelName() string

	// EarlyStopping reports whether the model consumes an early-stopping
	// dataset during training. When true, the runner carves one out of the
	// validation set.
	EarlyStopping() bool

	// HyperparameterSet returns the candidate configurations for tuning,
	// in the order the tuner should consider them.
	HyperparameterSet() []Hyperparameters

	// CellLineFeatures loads the cell line feature views from path.
	CellLineFeatures(path string) (*dataset.FeatureDataset, error)

	// DrugFeatures loads the drug feature views from path.
	DrugFeatures(path string) (*dataset.FeatureDataset, error)

	// Train fits the model on output (the training responses) using the
	// given feature inputs and hyperparameters. outputEarlyStopping may be
	// nil; models that report EarlyStopping() == true receive it when
	// available.
	Train(cellLineInput, drugInput *dataset.FeatureDataset, output *dataset.ResponseDataset, hyperparameters Hyperparameters, outputEarlyStopping *dataset.ResponseDataset) error

	// Predict returns one predicted response per (cellLineIDs[i], drugIDs[i])
	// pair. Every id must be present in the corresponding feature input.
	Predict(cellLineIDs, drugIDs []string, cellLineInput, drugInput *dataset.FeatureDataset) ([]float64, error)
}

// Cloner is an optional capability. Models implementing it can be tuned with
// the parallel tuner: each trial trains its own clone, so trials share no
// mutable state. Models without it are tuned sequentially.
type Cloner interface {
	Clone() DRPModel
}
