// Package log defines standard attribute keys for experiment logging.
//
// Using these keys consistently makes prediction runs easy to filter and
// compare across models, split modes and folds.

package log

// Model and experiment context.
const (
	// ModelNameKey identifies the drug response prediction model.
	// Examples: "LinearRegression", "GradientBoost"
	ModelNameKey = "model.name"

	// RunIDKey identifies one invocation of the experiment suite.
	RunIDKey = "experiment.run_id"

	// SplitModeKey records the cross-validation mode ("LPO", "LCO", "LDO").
	SplitModeKey = "cv.mode"

	// SplitIndexKey records the zero-based fold index.
	SplitIndexKey = "cv.split"

	// RandomizationTestKey names the active randomization test, if any.
	RandomizationTestKey = "randomization.test"

	// ViewKey names the feature view being processed or perturbed.
	ViewKey = "feature.view"
)

// Data shape and results.
const (
	// SamplesKey indicates the number of response rows being processed.
	SamplesKey = "data.samples"

	// RMSEKey records the validation or test RMSE.
	RMSEKey = "metrics.rmse"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// SeedKey records the random seed for reproducibility.
	SeedKey = "config.random_seed"
)
