// Package experiment drives the drug response prediction experiments: it
// splits the response data, tunes each model's hyperparameters, retrains on
// the merged train and validation sets, predicts the held-out test set,
// optionally runs feature randomization tests, and persists all prediction
// datasets under a per-run directory tree.
package experiment

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/YuminosukeSato/drevalgo/core/model"
	"github.com/YuminosukeSato/drevalgo/dataset"
	"github.com/YuminosukeSato/drevalgo/metrics"
	"github.com/YuminosukeSato/drevalgo/pkg/errors"
	"github.com/YuminosukeSato/drevalgo/pkg/log"
)

// Options configures one experiment run.
type Options struct {
	// PathOut is the root output directory; results land in PathOut/RunID.
	PathOut string
	// RunID identifies this run. Required (the config loader defaults it).
	RunID string
	// TestMode is the cross-validation mode (LPO, LCO, LDO).
	TestMode dataset.SplitMode
	// NSplits is the number of cross-validation folds. Default 5.
	NSplits int
	// ValidationRatio is the share of the train partition carved out for
	// validation, approximated as 1/round(1/ratio). Default 0.1.
	ValidationRatio float64
	// Seed drives every shuffle and perturbation in the pipeline. Zero means
	// unset and is replaced by the default 42; a run that needs an explicit
	// zero seed must pick a different value.
	Seed int64
	// Metric is the tuning metric. Default rmse.
	Metric string
	// FeaturePath is passed to the models' feature loaders.
	FeaturePath string
	// RandomizationTests maps a test name to the feature views it perturbs.
	// Empty means no randomization tests.
	RandomizationTests map[string][]string
	// RandomizationMode selects the perturbation. Default gaussian.
	RandomizationMode dataset.RandMode
	// Parallel enables concurrent hyperparameter trials for models that
	// support cloning.
	Parallel bool
	// Overwrite removes a pre-existing run directory instead of failing.
	Overwrite bool
}

func (o *Options) applyDefaults() {
	if o.NSplits == 0 {
		o.NSplits = 5
	}
	if o.ValidationRatio == 0 {
		o.ValidationRatio = 0.1
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.Metric == "" {
		o.Metric = metrics.MetricRMSE
	}
	if o.RandomizationMode == "" {
		o.RandomizationMode = dataset.RandGaussian
	}
}

// RunExperiment runs every model against the response data and saves the
// prediction datasets to disk. A failing model aborts only its own run; the
// remaining models still execute. RunExperiment returns an error when the
// output directory cannot be prepared or when every model failed.
func RunExperiment(models []model.DRPModel, responseData *dataset.ResponseDataset, opts Options) error {
	opts.applyDefaults()
	if _, err := dataset.ParseSplitMode(string(opts.TestMode)); err != nil {
		return err
	}
	if opts.RunID == "" {
		return errors.NewValidationError("run_id", "must not be empty", opts.RunID)
	}

	resultPath := filepath.Join(opts.PathOut, opts.RunID)
	if _, err := os.Stat(resultPath); err == nil {
		if !opts.Overwrite {
			return errors.Newf("results already exist at %s; set Overwrite to replace them", resultPath)
		}
		if err := os.RemoveAll(resultPath); err != nil {
			return errors.Wrap(err, "RunExperiment")
		}
	}
	if err := os.MkdirAll(resultPath, 0o755); err != nil {
		return errors.Wrap(err, "RunExperiment")
	}

	var failed []string
	for _, m := range models {
		name := m.ModelName()
		start := time.Now()
		err := errors.SafeExecute("experiment "+name, func() error {
			return runModel(m, responseData, opts, resultPath)
		})
		if err != nil {
			failed = append(failed, name)
			slog.Error("model run failed",
				log.ErrAttr(err),
				slog.String(log.ModelNameKey, name),
				slog.String(log.RunIDKey, opts.RunID),
			)
			continue
		}
		slog.Info("model run finished",
			slog.String(log.ModelNameKey, name),
			slog.String(log.RunIDKey, opts.RunID),
			slog.Int64(log.DurationMsKey, time.Since(start).Milliseconds()),
		)
	}
	if len(failed) == len(models) && len(models) > 0 {
		return errors.Newf("all models failed: %s", strings.Join(failed, ", "))
	}
	return nil
}

// runModel executes the full Split -> Tune -> FinalTrain -> Predict ->
// randomization tests -> Persist pipeline for one model.
func runModel(m model.DRPModel, responseData *dataset.ResponseDataset, opts Options, resultPath string) error {
	modelPath := filepath.Join(resultPath, m.ModelName())
	predictionsPath := filepath.Join(modelPath, "predictions")
	if err := os.MkdirAll(predictionsPath, 0o755); err != nil {
		return errors.Wrap(err, "runModel")
	}
	randomizationPath := filepath.Join(modelPath, "randomization_tests")
	if len(opts.RandomizationTests) > 0 {
		if err := os.MkdirAll(randomizationPath, 0o755); err != nil {
			return errors.Wrap(err, "runModel")
		}
	}

	hpamSet := m.HyperparameterSet()
	if len(hpamSet) == 0 {
		return errors.NewValueError("runModel", "model returned an empty hyperparameter set")
	}

	data := responseData.Copy()
	splits, err := data.SplitDataset(opts.NSplits, opts.TestMode, true, opts.ValidationRatio, opts.Seed)
	if err != nil {
		return err
	}

	for splitIndex, fold := range splits {
		train := fold.Train
		validation := fold.Validation
		test := fold.Test

		var earlyStopping *dataset.ResponseDataset
		if m.EarlyStopping() {
			validation, earlyStopping, err = dataset.SplitEarlyStopping(validation, opts.TestMode, opts.Seed)
			if err != nil {
				return err
			}
		}

		bestHpams, err := tune(m, hpamSet, train, validation, earlyStopping, opts)
		if err != nil {
			return errors.Wrapf(err, "split %d", splitIndex)
		}

		// Use the full train+validation data for the final training.
		if err := train.AddRows(validation); err != nil {
			return err
		}
		train.Shuffle(opts.Seed)

		test, err = trainAndPredict(m, bestHpams, train, test, earlyStopping, nil, nil, opts)
		if err != nil {
			return errors.Wrapf(err, "split %d", splitIndex)
		}
		if err := test.SaveCSV(filepath.Join(predictionsPath, splitFileName("", opts.TestMode, splitIndex))); err != nil {
			return err
		}
		logArgs := []any{
			slog.String(log.ModelNameKey, m.ModelName()),
			slog.String(log.SplitModeKey, string(opts.TestMode)),
			slog.Int(log.SplitIndexKey, splitIndex),
			slog.Int(log.SamplesKey, test.Len()),
			slog.Int64(log.SeedKey, opts.Seed),
		}
		if scores, err := metrics.Evaluate(test, []string{metrics.MetricRMSE}); err == nil {
			logArgs = append(logArgs, slog.Float64(log.RMSEKey, scores[metrics.MetricRMSE]))
		}
		slog.Info("test predictions saved", logArgs...)

		if len(opts.RandomizationTests) > 0 {
			if err := runRandomizationTests(m, bestHpams, train, test, earlyStopping, randomizationPath, splitIndex, opts); err != nil {
				return errors.Wrapf(err, "split %d", splitIndex)
			}
		}
	}
	return nil
}

// tune selects the best hyperparameters for the fold. Each trial works on its
// own dataset copies, so the shared fold data stays read-only. The parallel
// tuner is only used when the model supports cloning; otherwise trials would
// race on the model's internal state and the tuner falls back to sequential.
func tune(m model.DRPModel, hpamSet []model.Hyperparameters, train, validation, earlyStopping *dataset.ResponseDataset, opts Options) (model.Hyperparameters, error) {
	cloner, canClone := m.(model.Cloner)

	objective := func(hpams model.Hyperparameters) (float64, error) {
		trial := m
		if canClone {
			trial = cloner.Clone()
		}
		return trainAndEvaluate(trial, hpams, train.Copy(), validation.Copy(), copyOf(earlyStopping), opts)
	}

	var tuner Tuner = SequentialTuner{}
	if opts.Parallel {
		if canClone {
			tuner = ParallelTuner{}
		} else {
			errors.Warn(errors.Newf("model %s does not support cloning; tuning sequentially", m.ModelName()))
		}
	}
	return tuner.Tune(hpamSet, objective)
}

// trainAndEvaluate trains with the given hyperparameters and scores the
// validation predictions with the tuning metric.
func trainAndEvaluate(m model.DRPModel, hpams model.Hyperparameters, train, validation, earlyStopping *dataset.ResponseDataset, opts Options) (float64, error) {
	validation, err := trainAndPredict(m, hpams, train, validation, earlyStopping, nil, nil, opts)
	if err != nil {
		return 0, err
	}
	scores, err := metrics.Evaluate(validation, []string{opts.Metric})
	if err != nil {
		return 0, err
	}
	return scores[opts.Metric], nil
}

// trainAndPredict trains the model and attaches predictions to the prediction
// dataset. The datasets are first reduced to the ids present in both feature
// stores; a missing id after that point is a data-integrity failure reported
// by the feature store itself, not silently dropped here.
func trainAndPredict(m model.DRPModel, hpams model.Hyperparameters, train, prediction, earlyStopping *dataset.ResponseDataset, cellLineFeatures, drugFeatures *dataset.FeatureDataset, opts Options) (*dataset.ResponseDataset, error) {
	var err error
	if cellLineFeatures == nil {
		cellLineFeatures, err = m.CellLineFeatures(opts.FeaturePath)
		if err != nil {
			return nil, err
		}
	}
	if drugFeatures == nil {
		drugFeatures, err = m.DrugFeatures(opts.FeaturePath)
		if err != nil {
			return nil, err
		}
	}

	cellLineIDs := cellLineFeatures.IDs()
	drugIDs := drugFeatures.IDs()
	train.ReduceTo(cellLineIDs, drugIDs)
	prediction.ReduceTo(cellLineIDs, drugIDs)
	if earlyStopping != nil {
		earlyStopping.ReduceTo(cellLineIDs, drugIDs)
	}

	if err := m.Train(cellLineFeatures, drugFeatures, train, hpams, earlyStopping); err != nil {
		return nil, err
	}

	predictions, err := m.Predict(prediction.CellLineIDs, prediction.DrugIDs, cellLineFeatures, drugFeatures)
	if err != nil {
		return nil, err
	}
	if err := prediction.SetPredictions(predictions); err != nil {
		return nil, err
	}
	return prediction, nil
}

// runRandomizationTests retrains the model once per (test, view) with that
// view perturbed in a copy of the owning feature store, holding the other
// store canonical, and saves each perturbed prediction set. A view found in
// neither store is skipped with a warning; the run continues.
func runRandomizationTests(m model.DRPModel, hpams model.Hyperparameters, train, test, earlyStopping *dataset.ResponseDataset, pathOut string, splitIndex int, opts Options) error {
	cellLineFeatures, err := m.CellLineFeatures(opts.FeaturePath)
	if err != nil {
		return err
	}
	drugFeatures, err := m.DrugFeatures(opts.FeaturePath)
	if err != nil {
		return err
	}

	testNames := make([]string, 0, len(opts.RandomizationTests))
	for name := range opts.RandomizationTests {
		testNames = append(testNames, name)
	}
	sort.Strings(testNames)

	for _, testName := range testNames {
		testPath := filepath.Join(pathOut, testName)
		if err := os.MkdirAll(testPath, 0o755); err != nil {
			return errors.Wrap(err, "runRandomizationTests")
		}

		for _, view := range opts.RandomizationTests[testName] {
			cellLinesRand := cellLineFeatures.Copy()
			drugsRand := drugFeatures.Copy()

			switch {
			case cellLineFeatures.HasView(view):
				if err := cellLinesRand.Randomize([]string{view}, opts.RandomizationMode, opts.Seed); err != nil {
					return err
				}
			case drugFeatures.HasView(view):
				if err := drugsRand.Randomize([]string{view}, opts.RandomizationMode, opts.Seed); err != nil {
					return err
				}
			default:
				errors.Warn(errors.NewInconsistentStateWarning(testName, view))
				continue
			}

			testRand, err := trainAndPredict(m, hpams, train.Copy(), test.Copy(), copyOf(earlyStopping), cellLinesRand, drugsRand, opts)
			if err != nil {
				return errors.Wrapf(err, "randomization test %s view %s", testName, view)
			}
			if err := testRand.SaveCSV(filepath.Join(testPath, splitFileName(view, opts.TestMode, splitIndex))); err != nil {
				return err
			}
			slog.Info("randomization predictions saved",
				slog.String(log.ModelNameKey, m.ModelName()),
				slog.String(log.RandomizationTestKey, testName),
				slog.String(log.ViewKey, view),
				slog.Int(log.SplitIndexKey, splitIndex),
			)
		}
	}
	return nil
}

// splitFileName names a persisted prediction dataset. Randomization tests
// pass the perturbed view so one test covering several views does not
// overwrite its own folds.
func splitFileName(view string, mode dataset.SplitMode, splitIndex int) string {
	if view == "" {
		return fmt.Sprintf("test_dataset_%s_split_%d.csv", mode, splitIndex)
	}
	return fmt.Sprintf("test_dataset_%s_%s_split_%d.csv", view, mode, splitIndex)
}

func copyOf(d *dataset.ResponseDataset) *dataset.ResponseDataset {
	if d == nil {
		return nil
	}
	return d.Copy()
}
