// Package drevalgo provides a suite for training and evaluating drug
// response prediction models under cross-validation schemes that differ in
// what is held out: random (cell line, drug) pairs, whole cell lines, or
// whole drugs.
//
// # Overview
//
// A response dataset is a set of (cell line id, drug id, response) triples;
// feature datasets map entity ids to named feature views such as gene
// expression or drug fingerprints. The experiment runner splits the response
// data, tunes each model's hyperparameters on a validation carve-out,
// retrains on the merged train and validation sets, predicts the held-out
// test set, and persists the predictions per model, split mode and fold.
// Randomization tests perturb individual feature views to estimate their
// contribution to predictive performance.
//
// # Packages
//
//   - dataset: response datasets, feature views, cross-validation splitting
//   - experiment: the end-to-end experiment runner and hyperparameter tuners
//   - metrics: regression metrics and the evaluation entry point
//   - linear: ridge regression baseline model
//   - core/model: the model capability contract
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: structured errors, warnings and logging
//
// # Quick Start
//
//	responseData, err := dataset.LoadResponseCSV("responses.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	models := []model.DRPModel{linear.NewLinearRegression()}
//	err = experiment.RunExperiment(models, responseData, experiment.Options{
//	    PathOut:     "results",
//	    RunID:       "baseline",
//	    TestMode:    dataset.LCO,
//	    FeaturePath: "features",
//	})
package drevalgo
