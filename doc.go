// Package strokepipe implements a batch training and inference pipeline for
// predicting stroke occurrence from tabular patient records.
//
// The pipeline is a single explicit flow: load and clean the raw dataset,
// split it into training and test subsets, tune the random forest's
// per-split feature count by cross-validation, fit and evaluate a final
// model on the held-out split, and refit on the full dataset for serving
// ad-hoc predictions.
//
// # Packages
//
//   - dataset: record schema, CSV loading, cleaning, splitting and summaries
//   - preprocessing: standard scaler and categorical level encoder
//   - recipe: declarative feature specification, fit once, baked everywhere
//   - ensemble: CART decision tree and random forest classifier
//   - metrics: accuracy, ROC-AUC and confusion matrix
//   - tune: cross-validated grid search with a leaderboard
//   - pipeline: the end-to-end run and the deployment predictor
//
// # Quick start
//
//	cfg := pipeline.DefaultConfig()
//	cfg.DataPath = "data/stroke.csv"
//	result, err := pipeline.Run(context.Background(), cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Report.TestAccuracy, result.Report.TestAUC)
//
// All stochastic stages (train/test split, fold assignment, bootstrap
// sampling, per-split feature sampling) are parameterized by an explicit
// seed so runs and tests are reproducible.
package strokepipe
