// Package pipeline wires the full training flow: load and clean the raw
// dataset, hold out a test split, tune the forest's per-split feature count
// by cross-validation, evaluate the selected model on the held-out split and
// refit on everything for serving predictions.
package pipeline

import (
	"context"
	"math"

	"github.com/healthml/strokepipe/dataset"
	"github.com/healthml/strokepipe/ensemble"
	"github.com/healthml/strokepipe/metrics"
	"github.com/healthml/strokepipe/pkg/errors"
	"github.com/healthml/strokepipe/pkg/log"
	"github.com/healthml/strokepipe/recipe"
	"github.com/healthml/strokepipe/tune"
)

// Config holds every knob of one pipeline run.
type Config struct {
	// DataPath is the CSV file to train on.
	DataPath string
	// TrainProportion is the share of cleaned rows assigned to training.
	TrainProportion float64
	// Folds is the number of cross-validation folds used for tuning.
	Folds int
	// Grid holds the candidate per-split feature counts.
	Grid []int
	// Trees is the ensemble size for tuning, evaluation and deployment.
	Trees int
	// Seed drives every stochastic stage.
	Seed uint64
}

// DefaultConfig mirrors the reference analysis: a 3/4 train split, 10-fold
// tuning over mtry {3,4,5} and 500 trees.
func DefaultConfig() Config {
	return Config{
		TrainProportion: 0.75,
		Folds:           10,
		Grid:            []int{3, 4, 5},
		Trees:           500,
		Seed:            1,
	}
}

// Report summarizes one run: the tuning leaderboard, the selected
// hyperparameter and the held-out test metrics.
type Report struct {
	Rows         int
	TrainRows    int
	TestRows     int
	Summary      dataset.Summary
	Leaderboard  []tune.Row
	BestMTry     int
	TestAccuracy float64
	TestAUC      float64
	Confusion    *metrics.ConfusionMatrix
}

// Result is the outcome of Run: the evaluation report and a predictor refit
// on the full cleaned dataset, ready to serve.
type Result struct {
	Report    Report
	Predictor *Predictor
}

// Run executes the pipeline end to end.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	logger := log.For("pipeline")

	records, err := dataset.Load(cfg.DataPath)
	if err != nil {
		return nil, err
	}
	cleaned := dataset.Clean(records)
	if len(cleaned) < 2 {
		return nil, errors.NewValueError("Run", "not enough rows after cleaning")
	}
	summary := dataset.Summarize(cleaned)
	logger.Info().
		Int("rows", summary.Rows).
		Int("stroke", summary.ByStroke[dataset.Stroke]).
		Int("no_stroke", summary.ByStroke[dataset.NoStroke]).
		Msg("dataset cleaned")
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "Run")
	}

	split, err := dataset.TrainTestSplit(cleaned, cfg.TrainProportion, cfg.Seed)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("rows", len(cleaned)).
		Int("train", len(split.Train)).
		Int("test", len(split.Test)).
		Msg("dataset split")

	folds, err := dataset.KFold(len(split.Train), cfg.Folds, cfg.Seed)
	if err != nil {
		return nil, err
	}
	tuned, err := tune.GridSearch(split.Train, folds, tune.Config{
		Grid:  cfg.Grid,
		Trees: cfg.Trees,
		Seed:  cfg.Seed,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "Run")
	}

	report, err := evaluate(split, tuned, cfg)
	if err != nil {
		return nil, err
	}
	report.Rows = len(cleaned)
	report.Summary = summary

	predictor, err := NewPredictor(cleaned, tuned.BestMTry, cfg.Trees, cfg.Seed)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("best_mtry", report.BestMTry).
		Float64("test_accuracy", report.TestAccuracy).
		Float64("test_roc_auc", report.TestAUC).
		Msg("run complete")
	return &Result{Report: *report, Predictor: predictor}, nil
}

// evaluate fits the selected model on the training split and scores it on
// the held-out split. Preprocessing statistics come from the training rows
// only; the test rows are baked with them.
func evaluate(split dataset.Split, tuned *tune.Result, cfg Config) (*Report, error) {
	rec, err := recipe.Fit(split.Train)
	if err != nil {
		return nil, err
	}
	trainX, trainY, err := rec.Bake(split.Train)
	if err != nil {
		return nil, err
	}
	testX, testY, err := rec.Bake(split.Test)
	if err != nil {
		return nil, err
	}

	forest := ensemble.NewRandomForest(
		ensemble.WithNTrees(cfg.Trees),
		ensemble.WithMTry(tuned.BestMTry),
		ensemble.WithSeed(cfg.Seed),
	)
	if err := forest.Fit(trainX, trainY); err != nil {
		return nil, err
	}

	pred, err := forest.Predict(testX)
	if err != nil {
		return nil, err
	}
	proba, err := forest.PredictProba(testX)
	if err != nil {
		return nil, err
	}

	acc, err := metrics.Accuracy(testY, pred)
	if err != nil {
		return nil, err
	}
	auc, err := metrics.ROCAUC(testY, proba)
	if err != nil {
		if !errors.IsUndefinedMetric(err) {
			return nil, err
		}
		// A single-class test split leaves the AUC undefined; report it
		// as NaN rather than failing the run.
		log.For("pipeline").Warn().Err(err).Msg("test roc_auc undefined")
		auc = math.NaN()
	}
	cm, err := metrics.NewConfusionMatrix(testY, pred)
	if err != nil {
		return nil, err
	}

	return &Report{
		TrainRows:    len(split.Train),
		TestRows:     len(split.Test),
		Leaderboard:  tuned.Leaderboard,
		BestMTry:     tuned.BestMTry,
		TestAccuracy: acc,
		TestAUC:      auc,
		Confusion:    cm,
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.DataPath == "" {
		return errors.NewValidationError("data_path", "must not be empty", "")
	}
	if cfg.TrainProportion <= 0 || cfg.TrainProportion >= 1 {
		return errors.NewValidationError("train_proportion", "must be in (0, 1)", cfg.TrainProportion)
	}
	if cfg.Folds < 2 {
		return errors.NewValidationError("folds", "need at least 2", cfg.Folds)
	}
	if len(cfg.Grid) == 0 {
		return errors.NewValidationError("grid", "must not be empty", cfg.Grid)
	}
	if cfg.Trees < 1 {
		return errors.NewValidationError("trees", "need at least 1", cfg.Trees)
	}
	return nil
}
