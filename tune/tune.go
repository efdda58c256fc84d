// Package tune selects the random forest's per-split feature count by
// cross-validated grid search, scoring each candidate by accuracy and
// ROC-AUC averaged over the folds.
package tune

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/healthml/strokepipe/dataset"
	"github.com/healthml/strokepipe/ensemble"
	"github.com/healthml/strokepipe/metrics"
	"github.com/healthml/strokepipe/pkg/errors"
	"github.com/healthml/strokepipe/pkg/log"
	"github.com/healthml/strokepipe/recipe"
)

// Metric names used in the leaderboard.
const (
	MetricAccuracy = "accuracy"
	MetricROCAUC   = "roc_auc"
)

// Config controls the grid search.
type Config struct {
	// Grid holds the candidate per-split feature counts.
	Grid []int
	// Trees is the ensemble size used for every candidate.
	Trees int
	// Seed drives the per-job forest seeds.
	Seed uint64
}

// Row is one leaderboard entry: the fold-averaged value of one metric for
// one candidate. N counts the folds that contributed; folds whose metric
// was undefined or whose training failed are excluded from the mean.
type Row struct {
	MTry   int
	Metric string
	Mean   float64
	StdErr float64
	N      int
}

// Result is the outcome of a grid search.
type Result struct {
	// BestMTry is the selected hyperparameter value. It is always a
	// member of the supplied grid. Ties on mean accuracy resolve to the
	// smallest candidate.
	BestMTry int
	// Leaderboard holds one row per (candidate, metric), candidates in
	// ascending order.
	Leaderboard []Row
}

// foldScores carries the per-fold metric values of one candidate. NaN
// marks a missing value.
type foldScores struct {
	accuracy []float64
	auc      []float64
}

// GridSearch evaluates every candidate on every fold and selects the
// candidate with the highest mean accuracy. Fold jobs are independent and
// run concurrently.
func GridSearch(train []dataset.Record, folds []dataset.Fold, cfg Config) (*Result, error) {
	if len(train) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "GridSearch")
	}
	if len(cfg.Grid) == 0 {
		return nil, errors.NewValueError("GridSearch", "empty candidate grid")
	}
	if len(folds) == 0 {
		return nil, errors.NewValueError("GridSearch", "no cross-validation folds")
	}

	grid := make([]int, len(cfg.Grid))
	copy(grid, cfg.Grid)
	sort.Ints(grid)

	logger := log.For("tune")
	logger.Info().
		Ints("grid", grid).
		Int("folds", len(folds)).
		Int("trees", cfg.Trees).
		Msg("starting grid search")

	scores := make([]foldScores, len(grid))
	for c := range scores {
		scores[c] = foldScores{
			accuracy: make([]float64, len(folds)),
			auc:      make([]float64, len(folds)),
		}
	}

	var wg sync.WaitGroup
	for c, mtry := range grid {
		for f := range folds {
			wg.Add(1)
			go func(c, f, mtry int) {
				defer wg.Done()
				acc, auc := scoreFold(train, folds[f], mtry, cfg, jobSeed(cfg.Seed, c, f))
				scores[c].accuracy[f] = acc
				scores[c].auc[f] = auc
			}(c, f, mtry)
		}
	}
	wg.Wait()

	result := &Result{BestMTry: -1}
	bestAcc := math.Inf(-1)

	for c, mtry := range grid {
		accRow := aggregate(mtry, MetricAccuracy, scores[c].accuracy)
		aucRow := aggregate(mtry, MetricROCAUC, scores[c].auc)
		result.Leaderboard = append(result.Leaderboard, accRow, aucRow)

		logger.Info().
			Int("mtry", mtry).
			Float64("mean_accuracy", accRow.Mean).
			Float64("mean_roc_auc", aucRow.Mean).
			Int("folds_used", accRow.N).
			Msg("candidate scored")

		// Grid is ascending and strictly-greater wins, so equal means
		// keep the smallest candidate.
		if accRow.N > 0 && accRow.Mean > bestAcc {
			bestAcc = accRow.Mean
			result.BestMTry = mtry
		}
	}

	if result.BestMTry < 0 {
		return nil, errors.NewModelError("GridSearch", "no candidate produced a defined accuracy", nil)
	}

	logger.Info().Int("best_mtry", result.BestMTry).Float64("mean_accuracy", bestAcc).Msg("grid search complete")
	return result, nil
}

// scoreFold trains one candidate on one fold's analysis set and scores it
// on the assessment set. Any failure yields missing values (NaN) rather
// than aborting the search: a degenerate fold must not kill the run.
func scoreFold(train []dataset.Record, fold dataset.Fold, mtry int, cfg Config, seed uint64) (acc, auc float64) {
	acc, auc = math.NaN(), math.NaN()
	logger := log.For("tune")

	analysis := dataset.Subset(train, fold.Analysis)
	assessment := dataset.Subset(train, fold.Assessment)

	// The recipe is refit on the analysis set so the assessment rows are
	// normalized with statistics they did not contribute to.
	rec, err := recipe.Fit(analysis)
	if err != nil {
		logger.Warn().Err(err).Int("mtry", mtry).Msg("fold recipe fit failed, fold excluded")
		return acc, auc
	}
	Xa, ya, err := rec.Bake(analysis)
	if err != nil {
		logger.Warn().Err(err).Int("mtry", mtry).Msg("fold analysis bake failed, fold excluded")
		return acc, auc
	}
	Xs, ys, err := rec.Bake(assessment)
	if err != nil {
		logger.Warn().Err(err).Int("mtry", mtry).Msg("fold assessment bake failed, fold excluded")
		return acc, auc
	}

	rf := ensemble.NewRandomForest(
		ensemble.WithNTrees(cfg.Trees),
		ensemble.WithMTry(mtry),
		ensemble.WithSeed(seed),
	)
	if err := rf.Fit(Xa, ya); err != nil {
		logger.Warn().Err(err).Int("mtry", mtry).Msg("fold training failed, fold excluded")
		return acc, auc
	}

	pred, err := rf.Predict(Xs)
	if err != nil {
		logger.Warn().Err(err).Int("mtry", mtry).Msg("fold prediction failed, fold excluded")
		return acc, auc
	}
	proba, err := rf.PredictProba(Xs)
	if err != nil {
		logger.Warn().Err(err).Int("mtry", mtry).Msg("fold scoring failed, fold excluded")
		return acc, auc
	}

	if a, err := metrics.Accuracy(ys, pred); err == nil {
		acc = a
	}
	if a, err := metrics.ROCAUC(ys, proba); err == nil {
		auc = a
	} else if errors.IsUndefinedMetric(err) {
		logger.Warn().Int("mtry", mtry).Msg("roc_auc undefined for fold, value excluded from mean")
	}
	return acc, auc
}

// aggregate averages the defined fold values of one metric.
func aggregate(mtry int, metric string, values []float64) Row {
	defined := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}

	row := Row{MTry: mtry, Metric: metric, N: len(defined)}
	if len(defined) == 0 {
		row.Mean = math.NaN()
		row.StdErr = math.NaN()
		return row
	}

	row.Mean = stat.Mean(defined, nil)
	if len(defined) > 1 {
		row.StdErr = stat.StdDev(defined, nil) / math.Sqrt(float64(len(defined)))
	}
	return row
}

// jobSeed derives a distinct deterministic seed per (candidate, fold) job.
func jobSeed(seed uint64, candidate, fold int) uint64 {
	return seed + uint64(candidate)*1009 + uint64(fold)*9973
}
