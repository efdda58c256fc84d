package pipeline

import (
	"github.com/healthml/strokepipe/dataset"
	"github.com/healthml/strokepipe/ensemble"
	"github.com/healthml/strokepipe/pkg/errors"
	"github.com/healthml/strokepipe/pkg/log"
	"github.com/healthml/strokepipe/recipe"
)

// Predictor serves ad-hoc predictions from a model refit on the full
// cleaned dataset. Incoming records are baked with the preprocessing
// statistics of that dataset; unseen category levels and malformed numeric
// fields are rejected with a ValidationError.
type Predictor struct {
	recipe *recipe.Fitted
	forest *ensemble.RandomForest
}

// Prediction is one scored record.
type Prediction struct {
	Label dataset.Label `json:"label"`
	// Probability is the forest's positive-class (stroke) probability.
	Probability float64 `json:"probability"`
}

// NewPredictor fits the preprocessing recipe and a random forest on the
// given records.
func NewPredictor(records []dataset.Record, mtry, trees int, seed uint64) (*Predictor, error) {
	rec, err := recipe.Fit(records)
	if err != nil {
		return nil, err
	}
	x, y, err := rec.Bake(records)
	if err != nil {
		return nil, err
	}

	forest := ensemble.NewRandomForest(
		ensemble.WithNTrees(trees),
		ensemble.WithMTry(mtry),
		ensemble.WithSeed(seed),
	)
	if err := forest.Fit(x, y); err != nil {
		return nil, err
	}

	log.For("pipeline").Info().
		Int("rows", len(records)).
		Int("mtry", mtry).
		Int("trees", trees).
		Msg("deployment model fitted")
	return &Predictor{recipe: rec, forest: forest}, nil
}

// Predict scores one record. Exactly one label is returned for any record
// that passes validation.
func (p *Predictor) Predict(features *dataset.Features) (Prediction, error) {
	if features == nil {
		return Prediction{}, errors.NewValueError("Predict", "nil features")
	}
	row, err := p.recipe.BakeFeatures(features)
	if err != nil {
		return Prediction{}, err
	}
	label, proba, err := p.forest.PredictRow(row)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{Label: dataset.Label(label), Probability: proba}, nil
}

// PredictBatch scores records in order. It fails on the first invalid
// record.
func (p *Predictor) PredictBatch(features []dataset.Features) ([]Prediction, error) {
	out := make([]Prediction, len(features))
	for i := range features {
		pred, err := p.Predict(&features[i])
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		out[i] = pred
	}
	return out, nil
}
