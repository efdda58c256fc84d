package ensemble

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/healthml/strokepipe/pkg/errors"
)

// separableData builds a two-feature dataset where class 1 occupies the
// region x0 > 0.5 with a wide margin.
func separableData(n int, seed uint64) (*mat.Dense, []int) {
	rng := rand.New(rand.NewPCG(seed, seed))
	X := mat.NewDense(n, 2, nil)
	y := make([]int, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			X.Set(i, 0, rng.Float64()*0.3) // [0, 0.3)
			y[i] = 0
		} else {
			X.Set(i, 0, 0.7+rng.Float64()*0.3) // [0.7, 1.0)
			y[i] = 1
		}
		X.Set(i, 1, rng.Float64()) // noise feature
	}
	return X, y
}

func TestRandomForestLearnsSeparableData(t *testing.T) {
	X, y := separableData(200, 11)

	rf := NewRandomForest(WithNTrees(25), WithSeed(42))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	pred, err := rf.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	correct := 0
	for i := range pred {
		if pred[i] == y[i] {
			correct++
		}
	}
	if acc := float64(correct) / float64(len(y)); acc < 0.97 {
		t.Errorf("training accuracy = %v, want >= 0.97 on separable data", acc)
	}
}

func TestRandomForestReproducible(t *testing.T) {
	X, y := separableData(100, 5)

	fitAndScore := func(seed uint64) []float64 {
		rf := NewRandomForest(WithNTrees(10), WithSeed(seed))
		if err := rf.Fit(X, y); err != nil {
			t.Fatalf("Fit() error = %v", err)
		}
		proba, err := rf.PredictProba(X)
		if err != nil {
			t.Fatalf("PredictProba() error = %v", err)
		}
		return proba
	}

	a := fitAndScore(7)
	b := fitAndScore(7)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d: proba %v != %v with identical seeds", i, a[i], b[i])
		}
	}
}

func TestRandomForestPredictProbaRange(t *testing.T) {
	X, y := separableData(80, 3)

	rf := NewRandomForest(WithNTrees(15), WithSeed(1))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	proba, err := rf.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	pred, err := rf.Predict(X)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}

	for i, p := range proba {
		if p < 0 || p > 1 {
			t.Errorf("row %d: proba = %v, want in [0,1]", i, p)
		}
		wantLabel := 0
		if p >= 0.5 {
			wantLabel = 1
		}
		if pred[i] != wantLabel {
			t.Errorf("row %d: label %d inconsistent with proba %v", i, pred[i], p)
		}
	}
}

func TestRandomForestPredictRow(t *testing.T) {
	X, y := separableData(100, 9)

	rf := NewRandomForest(WithNTrees(25), WithSeed(2))
	if err := rf.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	label, proba, err := rf.PredictRow([]float64{0.9, 0.5})
	if err != nil {
		t.Fatalf("PredictRow() error = %v", err)
	}
	if label != 1 {
		t.Errorf("label = %d, want 1 for x0 deep in positive region", label)
	}
	if proba < 0.5 {
		t.Errorf("proba = %v, want >= 0.5", proba)
	}

	if _, _, err := rf.PredictRow([]float64{1}); err == nil {
		t.Error("PredictRow() with wrong width should fail")
	}
}

func TestRandomForestValidation(t *testing.T) {
	tests := []struct {
		name string
		fit  func() error
	}{
		{
			name: "empty data",
			fit: func() error {
				return NewRandomForest().Fit(new(mat.Dense), nil)
			},
		},
		{
			name: "label length mismatch",
			fit: func() error {
				return NewRandomForest().Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), []int{0, 1})
			},
		},
		{
			name: "non-binary labels",
			fit: func() error {
				return NewRandomForest().Fit(mat.NewDense(3, 1, []float64{1, 2, 3}), []int{0, 1, 2})
			},
		},
		{
			name: "mtry exceeds features",
			fit: func() error {
				return NewRandomForest(WithMTry(5)).Fit(mat.NewDense(2, 1, []float64{1, 2}), []int{0, 1})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fit(); err == nil {
				t.Error("Fit() should fail")
			}
		})
	}
}

func TestRandomForestNotFitted(t *testing.T) {
	rf := NewRandomForest()
	_, err := rf.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	if err == nil {
		t.Fatal("Predict() before Fit() should fail")
	}

	var nfErr *errors.NotFittedError
	if !errors.As(err, &nfErr) {
		t.Errorf("error = %v, want NotFittedError", err)
	}
}
