package metrics

import (
	"math"
	"testing"

	"github.com/healthml/strokepipe/pkg/errors"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []int
		yPred   []int
		want    float64
		wantErr bool
	}{
		{
			name:  "all correct",
			yTrue: []int{0, 1, 0, 1},
			yPred: []int{0, 1, 0, 1},
			want:  1.0,
		},
		{
			name:  "all wrong",
			yTrue: []int{0, 1},
			yPred: []int{1, 0},
			want:  0.0,
		},
		{
			name:  "three quarters",
			yTrue: []int{0, 0, 1, 1},
			yPred: []int{0, 0, 1, 0},
			want:  0.75,
		},
		{
			name:    "dimension mismatch",
			yTrue:   []int{0, 1},
			yPred:   []int{0},
			wantErr: true,
		},
		{
			name:    "empty input",
			yTrue:   nil,
			yPred:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Errorf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []int
		score   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect classifier",
			yTrue: []int{0, 0, 0, 1, 1, 1},
			score: []float64{0.1, 0.2, 0.3, 0.7, 0.8, 0.9},
			want:  1.0,
		},
		{
			name:  "worst classifier",
			yTrue: []int{0, 0, 0, 1, 1, 1},
			score: []float64{0.9, 0.8, 0.7, 0.3, 0.2, 0.1},
			want:  0.0,
		},
		{
			name:  "uninformative constant score",
			yTrue: []int{0, 1, 0, 1},
			score: []float64{0.5, 0.5, 0.5, 0.5},
			want:  0.5,
		},
		{
			name:  "typical case",
			yTrue: []int{0, 0, 1, 1},
			score: []float64{0.1, 0.4, 0.35, 0.8},
			want:  0.75,
		},
		{
			name:    "all positive labels",
			yTrue:   []int{1, 1, 1},
			score:   []float64{0.1, 0.4, 0.8},
			wantErr: true,
		},
		{
			name:    "all negative labels",
			yTrue:   []int{0, 0, 0},
			score:   []float64{0.1, 0.4, 0.8},
			wantErr: true,
		},
		{
			name:    "non-binary labels",
			yTrue:   []int{0, 2, 1},
			score:   []float64{0.1, 0.5, 0.9},
			wantErr: true,
		},
		{
			name:    "dimension mismatch",
			yTrue:   []int{0, 1},
			score:   []float64{0.5},
			wantErr: true,
		},
		{
			name:    "empty input",
			yTrue:   nil,
			score:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ROCAUC(tt.yTrue, tt.score)
			if (err != nil) != tt.wantErr {
				t.Errorf("ROCAUC() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ROCAUC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestROCAUCSingleClassIsUndefinedMetric(t *testing.T) {
	_, err := ROCAUC([]int{1, 1, 1}, []float64{0.2, 0.5, 0.9})
	if err == nil {
		t.Fatal("ROCAUC() on one class should fail")
	}
	if !errors.IsUndefinedMetric(err) {
		t.Errorf("error = %v, want UndefinedMetricError", err)
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := []int{0, 0, 0, 1, 1, 1, 1}
	yPred := []int{0, 1, 0, 1, 1, 0, 1}

	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("NewConfusionMatrix() error = %v", err)
	}

	if got := cm.TrueNegatives(); got != 2 {
		t.Errorf("TrueNegatives() = %d, want 2", got)
	}
	if got := cm.FalsePositives(); got != 1 {
		t.Errorf("FalsePositives() = %d, want 1", got)
	}
	if got := cm.FalseNegatives(); got != 1 {
		t.Errorf("FalseNegatives() = %d, want 1", got)
	}
	if got := cm.TruePositives(); got != 3 {
		t.Errorf("TruePositives() = %d, want 3", got)
	}

	// The counts always sum to the scored set size.
	if got := cm.Total(); got != len(yTrue) {
		t.Errorf("Total() = %d, want %d", got, len(yTrue))
	}
}

func TestConfusionMatrixValidation(t *testing.T) {
	if _, err := NewConfusionMatrix(nil, nil); err == nil {
		t.Error("empty input should fail")
	}
	if _, err := NewConfusionMatrix([]int{0, 1}, []int{0}); err == nil {
		t.Error("dimension mismatch should fail")
	}
	if _, err := NewConfusionMatrix([]int{0, 2}, []int{0, 1}); err == nil {
		t.Error("non-binary true label should fail")
	}
}
