package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "RandomForest.Fit",
			kind:     "invalid input",
			err:      fmt.Errorf("test error"),
			wantMsg:  "strokepipe: RandomForest.Fit: invalid input: test error",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "strokepipe: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Transform", 10, 7, 1)

	want := "strokepipe: Transform: dimension mismatch on axis 1 (features). Expected 10, got 7"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("StandardScaler", "Transform")

	want := "strokepipe: StandardScaler: not fitted yet. Call Fit() before using Transform()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var nfErr *NotFittedError
	if !As(err, &nfErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("gender", "unknown category level", "Other")

	want := "strokepipe: validation failed for field 'gender': unknown category level (got: Other)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	if !IsValidation(err) {
		t.Error("IsValidation() should be true for a ValidationError")
	}
	if IsValidation(New("plain error")) {
		t.Error("IsValidation() should be false for an unrelated error")
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Fatal("Error should be castable to *ValidationError")
	}
	if valErr.Field != "gender" {
		t.Errorf("Field = %v, want gender", valErr.Field)
	}
}

func TestNewUndefinedMetricError(t *testing.T) {
	err := NewUndefinedMetricError("roc_auc", "only one class present in fold")

	want := "strokepipe: metric 'roc_auc' is undefined: only one class present in fold"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	if !IsUndefinedMetric(err) {
		t.Error("IsUndefinedMetric() should be true for an UndefinedMetricError")
	}
	if IsUndefinedMetric(NewValueError("op", "msg")) {
		t.Error("IsUndefinedMetric() should be false for a ValueError")
	}

	if !IsUndefinedMetric(Wrap(err, "scoring fold 3")) {
		t.Error("IsUndefinedMetric() should see through wrapping")
	}
}

func TestWrapPreservesType(t *testing.T) {
	base := NewValueError("TrainTestSplit", "proportion must be in (0,1)")
	wrapped := Wrapf(base, "splitting %d rows", 100)

	var valErr *ValueError
	if !As(wrapped, &valErr) {
		t.Error("wrapped error should still be castable to *ValueError")
	}
	if !strings.Contains(wrapped.Error(), "splitting 100 rows") {
		t.Errorf("wrapped message missing context: %v", wrapped.Error())
	}
}
