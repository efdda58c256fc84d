// Package model holds the shared estimator plumbing: every scaler, encoder,
// recipe and classifier embeds BaseEstimator and gates its Transform/Predict
// methods on the fitted state.
package model

// EstimatorState represents whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted is the initial state of every estimator.
	NotFitted EstimatorState = iota
	// Fitted means Fit has completed successfully.
	Fitted
)

// BaseEstimator is embedded by every fittable type.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether the estimator has been fitted.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to its initial state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
