// Package measure provides convergence measures for implicit coupling. A
// measure judges whether successive sub-iteration values of one coupling
// data have stabilized; the scheme decides only when it is asked.
package measure

// A ConvergenceMeasure judges the stability of successive sub-iteration
// values.
type ConvergenceMeasure interface {
	// NewMeasurementSeries resets the measure at the start of a time window.
	NewMeasurementSeries()

	// Measure compares the previous iteration's values with the current
	// ones. Called once per sub-iteration, after data exchange.
	Measure(oldValues, newValues []float64)

	// IsConverged reports the outcome of the last Measure call.
	IsConverged() bool
}
