package measure

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// An AbsoluteMeasure reports convergence when the two-norm of the iteration
// difference drops below a fixed limit.
type AbsoluteMeasure struct {
	limit     float64
	normDiff  float64
	converged bool
}

// NewAbsoluteMeasure creates an AbsoluteMeasure with the given limit.
func NewAbsoluteMeasure(limit float64) *AbsoluteMeasure {
	if limit <= 0 {
		panic(fmt.Sprintf(
			"absolute convergence limit must be positive, got %g", limit))
	}

	return &AbsoluteMeasure{limit: limit}
}

// NewMeasurementSeries resets the measure.
func (m *AbsoluteMeasure) NewMeasurementSeries() {
	m.normDiff = 0
	m.converged = false
}

// Measure computes the two-norm of newValues - oldValues.
func (m *AbsoluteMeasure) Measure(oldValues, newValues []float64) {
	diff := make([]float64, len(newValues))
	floats.SubTo(diff, newValues, oldValues)

	m.normDiff = floats.Norm(diff, 2)
	m.converged = m.normDiff <= m.limit
}

// IsConverged reports the outcome of the last Measure call.
func (m *AbsoluteMeasure) IsConverged() bool {
	return m.converged
}

// NormDiff returns the residual norm of the last Measure call.
func (m *AbsoluteMeasure) NormDiff() float64 {
	return m.normDiff
}
