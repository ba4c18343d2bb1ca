package measure

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// A RelativeMeasure reports convergence when the two-norm of the iteration
// difference drops below a fraction of the norm of the current values.
type RelativeMeasure struct {
	limit     float64
	normDiff  float64
	norm      float64
	converged bool
}

// NewRelativeMeasure creates a RelativeMeasure with the given relative
// limit.
func NewRelativeMeasure(limit float64) *RelativeMeasure {
	if limit <= 0 || limit >= 1 {
		panic(fmt.Sprintf(
			"relative convergence limit must be in (0, 1), got %g", limit))
	}

	return &RelativeMeasure{limit: limit}
}

// NewMeasurementSeries resets the measure.
func (m *RelativeMeasure) NewMeasurementSeries() {
	m.normDiff = 0
	m.norm = 0
	m.converged = false
}

// Measure compares the iteration difference against the current value norm.
// A zero-valued current iterate counts as converged only if the difference
// is exactly zero.
func (m *RelativeMeasure) Measure(oldValues, newValues []float64) {
	diff := make([]float64, len(newValues))
	floats.SubTo(diff, newValues, oldValues)

	m.normDiff = floats.Norm(diff, 2)
	m.norm = floats.Norm(newValues, 2)
	m.converged = m.normDiff <= m.limit*m.norm
}

// IsConverged reports the outcome of the last Measure call.
func (m *RelativeMeasure) IsConverged() bool {
	return m.converged
}

// NormDiff returns the residual norm of the last Measure call.
func (m *RelativeMeasure) NormDiff() float64 {
	return m.normDiff
}
