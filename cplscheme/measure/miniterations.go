package measure

import "fmt"

// A MinIterationsMeasure reports convergence after a fixed number of
// sub-iterations, regardless of the values. Useful for forcing a constant
// iteration count, e.g. when benchmarking acceleration schemes.
type MinIterationsMeasure struct {
	minIterations int
	iterations    int
}

// NewMinIterationsMeasure creates a MinIterationsMeasure.
func NewMinIterationsMeasure(minIterations int) *MinIterationsMeasure {
	if minIterations < 1 {
		panic(fmt.Sprintf(
			"minimum iteration count must be at least 1, got %d",
			minIterations))
	}

	return &MinIterationsMeasure{minIterations: minIterations}
}

// NewMeasurementSeries resets the iteration count.
func (m *MinIterationsMeasure) NewMeasurementSeries() {
	m.iterations = 0
}

// Measure counts one sub-iteration.
func (m *MinIterationsMeasure) Measure(oldValues, newValues []float64) {
	m.iterations++
}

// IsConverged reports whether enough sub-iterations have passed.
func (m *MinIterationsMeasure) IsConverged() bool {
	return m.iterations >= m.minIterations
}
