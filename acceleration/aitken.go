package acceleration

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cosimlab/tandem/cplscheme"
)

// An AitkenRelaxation adapts the relaxation factor from successive
// fixed-point residuals. The residual vector spans all entries of the
// merged data map, which is what makes the joint (multi-interface)
// acceleration work.
type AitkenRelaxation struct {
	initialOmega float64

	omega        float64
	iteration    int
	prevResidual []float64
}

// NewAitkenRelaxation creates an AitkenRelaxation starting from the given
// factor.
func NewAitkenRelaxation(initialOmega float64) *AitkenRelaxation {
	if initialOmega <= 0 || initialOmega > 1 {
		panic(fmt.Sprintf(
			"initial relaxation factor must be in (0, 1], got %g",
			initialOmega))
	}

	return &AitkenRelaxation{initialOmega: initialOmega}
}

// Initialize resets the adaptive state.
func (a *AitkenRelaxation) Initialize(data cplscheme.MergedDataMap) {
	a.omega = a.initialOmega
	a.iteration = 0
	a.prevResidual = nil
}

// NextWindow restarts the adaptation for the next time window.
func (a *AitkenRelaxation) NextWindow() {
	a.omega = a.initialOmega
	a.iteration = 0
	a.prevResidual = nil
}

// Accelerate updates the relaxation factor from the residual difference and
// relaxes every entry in place.
func (a *AitkenRelaxation) Accelerate(data cplscheme.MergedDataMap) {
	keys := sortedKeys(data)
	residual := concatenate(data, keys)

	if a.iteration == 0 {
		a.omega = a.initialOmega
	} else {
		diff := make([]float64, len(residual))
		floats.SubTo(diff, residual, a.prevResidual)

		denom := floats.Dot(diff, diff)
		if denom > math.SmallestNonzeroFloat64 {
			a.omega = -a.omega * floats.Dot(a.prevResidual, diff) / denom
		}
	}

	for _, key := range keys {
		d := data[key]
		prev := d.PreviousIteration()
		for i, v := range d.Values {
			d.Values[i] = prev[i] + a.omega*(v-prev[i])
		}
	}

	a.prevResidual = residual
	a.iteration++
}
