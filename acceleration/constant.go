package acceleration

import (
	"fmt"

	"github.com/cosimlab/tandem/cplscheme"
)

// A ConstantRelaxation blends each new iterate with the previous one using
// a fixed relaxation factor.
type ConstantRelaxation struct {
	omega float64
}

// NewConstantRelaxation creates a ConstantRelaxation with the given factor.
func NewConstantRelaxation(omega float64) *ConstantRelaxation {
	if omega <= 0 || omega > 1 {
		panic(fmt.Sprintf(
			"relaxation factor must be in (0, 1], got %g", omega))
	}

	return &ConstantRelaxation{omega: omega}
}

// Initialize does nothing; a constant factor carries no state.
func (c *ConstantRelaxation) Initialize(data cplscheme.MergedDataMap) {}

// NextWindow does nothing.
func (c *ConstantRelaxation) NextWindow() {}

// Accelerate relaxes every entry in place:
// v = prev + omega * (v - prev).
func (c *ConstantRelaxation) Accelerate(data cplscheme.MergedDataMap) {
	for _, key := range sortedKeys(data) {
		d := data[key]
		prev := d.PreviousIteration()
		for i, v := range d.Values {
			d.Values[i] = prev[i] + c.omega*(v-prev[i])
		}
	}
}
