package cplscheme

import "github.com/cosimlab/tandem/cplscheme/measure"

// A measureContext binds a convergence measure to the coupling data it
// monitors.
type measureContext struct {
	dataID  int
	measure measure.ConvergenceMeasure
}

// judgeConvergence runs all measures against the data they monitor and
// combines the verdicts. A scheme without measures never judges; callers
// must check hasMeasures first.
func judgeConvergence(
	measures []measureContext,
	lookup func(dataID int) *CouplingData,
) bool {
	converged := true

	for _, ctx := range measures {
		data := lookup(ctx.dataID)
		if data == nil {
			panic("convergence measure monitors unregistered data")
		}

		ctx.measure.Measure(data.PreviousIteration(), data.Values)
		if !ctx.measure.IsConverged() {
			converged = false
		}
	}

	return converged
}

func resetMeasures(measures []measureContext) {
	for _, ctx := range measures {
		ctx.measure.NewMeasurementSeries()
	}
}
