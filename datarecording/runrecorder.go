package datarecording

// An IterationEntry records one sub-iteration of one time window.
type IterationEntry struct {
	TimeWindow int
	Iteration  int
	Converged  bool
}

// A WindowEntry records one completed time window.
type WindowEntry struct {
	TimeWindow int
	Time       float64
	Iterations int
	Converged  bool
}

// A RunRecorder records the iteration and window history of one coupling
// scheme. It implements cplscheme.RunObserver.
type RunRecorder struct {
	recorder DataRecorder

	iterationTable string
	windowTable    string
}

// NewRunRecorder creates a RunRecorder writing into the given backend. The
// participant name keeps tables of different schemes apart within one
// database.
func NewRunRecorder(recorder DataRecorder, participant string) *RunRecorder {
	r := &RunRecorder{
		recorder:       recorder,
		iterationTable: participant + "_iterations",
		windowTable:    participant + "_time_windows",
	}

	recorder.CreateTable(r.iterationTable, IterationEntry{})
	recorder.CreateTable(r.windowTable, WindowEntry{})

	return r
}

// IterationDone records one sub-iteration.
func (r *RunRecorder) IterationDone(timeWindow, iteration int, converged bool) {
	r.recorder.InsertData(r.iterationTable, IterationEntry{
		TimeWindow: timeWindow,
		Iteration:  iteration,
		Converged:  converged,
	})
}

// WindowDone records one completed time window.
func (r *RunRecorder) WindowDone(
	timeWindow int,
	time float64,
	iterations int,
	converged bool,
) {
	r.recorder.InsertData(r.windowTable, WindowEntry{
		TimeWindow: timeWindow,
		Time:       time,
		Iterations: iterations,
		Converged:  converged,
	})
}
