// Package cplscheme implements the coupling scheme subsystem: the state
// machine that drives simulated time forward in discrete windows, decides
// when data is exchanged between participants, and runs bounded fixed-point
// sub-iterations for implicitly coupled problems.
package cplscheme

import "github.com/cosimlab/tandem/action"

// CouplingMode distinguishes explicit from implicit (fixed-point iterated)
// coupling. Fixed at construction.
type CouplingMode int

// The coupling modes.
const (
	Explicit CouplingMode = iota
	Implicit
)

func (m CouplingMode) String() string {
	switch m {
	case Explicit:
		return "Explicit"
	case Implicit:
		return "Implicit"
	default:
		return "Unknown"
	}
}

// TimesteppingMethod selects how the time window size is determined.
type TimesteppingMethod int

const (
	// FixedWindowSize uses the configured window size for every window.
	FixedWindowSize TimesteppingMethod = iota

	// FirstParticipantSetsWindowSize lets the designated first participant
	// dictate each window's size; the value it transmits overrides the
	// locally configured size for that window only.
	FirstParticipantSetsWindowSize
)

// Sentinels for unbounded horizons.
const (
	UndefinedTime        float64 = -1
	UndefinedTimeWindows int     = -1
)

// Names of driver obligations tracked by the scheme's action ledger.
const (
	// WriteIterationCheckpoint obliges the driver to checkpoint its state
	// before the next advance of an implicit scheme.
	WriteIterationCheckpoint = "WriteIterationCheckpoint"

	// ReadIterationCheckpoint obliges the driver to restore the last
	// checkpoint. The engine runs its sub-iterations inside Advance and
	// never requires it itself; it is reserved for drivers that checkpoint
	// and restore solver state manually around Advance.
	ReadIterationCheckpoint = "ReadIterationCheckpoint"

	// WriteInitialData obliges the driver to provide initial values before
	// InitializeData.
	WriteInitialData = "WriteInitialData"
)

// A CouplingScheme drives one participant's side of a coupled simulation.
// Called by the simulation-interface layer: Initialize, optionally
// InitializeData, repeated AddComputedTime/Advance, Finalize.
type CouplingScheme interface {
	// Initialize transitions the scheme from Uninitialized to Initialized.
	// Calling it twice is a precondition violation.
	Initialize(startTime float64, startTimeWindow int) error

	// InitializeData runs the very first data exchange for data that must
	// be seeded before time integration. Must run after Initialize and
	// before the first Advance; a second call is a precondition violation.
	InitializeData() error

	// AddComputedTime accumulates locally computed time into the current
	// window. dt must be strictly positive; accumulation beyond the
	// window's remainder is truncated against the window size.
	AddComputedTime(dt float64) error

	// Advance exchanges data when the current window is complete and
	// returns the next maximum permissible local timestep length.
	Advance() (float64, error)

	// Finalize transitions the scheme to its terminal state. No operations
	// are permitted afterwards.
	Finalize() error

	// RequireAction records a driver obligation.
	RequireAction(name string)

	// IsActionRequired tells if the named obligation is outstanding.
	IsActionRequired(name string) bool

	// PerformedAction marks the named obligation fulfilled.
	PerformedAction(name string)

	// HasDataBeenExchanged tells if the last Advance exchanged data.
	HasDataBeenExchanged() bool

	// WillDataBeExchanged tells if data will be exchanged within the given
	// lookahead from now.
	WillDataBeExchanged(lookahead float64) bool

	// IsCouplingTimestepComplete tells if the last Advance completed a
	// time window.
	IsCouplingTimestepComplete() bool

	// IsCouplingOngoing becomes false once the time or window-count
	// horizon is reached.
	IsCouplingOngoing() bool

	// IsInitialized tells if Initialize has run.
	IsInitialized() bool

	// HasConverged reports the convergence outcome of the last completed
	// window. Always true for explicit schemes.
	HasConverged() bool

	// NextTimestepMaxLength returns the remainder of the current window,
	// or the full window size if a new window just started.
	NextTimestepMaxLength() float64

	// ThisTimestepRemainder returns the not-yet-computed part of the
	// current window.
	ThisTimestepRemainder() float64

	// TimeWindowSize returns the size of the current window.
	TimeWindowSize() float64

	// Time returns the simulated time. Never decreases.
	Time() float64

	// Timesteps returns the number of completed time windows.
	Timesteps() int

	// AppliedTimings returns the action timings that apply after the last
	// Initialize/Advance call. The driver runs every registered action
	// whose timing is in the set, in registration order.
	AppliedTimings() []*action.Timing

	// Values resolves a data id to the value vector currently held for it,
	// for the mapping collaborator.
	Values(dataID int) []float64
}

// An Acceleration post-processes exchanged data between sub-iterations to
// speed up fixed-point convergence. Concrete algorithms live outside the
// scheme; the scheme only decides when they run.
type Acceleration interface {
	// Initialize is called once, when the scheme initializes.
	Initialize(data MergedDataMap)

	// NextWindow is called when a time window completes.
	NextWindow()

	// Accelerate modifies the data in place after a non-converged
	// sub-iteration.
	Accelerate(data MergedDataMap)
}

// A RunObserver receives iteration and window completion notifications,
// e.g. for recording convergence histories.
type RunObserver interface {
	IterationDone(timeWindow, iteration int, converged bool)
	WindowDone(timeWindow int, time float64, iterations int, converged bool)
}
