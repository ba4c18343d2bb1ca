// Package action defines timing-scoped side effects that the surrounding
// application registers and the driver runs at points exposed by the coupling
// scheme.
package action

import "github.com/cosimlab/tandem/mapping"

// Timing defines one point in the coupling scheme lifecycle at which
// registered actions run.
type Timing struct {
	Name string
}

// TimingAlwaysPrior applies every time, before advancing the scheme.
var TimingAlwaysPrior = &Timing{Name: "AlwaysPrior"}

// TimingAlwaysPost applies every time, after advancing the scheme.
var TimingAlwaysPost = &Timing{Name: "AlwaysPost"}

// TimingOnExchangePrior applies on data exchange, before advancing the
// scheme.
var TimingOnExchangePrior = &Timing{Name: "OnExchangePrior"}

// TimingOnExchangePost applies on data exchange, after advancing the scheme.
var TimingOnExchangePost = &Timing{Name: "OnExchangePost"}

// TimingOnTimestepCompletePost applies when a time window completed, after
// advancing the scheme.
var TimingOnTimestepCompletePost = &Timing{Name: "OnTimestepCompletePost"}

// An Action is a side effect on data or meshes, bound to one timing.
type Action interface {
	// Timing tells when the action must run.
	Timing() *Timing

	// MeshID returns the id of the mesh the action works on.
	MeshID() int

	// MeshRequirement tells how much of that mesh the action needs.
	MeshRequirement() mapping.MeshRequirement

	// Perform runs the action. It receives the current simulated time, the
	// last local step length, the computed part of the current window, and
	// the full window length.
	Perform(time, dt, computedPartFullDt, fullDt float64) error
}

// A FuncAction adapts a plain function into an Action.
type FuncAction struct {
	timing      *Timing
	meshID      int
	requirement mapping.MeshRequirement
	fn          func(time, dt, computedPartFullDt, fullDt float64) error
}

// NewFuncAction creates a FuncAction.
func NewFuncAction(
	timing *Timing,
	meshID int,
	requirement mapping.MeshRequirement,
	fn func(time, dt, computedPartFullDt, fullDt float64) error,
) *FuncAction {
	return &FuncAction{
		timing:      timing,
		meshID:      meshID,
		requirement: requirement,
		fn:          fn,
	}
}

// Timing tells when the action must run.
func (a *FuncAction) Timing() *Timing {
	return a.timing
}

// MeshID returns the id of the mesh the action works on.
func (a *FuncAction) MeshID() int {
	return a.meshID
}

// MeshRequirement tells how much of the mesh the action needs.
func (a *FuncAction) MeshRequirement() mapping.MeshRequirement {
	return a.requirement
}

// Perform runs the wrapped function.
func (a *FuncAction) Perform(
	time, dt, computedPartFullDt, fullDt float64,
) error {
	return a.fn(time, dt, computedPartFullDt, fullDt)
}
