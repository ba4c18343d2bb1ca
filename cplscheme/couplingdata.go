package cplscheme

import (
	"fmt"

	"github.com/cosimlab/tandem/mesh"
)

// A CouplingData holds the current values of one exchanged quantity, the
// previous sub-iteration's values for convergence comparison, and the
// converged history of past windows for extrapolation. It is owned by the
// scheme that registered it.
type CouplingData struct {
	// DataID identifies the quantity in the mesh registry.
	DataID int

	// MeshID identifies the mesh the quantity is defined on. The mesh
	// itself is resolved through the registry; the scheme holds no mesh
	// pointers.
	MeshID int

	// Values is the current value vector.
	Values []float64

	// Initialize marks data that participates in the initializeData
	// exchange.
	Initialize bool

	previousIteration []float64
	history           [][]float64
}

// NewCouplingData creates a CouplingData for the given quantity, sized to
// the mesh it lives on.
func NewCouplingData(d *mesh.Data, m *mesh.Mesh, initialize bool) *CouplingData {
	n := m.ValueCount(d.Dimensions())

	return &CouplingData{
		DataID:            d.ID(),
		MeshID:            m.ID(),
		Values:            make([]float64, n),
		Initialize:        initialize,
		previousIteration: make([]float64, n),
	}
}

// StorePreviousIteration snapshots the current values as the previous
// sub-iteration's values.
func (d *CouplingData) StorePreviousIteration() {
	copy(d.previousIteration, d.Values)
}

// PreviousIteration returns the snapshot taken by StorePreviousIteration.
func (d *CouplingData) PreviousIteration() []float64 {
	return d.previousIteration
}

// StoreWindowConverged appends the current values to the converged history.
// The history keeps at most three windows, enough for second-degree
// extrapolation.
func (d *CouplingData) StoreWindowConverged() {
	snapshot := make([]float64, len(d.Values))
	copy(snapshot, d.Values)

	d.history = append(d.history, snapshot)
	if len(d.history) > 3 {
		d.history = d.history[1:]
	}
}

// Extrapolate seeds Values with an initial guess for the next window,
// extrapolated from the converged history with the given degree. With
// insufficient history, the highest degree the history supports is used.
func (d *CouplingData) Extrapolate(degree int) {
	if degree < 0 || degree > 2 {
		panic(fmt.Sprintf("unsupported extrapolation degree %d", degree))
	}

	n := len(d.history)

	if degree >= 2 && n >= 3 {
		last := d.history[n-1]
		secondLast := d.history[n-2]
		thirdLast := d.history[n-3]
		for i := range d.Values {
			d.Values[i] = 2.5*last[i] - 2*secondLast[i] + 0.5*thirdLast[i]
		}
		return
	}

	if degree >= 1 && n >= 2 {
		last := d.history[n-1]
		secondLast := d.history[n-2]
		for i := range d.Values {
			d.Values[i] = 2*last[i] - secondLast[i]
		}
		return
	}

	// Degree zero or not enough history: keep the last converged values.
}

// A DataMap keys CouplingData by data id. Within one role-specific map, ids
// are unique.
type DataMap map[int]*CouplingData

// Role distinguishes the direction a data entry flows in.
type Role int

// The data roles.
const (
	RoleSend Role = iota
	RoleReceive
)

func (r Role) String() string {
	switch r {
	case RoleSend:
		return "send"
	case RoleReceive:
		return "receive"
	default:
		return "unknown"
	}
}

// A MergedKey identifies an entry of a merged data map. Send and receive
// entries for the same data id stay distinguishable by role.
type MergedKey struct {
	DataID int
	Role   Role
}

// A MergedDataMap combines send and receive data across all peers into one
// map, used when a single joint acceleration must operate on the
// concatenation of all exchanged quantities.
type MergedDataMap map[MergedKey]*CouplingData
