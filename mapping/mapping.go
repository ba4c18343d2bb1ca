// Package mapping defines the contract of the spatial interpolation
// collaborator. The coupling scheme itself never calls a mapping; the driver
// invokes it at the scheme's exchange boundaries.
package mapping

// MeshRequirement describes how much of a mesh a mapping needs to see.
type MeshRequirement int

// The possible mesh requirements, from weakest to strongest.
const (
	RequirementUndefined MeshRequirement = iota
	RequirementBoundingBox
	RequirementFullyDefined
)

func (r MeshRequirement) String() string {
	switch r {
	case RequirementUndefined:
		return "Undefined"
	case RequirementBoundingBox:
		return "BoundingBox"
	case RequirementFullyDefined:
		return "FullyDefined"
	default:
		return "Unknown"
	}
}

// A ValueStore resolves a data id to the value vector currently held for it.
type ValueStore interface {
	Values(dataID int) []float64
}

// A Mapping translates data between two participants' meshes.
type Mapping interface {
	// HasComputedMapping tells if ComputeMapping has run since the last
	// Clear.
	HasComputedMapping() bool

	// ComputeMapping prepares the mapping. It is idempotent until Clear is
	// called.
	ComputeMapping() error

	// Map writes the "to" vector from the "from" vector.
	Map(fromDataID, toDataID int) error

	// Clear drops the computed mapping so that it is recomputed on the next
	// ComputeMapping call.
	Clear()
}
