package mapping

import "fmt"

// A DirectMapping copies values one-to-one between two matched meshes. It is
// the mapping of choice when both participants discretize the coupling
// interface identically.
type DirectMapping struct {
	store    ValueStore
	computed bool
}

// NewDirectMapping creates a DirectMapping reading and writing value vectors
// through the given store.
func NewDirectMapping(store ValueStore) *DirectMapping {
	return &DirectMapping{store: store}
}

// HasComputedMapping tells if the mapping is ready to use.
func (m *DirectMapping) HasComputedMapping() bool {
	return m.computed
}

// ComputeMapping marks the mapping as ready. A direct copy needs no
// preparation beyond that.
func (m *DirectMapping) ComputeMapping() error {
	m.computed = true
	return nil
}

// Map copies the "from" vector onto the "to" vector.
func (m *DirectMapping) Map(fromDataID, toDataID int) error {
	if !m.computed {
		return fmt.Errorf("mapping used before ComputeMapping")
	}

	from := m.store.Values(fromDataID)
	to := m.store.Values(toDataID)

	if from == nil || to == nil {
		return fmt.Errorf("unknown data id %d or %d", fromDataID, toDataID)
	}

	if len(from) != len(to) {
		return fmt.Errorf(
			"direct mapping requires matched meshes, got %d and %d values",
			len(from), len(to))
	}

	copy(to, from)

	return nil
}

// Clear drops the computed mapping.
func (m *DirectMapping) Clear() {
	m.computed = false
}
