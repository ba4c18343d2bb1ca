package action

import "github.com/cosimlab/tandem/mapping"

// A Registry keeps registered actions grouped by timing. Actions with the
// same timing run in registration order.
type Registry struct {
	byTiming map[*Timing][]Action
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byTiming: make(map[*Timing][]Action),
	}
}

// Register adds an action to the registry.
func (r *Registry) Register(a Action) {
	t := a.Timing()
	r.byTiming[t] = append(r.byTiming[t], a)
}

// ActionsAt returns the actions registered for the given timing, in
// registration order.
func (r *Registry) ActionsAt(t *Timing) []Action {
	return r.byTiming[t]
}

// Run performs every action registered for the given timing, in registration
// order, and stops at the first failing action.
func (r *Registry) Run(
	t *Timing,
	time, dt, computedPartFullDt, fullDt float64,
) error {
	for _, a := range r.byTiming[t] {
		err := a.Perform(time, dt, computedPartFullDt, fullDt)
		if err != nil {
			return err
		}
	}

	return nil
}

// RunAll performs Run for each of the given timings, in order.
func (r *Registry) RunAll(
	timings []*Timing,
	time, dt, computedPartFullDt, fullDt float64,
) error {
	for _, t := range timings {
		err := r.Run(t, time, dt, computedPartFullDt, fullDt)
		if err != nil {
			return err
		}
	}

	return nil
}

// MeshRequirement returns the strongest requirement any registered action
// places on the given mesh.
func (r *Registry) MeshRequirement(meshID int) mapping.MeshRequirement {
	req := mapping.RequirementUndefined

	for _, actions := range r.byTiming {
		for _, a := range actions {
			if a.MeshID() == meshID && a.MeshRequirement() > req {
				req = a.MeshRequirement()
			}
		}
	}

	return req
}
