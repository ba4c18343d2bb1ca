// Package participant provides the solver-facing driver layer. A
// Participant owns one coupling scheme, runs registered actions at the
// timings the scheme exposes, and invokes the mapping collaborator at the
// scheme's exchange boundaries.
package participant

import (
	"github.com/sirupsen/logrus"

	"github.com/cosimlab/tandem/action"
	"github.com/cosimlab/tandem/cplscheme"
	"github.com/cosimlab/tandem/mapping"
	"github.com/cosimlab/tandem/mesh"
)

type mappingContext struct {
	m          mapping.Mapping
	fromDataID int
	toDataID   int
	timing     *action.Timing
}

// A Participant drives one side of a coupled run.
type Participant struct {
	name     string
	scheme   cplscheme.CouplingScheme
	registry *mesh.Registry
	actions  *action.Registry
	mappings []mappingContext
	log      *logrus.Entry
}

// NewParticipant creates a Participant around its coupling scheme.
func NewParticipant(
	name string,
	scheme cplscheme.CouplingScheme,
	registry *mesh.Registry,
) *Participant {
	return &Participant{
		name:     name,
		scheme:   scheme,
		registry: registry,
		actions:  action.NewRegistry(),
		log: logrus.NewEntry(logrus.StandardLogger()).
			WithField("participant", name),
	}
}

// Name returns the participant's name.
func (p *Participant) Name() string {
	return p.name
}

// Scheme returns the participant's coupling scheme.
func (p *Participant) Scheme() cplscheme.CouplingScheme {
	return p.scheme
}

// Registry returns the mesh registry of the participant.
func (p *Participant) Registry() *mesh.Registry {
	return p.registry
}

// RegisterAction registers a timing-scoped side effect.
func (p *Participant) RegisterAction(a action.Action) {
	p.actions.Register(a)
}

// RegisterMapping registers a mapping between two data fields, to run at
// the given exchange boundary.
func (p *Participant) RegisterMapping(
	m mapping.Mapping,
	fromDataID, toDataID int,
	timing *action.Timing,
) {
	if timing != action.TimingOnExchangePrior &&
		timing != action.TimingOnExchangePost {
		panic("mappings run at exchange boundaries only, got " + timing.Name)
	}

	p.mappings = append(p.mappings, mappingContext{
		m:          m,
		fromDataID: fromDataID,
		toDataID:   toDataID,
		timing:     timing,
	})
}

// Initialize initializes the coupling scheme and runs the actions applying
// afterwards.
func (p *Participant) Initialize(startTime float64, startTimeWindow int) error {
	err := p.scheme.Initialize(startTime, startTimeWindow)
	if err != nil {
		return err
	}

	return p.runActions(p.scheme.AppliedTimings(), 0)
}

// InitializeData triggers the very first data exchange and maps the
// received values.
func (p *Participant) InitializeData() error {
	err := p.scheme.InitializeData()
	if err != nil {
		return err
	}

	if p.scheme.HasDataBeenExchanged() {
		err = p.runMappings(action.TimingOnExchangePost)
		if err != nil {
			return err
		}
	}

	return p.runActions(p.scheme.AppliedTimings(), 0)
}

// FulfillAction marks a scheme-required obligation as performed.
func (p *Participant) FulfillAction(name string) {
	p.scheme.PerformedAction(name)
}

// IsActionRequired tells if the scheme requires the named obligation.
func (p *Participant) IsActionRequired(name string) bool {
	return p.scheme.IsActionRequired(name)
}

// Advance accumulates the locally computed dt, runs prior actions and
// mappings, advances the scheme, then runs post mappings and actions. It
// returns the next maximum permissible local timestep length.
func (p *Participant) Advance(dt float64) (float64, error) {
	err := p.scheme.AddComputedTime(dt)
	if err != nil {
		return 0, err
	}

	willExchange := p.scheme.WillDataBeExchanged(0)

	err = p.runActions([]*action.Timing{action.TimingAlwaysPrior}, dt)
	if err != nil {
		return 0, err
	}

	if willExchange {
		err = p.runActions([]*action.Timing{action.TimingOnExchangePrior}, dt)
		if err != nil {
			return 0, err
		}

		err = p.runMappings(action.TimingOnExchangePrior)
		if err != nil {
			return 0, err
		}
	}

	next, err := p.scheme.Advance()
	if err != nil {
		return 0, err
	}

	if p.scheme.HasDataBeenExchanged() {
		err = p.runMappings(action.TimingOnExchangePost)
		if err != nil {
			return 0, err
		}
	}

	err = p.runActions(p.scheme.AppliedTimings(), dt)
	if err != nil {
		return 0, err
	}

	return next, nil
}

// Finalize finalizes the coupling scheme.
func (p *Participant) Finalize() error {
	return p.scheme.Finalize()
}

func (p *Participant) schemeArgs(
	dt float64,
) (time, lastDt, computedPart, fullDt float64) {
	fullDt = p.scheme.TimeWindowSize()
	computedPart = fullDt - p.scheme.ThisTimestepRemainder()

	return p.scheme.Time(), dt, computedPart, fullDt
}

func (p *Participant) runActions(timings []*action.Timing, dt float64) error {
	time, lastDt, computedPart, fullDt := p.schemeArgs(dt)
	return p.actions.RunAll(timings, time, lastDt, computedPart, fullDt)
}

func (p *Participant) runMappings(timing *action.Timing) error {
	for _, ctx := range p.mappings {
		if ctx.timing != timing {
			continue
		}

		if !ctx.m.HasComputedMapping() {
			err := ctx.m.ComputeMapping()
			if err != nil {
				return err
			}
		}

		err := ctx.m.Map(ctx.fromDataID, ctx.toDataID)
		if err != nil {
			return err
		}
	}

	return nil
}
