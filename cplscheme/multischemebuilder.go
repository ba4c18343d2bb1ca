package cplscheme

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cosimlab/tandem/cplscheme/measure"
	"github.com/cosimlab/tandem/m2n"
)

// A MultiSchemeBuilder builds star-topology coupling schemes.
type MultiSchemeBuilder struct {
	maxTime          float64
	maxTimeWindows   int
	timeWindowSize   float64
	validDigits      int
	localParticipant string
	comms            []m2n.Communicator
	dtMethod         TimesteppingMethod
	mode             CouplingMode
	maxIterations    int
	controller       bool
	controllerPeer   string
	measures         []measureContext
	log              *logrus.Entry
	observer         RunObserver
	accel            Acceleration
}

// MakeMultiSchemeBuilder creates a builder with default parameters:
// implicit coupling, fixed window size, unbounded horizon, one iteration.
func MakeMultiSchemeBuilder() MultiSchemeBuilder {
	return MultiSchemeBuilder{
		maxTime:        UndefinedTime,
		maxTimeWindows: UndefinedTimeWindows,
		validDigits:    10,
		dtMethod:       FixedWindowSize,
		mode:           Implicit,
		maxIterations:  1,
	}
}

// WithMaxTime sets the simulated time horizon.
func (b MultiSchemeBuilder) WithMaxTime(t float64) MultiSchemeBuilder {
	b.maxTime = t
	return b
}

// WithMaxTimeWindows sets the window-count horizon.
func (b MultiSchemeBuilder) WithMaxTimeWindows(n int) MultiSchemeBuilder {
	b.maxTimeWindows = n
	return b
}

// WithTimeWindowSize sets the time window size.
func (b MultiSchemeBuilder) WithTimeWindowSize(size float64) MultiSchemeBuilder {
	b.timeWindowSize = size
	return b
}

// WithValidDigits sets the decimal precision used for window completion
// comparisons.
func (b MultiSchemeBuilder) WithValidDigits(d int) MultiSchemeBuilder {
	b.validDigits = d
	return b
}

// WithLocalParticipant names the participant this scheme instance runs for.
func (b MultiSchemeBuilder) WithLocalParticipant(name string) MultiSchemeBuilder {
	b.localParticipant = name
	return b
}

// WithM2N adds the transport to one remote peer. The peer index used by
// AddDataToSend/AddDataToReceive is the order of WithM2N calls.
func (b MultiSchemeBuilder) WithM2N(comm m2n.Communicator) MultiSchemeBuilder {
	b.comms = append(b.comms, comm)
	return b
}

// WithTimesteppingMethod selects how the window size is determined. Under
// FirstParticipantSetsWindowSize the controller dictates the size.
func (b MultiSchemeBuilder) WithTimesteppingMethod(
	m TimesteppingMethod,
) MultiSchemeBuilder {
	b.dtMethod = m
	return b
}

// WithCouplingMode selects explicit or implicit coupling.
func (b MultiSchemeBuilder) WithCouplingMode(m CouplingMode) MultiSchemeBuilder {
	b.mode = m
	return b
}

// WithMaxIterations bounds the sub-iterations per window.
func (b MultiSchemeBuilder) WithMaxIterations(n int) MultiSchemeBuilder {
	b.maxIterations = n
	return b
}

// AsController marks this participant as the one judging convergence for
// all peers.
func (b MultiSchemeBuilder) AsController() MultiSchemeBuilder {
	b.controller = true
	return b
}

// WithControllerPeer names the remote peer whose channel carries the global
// convergence verdict. Defaults to the first peer in name order.
func (b MultiSchemeBuilder) WithControllerPeer(name string) MultiSchemeBuilder {
	b.controllerPeer = name
	return b
}

// WithConvergenceMeasure registers a measure judging the named data.
// Measures belong on the controller.
func (b MultiSchemeBuilder) WithConvergenceMeasure(
	dataID int,
	m measure.ConvergenceMeasure,
) MultiSchemeBuilder {
	b.measures = append(b.measures, measureContext{dataID: dataID, measure: m})
	return b
}

// WithLogger sets the logger the scheme reports through.
func (b MultiSchemeBuilder) WithLogger(log *logrus.Entry) MultiSchemeBuilder {
	b.log = log
	return b
}

// WithObserver sets the observer receiving iteration/window notifications.
func (b MultiSchemeBuilder) WithObserver(o RunObserver) MultiSchemeBuilder {
	b.observer = o
	return b
}

// WithAcceleration sets the joint acceleration operating on the merged data
// map.
func (b MultiSchemeBuilder) WithAcceleration(a Acceleration) MultiSchemeBuilder {
	b.accel = a
	return b
}

func (b MultiSchemeBuilder) parametersMustBeValid() {
	if b.localParticipant == "" {
		panic("multi coupling needs a named local participant")
	}

	if len(b.comms) == 0 {
		panic("multi coupling needs at least one m2n communicator")
	}

	seen := make(map[string]bool)
	for _, c := range b.comms {
		name := c.RemoteName()
		if seen[name] {
			panic("peer " + name + " registered twice")
		}
		seen[name] = true
	}

	if b.controller && b.controllerPeer != "" {
		panic("the controller does not receive the verdict from a peer")
	}

	if !b.controller && len(b.measures) > 0 {
		panic("convergence measures belong on the controller")
	}

	if b.controllerPeer != "" && !seen[b.controllerPeer] {
		panic("controller peer " + b.controllerPeer + " has no channel")
	}

	if b.timeWindowSize <= 0 &&
		!(b.dtMethod == FirstParticipantSetsWindowSize && b.controller) {
		panic(fmt.Sprintf(
			"time window size must be positive, got %g", b.timeWindowSize))
	}

	validateHorizon(b.maxTime, b.maxTimeWindows)
	validateValidDigits(b.validDigits)
	validateIterations(b.mode, b.maxIterations)
}

// Build builds the multi scheme. It panics on invalid configuration.
func (b MultiSchemeBuilder) Build() *MultiScheme {
	b.parametersMustBeValid()

	peers := make([]*peerChannel, len(b.comms))
	for i, c := range b.comms {
		peers[i] = &peerChannel{
			comm:        c,
			sendData:    make(DataMap),
			receiveData: make(DataMap),
		}
	}

	topo := &multiTopology{
		localParticipant: b.localParticipant,
		peers:            peers,
		controller:       b.controller,
		controllerPeer:   b.controllerPeer,
		measures:         b.measures,
	}

	cfg := schemeConfig{
		maxTime:          b.maxTime,
		maxTimeWindows:   b.maxTimeWindows,
		timeWindowSize:   b.timeWindowSize,
		validDigits:      b.validDigits,
		dtMethod:         b.dtMethod,
		mode:             b.mode,
		maxIterations:    b.maxIterations,
		localParticipant: b.localParticipant,
		setsWindowSize:   b.controller,
		log:              b.log,
		observer:         b.observer,
		accel:            b.accel,
	}

	return &MultiScheme{
		scheme: newScheme(cfg, topo),
		topo:   topo,
	}
}
