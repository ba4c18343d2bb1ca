package cplscheme

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cosimlab/tandem/cplscheme/measure"
	"github.com/cosimlab/tandem/m2n"
)

// A SerialSchemeBuilder builds serial coupling schemes. All configuration is
// fixed at Build time; invalid combinations abort startup.
type SerialSchemeBuilder struct {
	maxTime             float64
	maxTimeWindows      int
	timeWindowSize      float64
	validDigits         int
	firstParticipant    string
	secondParticipant   string
	localParticipant    string
	comm                m2n.Communicator
	dtMethod            TimesteppingMethod
	mode                CouplingMode
	maxIterations       int
	extrapolationDegree int
	measures            []measureContext
	log                 *logrus.Entry
	observer            RunObserver
	accel               Acceleration
}

// MakeSerialSchemeBuilder creates a builder with default parameters:
// explicit coupling, fixed window size, unbounded horizon, one iteration.
func MakeSerialSchemeBuilder() SerialSchemeBuilder {
	return SerialSchemeBuilder{
		maxTime:        UndefinedTime,
		maxTimeWindows: UndefinedTimeWindows,
		validDigits:    10,
		dtMethod:       FixedWindowSize,
		mode:           Explicit,
		maxIterations:  1,
	}
}

// WithMaxTime sets the simulated time horizon.
func (b SerialSchemeBuilder) WithMaxTime(t float64) SerialSchemeBuilder {
	b.maxTime = t
	return b
}

// WithMaxTimeWindows sets the window-count horizon.
func (b SerialSchemeBuilder) WithMaxTimeWindows(n int) SerialSchemeBuilder {
	b.maxTimeWindows = n
	return b
}

// WithTimeWindowSize sets the time window size.
func (b SerialSchemeBuilder) WithTimeWindowSize(
	size float64,
) SerialSchemeBuilder {
	b.timeWindowSize = size
	return b
}

// WithValidDigits sets the decimal precision used for window completion
// comparisons.
func (b SerialSchemeBuilder) WithValidDigits(d int) SerialSchemeBuilder {
	b.validDigits = d
	return b
}

// WithFirstParticipant names the participant computing first each window.
func (b SerialSchemeBuilder) WithFirstParticipant(
	name string,
) SerialSchemeBuilder {
	b.firstParticipant = name
	return b
}

// WithSecondParticipant names the participant computing second each window.
func (b SerialSchemeBuilder) WithSecondParticipant(
	name string,
) SerialSchemeBuilder {
	b.secondParticipant = name
	return b
}

// WithLocalParticipant names the participant this scheme instance runs for.
func (b SerialSchemeBuilder) WithLocalParticipant(
	name string,
) SerialSchemeBuilder {
	b.localParticipant = name
	return b
}

// WithM2N sets the transport to the other participant.
func (b SerialSchemeBuilder) WithM2N(comm m2n.Communicator) SerialSchemeBuilder {
	b.comm = comm
	return b
}

// WithTimesteppingMethod selects how the window size is determined.
func (b SerialSchemeBuilder) WithTimesteppingMethod(
	m TimesteppingMethod,
) SerialSchemeBuilder {
	b.dtMethod = m
	return b
}

// WithCouplingMode selects explicit or implicit coupling.
func (b SerialSchemeBuilder) WithCouplingMode(m CouplingMode) SerialSchemeBuilder {
	b.mode = m
	return b
}

// WithMaxIterations bounds the sub-iterations per window.
func (b SerialSchemeBuilder) WithMaxIterations(n int) SerialSchemeBuilder {
	b.maxIterations = n
	return b
}

// WithExtrapolationDegree enables seeding the next window's initial guess
// by extrapolating the converged history with the given degree (0 to 2).
func (b SerialSchemeBuilder) WithExtrapolationDegree(
	degree int,
) SerialSchemeBuilder {
	b.extrapolationDegree = degree
	return b
}

// WithConvergenceMeasure registers a measure judging the named data. A
// scheme without measures defers the judgment to its peer.
func (b SerialSchemeBuilder) WithConvergenceMeasure(
	dataID int,
	m measure.ConvergenceMeasure,
) SerialSchemeBuilder {
	b.measures = append(b.measures, measureContext{dataID: dataID, measure: m})
	return b
}

// WithLogger sets the logger the scheme reports through.
func (b SerialSchemeBuilder) WithLogger(log *logrus.Entry) SerialSchemeBuilder {
	b.log = log
	return b
}

// WithObserver sets the observer receiving iteration/window notifications.
func (b SerialSchemeBuilder) WithObserver(o RunObserver) SerialSchemeBuilder {
	b.observer = o
	return b
}

// WithAcceleration sets the fixed-point acceleration applied between
// non-converged sub-iterations.
func (b SerialSchemeBuilder) WithAcceleration(a Acceleration) SerialSchemeBuilder {
	b.accel = a
	return b
}

func (b SerialSchemeBuilder) parametersMustBeValid() {
	if b.firstParticipant == "" || b.secondParticipant == "" {
		panic("serial coupling needs two named participants")
	}

	if b.firstParticipant == b.secondParticipant {
		panic("first and second participant must differ, got " +
			b.firstParticipant)
	}

	if b.localParticipant != b.firstParticipant &&
		b.localParticipant != b.secondParticipant {
		panic(fmt.Sprintf(
			"local participant %q is neither %q nor %q",
			b.localParticipant, b.firstParticipant, b.secondParticipant))
	}

	if b.comm == nil {
		panic("serial coupling needs an m2n communicator")
	}

	dictatesSize := b.dtMethod == FirstParticipantSetsWindowSize &&
		b.localParticipant == b.firstParticipant
	if b.timeWindowSize <= 0 && !dictatesSize {
		panic(fmt.Sprintf(
			"time window size must be positive, got %g", b.timeWindowSize))
	}

	if b.extrapolationDegree < 0 || b.extrapolationDegree > 2 {
		panic(fmt.Sprintf(
			"extrapolation degree must be 0, 1 or 2, got %d",
			b.extrapolationDegree))
	}

	validateHorizon(b.maxTime, b.maxTimeWindows)
	validateValidDigits(b.validDigits)
	validateIterations(b.mode, b.maxIterations)
}

// Build builds the serial scheme. It panics on invalid configuration.
func (b SerialSchemeBuilder) Build() *SerialScheme {
	b.parametersMustBeValid()

	topo := &serialTopology{
		comm:                b.comm,
		firstParticipant:    b.firstParticipant,
		secondParticipant:   b.secondParticipant,
		doesFirstStep:       b.localParticipant == b.firstParticipant,
		extrapolationDegree: b.extrapolationDegree,
		sendData:            make(DataMap),
		receiveData:         make(DataMap),
		measures:            b.measures,
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
		setsWindowSize:   topo.doesFirstStep,
		log:              b.log,
		observer:         b.observer,
		accel:            b.accel,
	}

	return &SerialScheme{
		scheme: newScheme(cfg, topo),
		topo:   topo,
	}
}
