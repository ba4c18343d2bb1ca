package cplscheme

import (
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cosimlab/tandem/action"
)

// A topology drives the data exchange pattern of one scheme layout
// (two-party staggered or star). The engine owns all time and iteration
// state; the topology owns the data maps, the transport endpoints, and the
// convergence judgment.
type topology interface {
	// anyDataRequiresInitialization tells if InitializeData must run.
	anyDataRequiresInitialization() bool

	// exchangeInitialData seeds data marked for initialization. Reports
	// whether anything was exchanged.
	exchangeInitialData() (bool, error)

	// exchangeWindowSize reconciles the window size between participants
	// when the first participant dictates it. local is this side's
	// candidate; the returned value is the agreed size.
	exchangeWindowSize(local float64) (float64, error)

	// exchange runs one full send/receive pass over all peers and returns
	// the convergence verdict. The verdict is always true in explicit
	// mode.
	exchange(mode CouplingMode) (bool, error)

	// acceleratedData returns the data an acceleration operates on.
	acceleratedData() MergedDataMap

	// onWindowComplete lets the topology snapshot converged values and
	// seed the next window's initial guess.
	onWindowComplete()

	// values resolves a data id to its current value vector.
	values(dataID int) []float64
}

type runState int

const (
	stateUninitialized runState = iota
	stateInitialized
	stateFinalized
)

// schemeConfig is the construction-time configuration of a scheme. Immutable
// after Build, except for the window size when the first participant
// dictates it.
type schemeConfig struct {
	maxTime          float64
	maxTimeWindows   int
	timeWindowSize   float64
	validDigits      int
	dtMethod         TimesteppingMethod
	mode             CouplingMode
	maxIterations    int
	localParticipant string

	// setsWindowSize marks the participant dictating the window size under
	// FirstParticipantSetsWindowSize.
	setsWindowSize bool

	log      *logrus.Entry
	observer RunObserver
	accel    Acceleration
}

// scheme is the one concrete time-window/iteration state machine. Serial and
// multi layouts inject their topology; the state machine never branches on
// the layout.
type scheme struct {
	schemeConfig
	topo topology

	state                runState
	initializeDataCalled bool
	advanceCalled        bool

	time                   float64
	timeWindows            int
	computedTimeWindowPart float64
	lastDt                 float64

	iteration       int
	totalIterations int

	hasExchanged     bool
	timestepComplete bool
	lastConverged    bool

	requiredActions map[string]bool
}

func newScheme(cfg schemeConfig, topo topology) *scheme {
	if cfg.log == nil {
		cfg.log = logrus.NewEntry(logrus.StandardLogger())
	}
	cfg.log = cfg.log.WithField("participant", cfg.localParticipant)

	return &scheme{
		schemeConfig:    cfg,
		topo:            topo,
		lastConverged:   true,
		requiredActions: make(map[string]bool),
	}
}

func (s *scheme) eps() float64 {
	return math.Pow(10, -float64(s.validDigits))
}

func (s *scheme) equals(a, b float64) bool {
	return math.Abs(a-b) <= s.eps()
}

// Initialize transitions the scheme from Uninitialized to Initialized.
func (s *scheme) Initialize(startTime float64, startTimeWindow int) error {
	const op = "Initialize"

	if s.state != stateUninitialized {
		return preconditionErr(op, "scheme is already initialized")
	}

	if startTime < 0 {
		return preconditionErr(op,
			"start time must not be negative, got %g", startTime)
	}

	if startTimeWindow < 0 {
		return preconditionErr(op,
			"start time window must not be negative, got %d", startTimeWindow)
	}

	s.time = startTime
	s.timeWindows = startTimeWindow
	s.iteration = 0
	s.computedTimeWindowPart = 0

	if s.dtMethod == FirstParticipantSetsWindowSize {
		size, err := s.topo.exchangeWindowSize(s.timeWindowSize)
		if err != nil {
			return communicationErr(op, err)
		}
		s.timeWindowSize = size
	}

	if s.mode == Implicit {
		s.RequireAction(WriteIterationCheckpoint)
	}

	if s.topo.anyDataRequiresInitialization() {
		s.RequireAction(WriteInitialData)
	}

	if s.accel != nil {
		s.accel.Initialize(s.topo.acceleratedData())
	}

	s.state = stateInitialized

	s.log.WithFields(logrus.Fields{
		"startTime":      startTime,
		"timeWindowSize": s.timeWindowSize,
		"mode":           s.mode.String(),
	}).Info("coupling scheme initialized")

	return nil
}

// InitializeData runs the very first data exchange.
func (s *scheme) InitializeData() error {
	const op = "InitializeData"

	if s.state != stateInitialized {
		return preconditionErr(op, "scheme is not initialized")
	}

	if s.advanceCalled {
		return preconditionErr(op, "must run before the first Advance")
	}

	if s.initializeDataCalled {
		return preconditionErr(op, "already called")
	}

	if s.IsActionRequired(WriteInitialData) {
		return preconditionErr(op, "initial data has not been written yet")
	}

	exchanged, err := s.topo.exchangeInitialData()
	if err != nil {
		return communicationErr(op, err)
	}

	s.hasExchanged = exchanged
	s.initializeDataCalled = true

	return nil
}

// AddComputedTime accumulates locally computed time into the current window.
func (s *scheme) AddComputedTime(dt float64) error {
	const op = "AddComputedTime"

	if s.state != stateInitialized {
		return preconditionErr(op, "scheme is not initialized")
	}

	if dt <= 0 {
		return preconditionErr(op,
			"computed time must be strictly positive, got %g", dt)
	}

	if !(s.dtMethod == FirstParticipantSetsWindowSize && s.setsWindowSize) {
		remainder := s.timeWindowSize - s.computedTimeWindowPart
		if dt > remainder {
			// remainder can round one ulp below zero when the window is
			// already full; time must never move backwards.
			dt = math.Max(remainder, 0)
		}
	}

	s.lastDt = dt
	s.computedTimeWindowPart += dt
	s.time += dt

	return nil
}

func (s *scheme) windowIsComplete() bool {
	if s.dtMethod == FirstParticipantSetsWindowSize && s.setsWindowSize {
		return s.computedTimeWindowPart > 0
	}

	return s.equals(s.computedTimeWindowPart, s.timeWindowSize)
}

// Advance exchanges data when the current window is complete and returns the
// next maximum permissible local timestep length.
func (s *scheme) Advance() (float64, error) {
	const op = "Advance"

	if s.state != stateInitialized {
		return 0, preconditionErr(op, "scheme is not initialized")
	}

	if !s.IsCouplingOngoing() {
		return 0, preconditionErr(op, "coupling has reached its horizon")
	}

	if len(s.requiredActions) > 0 {
		return 0, preconditionErr(op,
			"required actions are unfulfilled: %s",
			strings.Join(s.requiredActionNames(), ", "))
	}

	s.advanceCalled = true
	s.hasExchanged = false
	s.timestepComplete = false

	if !s.windowIsComplete() {
		return s.ThisTimestepRemainder(), nil
	}

	var err error
	if s.mode == Implicit {
		err = s.implicitAdvance()
	} else {
		err = s.explicitAdvance()
	}
	if err != nil {
		return 0, err
	}

	return s.NextTimestepMaxLength(), nil
}

func (s *scheme) explicitAdvance() error {
	const op = "Advance"

	_, err := s.topo.exchange(Explicit)
	if err != nil {
		return communicationErr(op, err)
	}

	s.hasExchanged = true
	s.lastConverged = true

	return s.completeWindow(1, true)
}

func (s *scheme) implicitAdvance() error {
	const op = "Advance"

	converged := false

	for {
		conv, err := s.topo.exchange(Implicit)
		if err != nil {
			return communicationErr(op, err)
		}

		s.iteration++
		s.totalIterations++
		s.hasExchanged = true

		if s.observer != nil {
			s.observer.IterationDone(s.timeWindows+1, s.iteration, conv)
		}

		if conv {
			converged = true
			break
		}

		if s.iteration >= s.maxIterations {
			break
		}

		if s.accel != nil {
			s.accel.Accelerate(s.topo.acceleratedData())
		}
	}

	s.lastConverged = converged
	if !converged {
		s.log.WithFields(logrus.Fields{
			"timeWindow": s.timeWindows + 1,
			"iterations": s.iteration,
		}).Warn("time window completed without convergence")
	}

	iterations := s.iteration

	err := s.completeWindow(iterations, converged)
	if err != nil {
		return err
	}

	s.RequireAction(WriteIterationCheckpoint)

	return nil
}

func (s *scheme) completeWindow(iterations int, converged bool) error {
	const op = "Advance"

	if s.dtMethod == FirstParticipantSetsWindowSize {
		size, err := s.topo.exchangeWindowSize(s.computedTimeWindowPart)
		if err != nil {
			return communicationErr(op, err)
		}
		s.timeWindowSize = size
	}

	s.topo.onWindowComplete()

	if s.accel != nil {
		s.accel.NextWindow()
	}

	if s.observer != nil {
		s.observer.WindowDone(s.timeWindows+1, s.time, iterations, converged)
	}

	s.timeWindows++
	s.iteration = 0
	s.computedTimeWindowPart = 0
	s.timestepComplete = true

	s.log.WithFields(logrus.Fields{
		"timeWindow": s.timeWindows,
		"time":       s.time,
		"iterations": iterations,
	}).Debug("time window complete")

	return nil
}

// Finalize transitions the scheme to its terminal state.
func (s *scheme) Finalize() error {
	const op = "Finalize"

	if s.state == stateUninitialized {
		return preconditionErr(op, "scheme was never initialized")
	}

	if s.state == stateFinalized {
		return preconditionErr(op, "scheme is already finalized")
	}

	s.state = stateFinalized

	s.log.WithFields(logrus.Fields{
		"time":            s.time,
		"timeWindows":     s.timeWindows,
		"totalIterations": s.totalIterations,
	}).Info("coupling scheme finalized")

	return nil
}

// RequireAction records a driver obligation.
func (s *scheme) RequireAction(name string) {
	s.requiredActions[name] = true
}

// IsActionRequired tells if the named obligation is outstanding.
func (s *scheme) IsActionRequired(name string) bool {
	return s.requiredActions[name]
}

// PerformedAction marks the named obligation fulfilled.
func (s *scheme) PerformedAction(name string) {
	delete(s.requiredActions, name)
}

func (s *scheme) requiredActionNames() []string {
	names := make([]string, 0, len(s.requiredActions))
	for name := range s.requiredActions {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// HasDataBeenExchanged tells if the last Advance exchanged data.
func (s *scheme) HasDataBeenExchanged() bool {
	return s.hasExchanged
}

// WillDataBeExchanged tells if data will be exchanged within the lookahead.
func (s *scheme) WillDataBeExchanged(lookahead float64) bool {
	remainder := s.timeWindowSize - s.computedTimeWindowPart
	return remainder-lookahead <= s.eps()
}

// IsCouplingTimestepComplete tells if the last Advance completed a window.
func (s *scheme) IsCouplingTimestepComplete() bool {
	return s.timestepComplete
}

// IsCouplingOngoing becomes false once a configured horizon is reached.
func (s *scheme) IsCouplingOngoing() bool {
	if s.state != stateInitialized {
		return false
	}

	timeLeft := s.maxTime == UndefinedTime || s.maxTime-s.time > s.eps()
	windowsLeft := s.maxTimeWindows == UndefinedTimeWindows ||
		s.timeWindows < s.maxTimeWindows

	return timeLeft && windowsLeft
}

// IsInitialized tells if Initialize has run.
func (s *scheme) IsInitialized() bool {
	return s.state == stateInitialized
}

// HasConverged reports the convergence outcome of the last completed window.
func (s *scheme) HasConverged() bool {
	return s.lastConverged
}

// NextTimestepMaxLength returns the remainder of the current window, or the
// full window size if a new window just started.
func (s *scheme) NextTimestepMaxLength() float64 {
	if s.computedTimeWindowPart == 0 {
		if s.maxTime != UndefinedTime {
			return math.Max(0, math.Min(s.timeWindowSize, s.maxTime-s.time))
		}
		return s.timeWindowSize
	}

	return s.ThisTimestepRemainder()
}

// ThisTimestepRemainder returns the not-yet-computed part of the window.
func (s *scheme) ThisTimestepRemainder() float64 {
	remainder := s.timeWindowSize - s.computedTimeWindowPart
	if remainder <= s.eps() {
		return 0
	}

	return remainder
}

// TimeWindowSize returns the size of the current window.
func (s *scheme) TimeWindowSize() float64 {
	return s.timeWindowSize
}

// Time returns the simulated time.
func (s *scheme) Time() float64 {
	return s.time
}

// Timesteps returns the number of completed time windows.
func (s *scheme) Timesteps() int {
	return s.timeWindows
}

// TotalIterations returns the number of sub-iterations over the whole run.
func (s *scheme) TotalIterations() int {
	return s.totalIterations
}

// AppliedTimings returns the action timings applying after the last
// Initialize/Advance call.
func (s *scheme) AppliedTimings() []*action.Timing {
	timings := []*action.Timing{action.TimingAlwaysPost}

	if s.hasExchanged {
		timings = append(timings, action.TimingOnExchangePost)
	}

	if s.timestepComplete {
		timings = append(timings, action.TimingOnTimestepCompletePost)
	}

	return timings
}

// Values resolves a data id to its current value vector.
func (s *scheme) Values(dataID int) []float64 {
	return s.topo.values(dataID)
}

// LastDt returns the last locally computed timestep length.
func (s *scheme) LastDt() float64 {
	return s.lastDt
}

// ComputedTimeWindowPart returns the already computed part of the window.
func (s *scheme) ComputedTimeWindowPart() float64 {
	return s.computedTimeWindowPart
}
