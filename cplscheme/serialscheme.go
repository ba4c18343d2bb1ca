package cplscheme

import (
	"fmt"

	"github.com/cosimlab/tandem/m2n"
	"github.com/cosimlab/tandem/mesh"
)

// serialTopology is the two-participant staggered exchange. The first
// participant always computes and sends before the second; the roles are
// fixed for the whole run.
type serialTopology struct {
	comm              m2n.Communicator
	firstParticipant  string
	secondParticipant string

	// doesFirstStep marks the side playing the first participant.
	doesFirstStep bool

	extrapolationDegree int

	sendData     DataMap
	sendOrder    []int
	receiveData  DataMap
	receiveOrder []int

	measures []measureContext
}

func (t *serialTopology) anyDataRequiresInitialization() bool {
	for _, d := range t.sendData {
		if d.Initialize {
			return true
		}
	}
	for _, d := range t.receiveData {
		if d.Initialize {
			return true
		}
	}

	return false
}

// exchangeInitialData seeds the first participant with the second's initial
// values. Initial data only flows second to first: the first participant
// computes first and is the one that needs seeding.
func (t *serialTopology) exchangeInitialData() (bool, error) {
	exchanged := false

	if t.doesFirstStep {
		for _, id := range t.receiveOrder {
			d := t.receiveData[id]
			if !d.Initialize {
				continue
			}

			err := t.comm.Receive(d.Values)
			if err != nil {
				return exchanged, err
			}
			exchanged = true
		}

		return exchanged, nil
	}

	for _, id := range t.sendOrder {
		d := t.sendData[id]
		if !d.Initialize {
			continue
		}

		err := t.comm.Send(d.Values)
		if err != nil {
			return exchanged, err
		}
		exchanged = true
	}

	return exchanged, nil
}

func (t *serialTopology) exchangeWindowSize(local float64) (float64, error) {
	if t.doesFirstStep {
		err := t.comm.SendFloat64(local)
		if err != nil {
			return 0, err
		}

		return local, nil
	}

	return t.comm.ReceiveFloat64()
}

// exchange runs one staggered send/receive pass. In implicit mode the
// convergence verdict travels second to first and the combined verdict
// travels back, so both sides take the same loop decision even when only
// one of them holds measures.
func (t *serialTopology) exchange(mode CouplingMode) (bool, error) {
	t.storePreviousIterations()

	if t.doesFirstStep {
		return t.exchangeAsFirst(mode)
	}

	return t.exchangeAsSecond(mode)
}

func (t *serialTopology) exchangeAsFirst(mode CouplingMode) (bool, error) {
	err := t.sendAll()
	if err != nil {
		return false, err
	}

	err = t.receiveAll()
	if err != nil {
		return false, err
	}

	if mode == Explicit {
		return true, nil
	}

	peerVerdict, err := t.comm.ReceiveBool()
	if err != nil {
		return false, err
	}

	verdict := peerVerdict
	if len(t.measures) > 0 {
		verdict = verdict && judgeConvergence(t.measures, t.findData)
	}

	err = t.comm.SendBool(verdict)
	if err != nil {
		return false, err
	}

	return verdict, nil
}

func (t *serialTopology) exchangeAsSecond(mode CouplingMode) (bool, error) {
	err := t.receiveAll()
	if err != nil {
		return false, err
	}

	err = t.sendAll()
	if err != nil {
		return false, err
	}

	if mode == Explicit {
		return true, nil
	}

	localVerdict := true
	if len(t.measures) > 0 {
		localVerdict = judgeConvergence(t.measures, t.findData)
	}

	err = t.comm.SendBool(localVerdict)
	if err != nil {
		return false, err
	}

	return t.comm.ReceiveBool()
}

func (t *serialTopology) sendAll() error {
	for _, id := range t.sendOrder {
		err := t.comm.Send(t.sendData[id].Values)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *serialTopology) receiveAll() error {
	for _, id := range t.receiveOrder {
		err := t.comm.Receive(t.receiveData[id].Values)
		if err != nil {
			return err
		}
	}

	return nil
}

func (t *serialTopology) storePreviousIterations() {
	for _, id := range t.sendOrder {
		t.sendData[id].StorePreviousIteration()
	}
	for _, id := range t.receiveOrder {
		t.receiveData[id].StorePreviousIteration()
	}
}

func (t *serialTopology) acceleratedData() MergedDataMap {
	merged := make(MergedDataMap)

	for id, d := range t.sendData {
		merged[MergedKey{DataID: id, Role: RoleSend}] = d
	}
	for id, d := range t.receiveData {
		merged[MergedKey{DataID: id, Role: RoleReceive}] = d
	}

	return merged
}

func (t *serialTopology) onWindowComplete() {
	resetMeasures(t.measures)

	for _, id := range t.sendOrder {
		d := t.sendData[id]
		d.StoreWindowConverged()
		if t.extrapolationDegree > 0 {
			d.Extrapolate(t.extrapolationDegree)
		}
	}

	for _, id := range t.receiveOrder {
		t.receiveData[id].StoreWindowConverged()
	}
}

func (t *serialTopology) values(dataID int) []float64 {
	d := t.findData(dataID)
	if d == nil {
		return nil
	}

	return d.Values
}

func (t *serialTopology) findData(dataID int) *CouplingData {
	if d, found := t.sendData[dataID]; found {
		return d
	}
	if d, found := t.receiveData[dataID]; found {
		return d
	}

	return nil
}

// A SerialScheme couples exactly two participants with a staggered
// protocol: the first participant computes and sends before the second
// computes, every window and every sub-iteration.
type SerialScheme struct {
	*scheme
	topo *serialTopology
}

// AddDataToSend registers a quantity this participant sends each exchange.
// Initial data only flows from the second participant to the first, so the
// first participant must not mark send data for initialization.
func (s *SerialScheme) AddDataToSend(
	d *mesh.Data,
	m *mesh.Mesh,
	initialize bool,
) {
	if _, found := s.topo.sendData[d.ID()]; found {
		panic("data " + d.Name() + " already registered to send")
	}
	if _, found := s.topo.receiveData[d.ID()]; found {
		panic("data " + d.Name() + " already registered to receive")
	}
	if initialize && s.topo.doesFirstStep {
		panic("the first participant cannot send initial data (" +
			d.Name() + ")")
	}

	s.topo.sendData[d.ID()] = NewCouplingData(d, m, initialize)
	s.topo.sendOrder = append(s.topo.sendOrder, d.ID())
}

// AddDataToReceive registers a quantity this participant receives each
// exchange. Only the first participant receives initial data.
func (s *SerialScheme) AddDataToReceive(
	d *mesh.Data,
	m *mesh.Mesh,
	initialize bool,
) {
	if _, found := s.topo.receiveData[d.ID()]; found {
		panic("data " + d.Name() + " already registered to receive")
	}
	if _, found := s.topo.sendData[d.ID()]; found {
		panic("data " + d.Name() + " already registered to send")
	}
	if initialize && !s.topo.doesFirstStep {
		panic("the second participant cannot receive initial data (" +
			d.Name() + ")")
	}

	s.topo.receiveData[d.ID()] = NewCouplingData(d, m, initialize)
	s.topo.receiveOrder = append(s.topo.receiveOrder, d.ID())
}

// DoesFirstStep tells if this side plays the first participant.
func (s *SerialScheme) DoesFirstStep() bool {
	return s.topo.doesFirstStep
}

func validateHorizon(maxTime float64, maxTimeWindows int) {
	if maxTime != UndefinedTime && maxTime <= 0 {
		panic(fmt.Sprintf("max time must be positive, got %g", maxTime))
	}

	if maxTimeWindows != UndefinedTimeWindows && maxTimeWindows <= 0 {
		panic(fmt.Sprintf(
			"max time windows must be positive, got %d", maxTimeWindows))
	}
}

func validateValidDigits(validDigits int) {
	if validDigits < 1 || validDigits > 16 {
		panic(fmt.Sprintf(
			"valid digits must be between 1 and 16, got %d", validDigits))
	}
}

func validateIterations(mode CouplingMode, maxIterations int) {
	if mode == Explicit && maxIterations != 1 {
		panic(fmt.Sprintf(
			"explicit coupling admits exactly 1 iteration, got %d",
			maxIterations))
	}

	if mode == Implicit && maxIterations < 1 {
		panic(fmt.Sprintf(
			"implicit coupling needs at least 1 iteration, got %d",
			maxIterations))
	}
}
