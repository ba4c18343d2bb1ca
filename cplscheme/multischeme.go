package cplscheme

import (
	"fmt"
	"sort"

	"github.com/cosimlab/tandem/m2n"
	"github.com/cosimlab/tandem/mesh"
)

// A peerChannel bundles one remote participant's transport with the data
// flowing over it.
type peerChannel struct {
	comm m2n.Communicator

	sendData     DataMap
	sendOrder    []int
	receiveData  DataMap
	receiveOrder []int
}

// multiTopology is the star exchange: one local participant with an
// independent channel per remote peer. Peer channels are always driven in
// deterministic name order so that symmetric configurations cannot
// cross-wait on each other.
type multiTopology struct {
	localParticipant string

	// peers is indexed by registration index; ordered holds the same
	// channels sorted by remote participant name.
	peers   []*peerChannel
	ordered []*peerChannel

	// controller marks the side judging convergence for all peers; the
	// others receive the global verdict from controllerPeer's channel.
	controller     bool
	controllerPeer string

	measures []measureContext

	merged MergedDataMap
}

func (t *multiTopology) orderedPeers() []*peerChannel {
	if t.ordered == nil {
		t.ordered = make([]*peerChannel, len(t.peers))
		copy(t.ordered, t.peers)
		sort.Slice(t.ordered, func(i, j int) bool {
			return t.ordered[i].comm.RemoteName() <
				t.ordered[j].comm.RemoteName()
		})
	}

	return t.ordered
}

func (t *multiTopology) controllerChannel() *peerChannel {
	peers := t.orderedPeers()

	if t.controllerPeer == "" {
		return peers[0]
	}

	for _, p := range peers {
		if p.comm.RemoteName() == t.controllerPeer {
			return p
		}
	}

	panic("controller peer " + t.controllerPeer + " has no channel")
}

func (t *multiTopology) anyDataRequiresInitialization() bool {
	for _, p := range t.peers {
		for _, d := range p.sendData {
			if d.Initialize {
				return true
			}
		}
		for _, d := range p.receiveData {
			if d.Initialize {
				return true
			}
		}
	}

	return false
}

func (t *multiTopology) exchangeInitialData() (bool, error) {
	exchanged := false

	if t.controller {
		for _, p := range t.orderedPeers() {
			ok, err := p.sendInitial()
			exchanged = exchanged || ok
			if err != nil {
				return exchanged, err
			}
		}
		for _, p := range t.orderedPeers() {
			ok, err := p.receiveInitial()
			exchanged = exchanged || ok
			if err != nil {
				return exchanged, err
			}
		}

		return exchanged, nil
	}

	for _, p := range t.orderedPeers() {
		ok, err := p.receiveInitial()
		exchanged = exchanged || ok
		if err != nil {
			return exchanged, err
		}
	}
	for _, p := range t.orderedPeers() {
		ok, err := p.sendInitial()
		exchanged = exchanged || ok
		if err != nil {
			return exchanged, err
		}
	}

	return exchanged, nil
}

func (t *multiTopology) exchangeWindowSize(local float64) (float64, error) {
	if t.controller {
		for _, p := range t.orderedPeers() {
			err := p.comm.SendFloat64(local)
			if err != nil {
				return 0, err
			}
		}

		return local, nil
	}

	return t.controllerChannel().comm.ReceiveFloat64()
}

// exchange drives every peer channel through a full exchange before judging
// convergence. All peers share the same termination decision: the controller
// judges once, globally, and broadcasts the verdict.
func (t *multiTopology) exchange(mode CouplingMode) (bool, error) {
	t.storePreviousIterations()

	if t.controller {
		for _, p := range t.orderedPeers() {
			err := p.sendAll()
			if err != nil {
				return false, err
			}
		}
		for _, p := range t.orderedPeers() {
			err := p.receiveAll()
			if err != nil {
				return false, err
			}
		}

		if mode == Explicit {
			return true, nil
		}

		verdict := true
		if len(t.measures) > 0 {
			verdict = judgeConvergence(t.measures, t.findData)
		}

		for _, p := range t.orderedPeers() {
			err := p.comm.SendBool(verdict)
			if err != nil {
				return false, err
			}
		}

		return verdict, nil
	}

	for _, p := range t.orderedPeers() {
		err := p.receiveAll()
		if err != nil {
			return false, err
		}
	}
	for _, p := range t.orderedPeers() {
		err := p.sendAll()
		if err != nil {
			return false, err
		}
	}

	if mode == Explicit {
		return true, nil
	}

	return t.controllerChannel().comm.ReceiveBool()
}

func (t *multiTopology) storePreviousIterations() {
	for _, p := range t.peers {
		for _, id := range p.sendOrder {
			p.sendData[id].StorePreviousIteration()
		}
		for _, id := range p.receiveOrder {
			p.receiveData[id].StorePreviousIteration()
		}
	}
}

func (t *multiTopology) acceleratedData() MergedDataMap {
	if t.merged == nil {
		t.merged = t.mergeData()
	}

	return t.merged
}

// mergeData builds one combined map, keyed by data id and role across all
// peers. Needed because quasi-Newton style acceleration operates on one
// fixed-point vector spanning all coupling interfaces.
func (t *multiTopology) mergeData() MergedDataMap {
	merged := make(MergedDataMap)

	for _, p := range t.orderedPeers() {
		for id, d := range p.sendData {
			key := MergedKey{DataID: id, Role: RoleSend}
			if _, found := merged[key]; found {
				panic(fmt.Sprintf(
					"data %d registered to send on more than one peer", id))
			}
			merged[key] = d
		}

		for id, d := range p.receiveData {
			key := MergedKey{DataID: id, Role: RoleReceive}
			if _, found := merged[key]; found {
				panic(fmt.Sprintf(
					"data %d registered to receive on more than one peer", id))
			}
			merged[key] = d
		}
	}

	return merged
}

func (t *multiTopology) onWindowComplete() {
	resetMeasures(t.measures)

	for _, p := range t.peers {
		for _, id := range p.sendOrder {
			p.sendData[id].StoreWindowConverged()
		}
		for _, id := range p.receiveOrder {
			p.receiveData[id].StoreWindowConverged()
		}
	}
}

func (t *multiTopology) values(dataID int) []float64 {
	d := t.findData(dataID)
	if d == nil {
		return nil
	}

	return d.Values
}

func (t *multiTopology) findData(dataID int) *CouplingData {
	for _, p := range t.peers {
		if d, found := p.sendData[dataID]; found {
			return d
		}
		if d, found := p.receiveData[dataID]; found {
			return d
		}
	}

	return nil
}

func (p *peerChannel) sendAll() error {
	for _, id := range p.sendOrder {
		err := p.comm.Send(p.sendData[id].Values)
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *peerChannel) receiveAll() error {
	for _, id := range p.receiveOrder {
		err := p.comm.Receive(p.receiveData[id].Values)
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *peerChannel) sendInitial() (bool, error) {
	sent := false

	for _, id := range p.sendOrder {
		d := p.sendData[id]
		if !d.Initialize {
			continue
		}

		err := p.comm.Send(d.Values)
		if err != nil {
			return sent, err
		}
		sent = true
	}

	return sent, nil
}

func (p *peerChannel) receiveInitial() (bool, error) {
	received := false

	for _, id := range p.receiveOrder {
		d := p.receiveData[id]
		if !d.Initialize {
			continue
		}

		err := p.comm.Receive(d.Values)
		if err != nil {
			return received, err
		}
		received = true
	}

	return received, nil
}

// A MultiScheme couples one local participant with several remote peers
// simultaneously (star topology). Every participant of a multi-coupled run
// uses a MultiScheme; exactly one of them is the controller.
type MultiScheme struct {
	*scheme
	topo *multiTopology
}

// AddDataToSend registers a quantity sent to the peer with the given index.
func (s *MultiScheme) AddDataToSend(
	d *mesh.Data,
	m *mesh.Mesh,
	initialize bool,
	index int,
) {
	p := s.peerAt(index)

	if _, found := p.sendData[d.ID()]; found {
		panic("data " + d.Name() + " already registered to send on peer " +
			p.comm.RemoteName())
	}

	p.sendData[d.ID()] = NewCouplingData(d, m, initialize)
	p.sendOrder = append(p.sendOrder, d.ID())
	s.topo.merged = nil
}

// AddDataToReceive registers a quantity received from the peer with the
// given index.
func (s *MultiScheme) AddDataToReceive(
	d *mesh.Data,
	m *mesh.Mesh,
	initialize bool,
	index int,
) {
	p := s.peerAt(index)

	if _, found := p.receiveData[d.ID()]; found {
		panic("data " + d.Name() + " already registered to receive on peer " +
			p.comm.RemoteName())
	}

	p.receiveData[d.ID()] = NewCouplingData(d, m, initialize)
	p.receiveOrder = append(p.receiveOrder, d.ID())
	s.topo.merged = nil
}

// MergeData builds the combined data map spanning all peers.
func (s *MultiScheme) MergeData() MergedDataMap {
	s.topo.merged = s.topo.mergeData()
	return s.topo.merged
}

func (s *MultiScheme) peerAt(index int) *peerChannel {
	if index < 0 || index >= len(s.topo.peers) {
		panic(fmt.Sprintf(
			"peer index %d out of range, %d peers registered",
			index, len(s.topo.peers)))
	}

	return s.topo.peers[index]
}
