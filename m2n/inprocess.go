package m2n

import (
	"fmt"
	"sync"
)

type packetKind int

const (
	kindVector packetKind = iota
	kindScalar
	kindBool
)

func (k packetKind) String() string {
	switch k {
	case kindVector:
		return "vector"
	case kindScalar:
		return "scalar"
	case kindBool:
		return "bool"
	default:
		return "unknown"
	}
}

type packet struct {
	kind   packetKind
	vector []float64
	scalar float64
	flag   bool
}

// An inProcessEndpoint is one side of an in-process communicator pair. Sends
// rendezvous with the peer's receives through an unbuffered channel.
type inProcessEndpoint struct {
	localName  string
	remoteName string

	out chan packet
	in  chan packet

	localClosed  chan struct{}
	remoteClosed chan struct{}
	closeOnce    *sync.Once

	connected bool
}

// NewInProcessPair creates both endpoints of a channel between two
// participants living in the same process. Intended for tests and for
// running coupled demo solvers without a network.
func NewInProcessPair(nameA, nameB string) (Communicator, Communicator) {
	aToB := make(chan packet)
	bToA := make(chan packet)
	aClosed := make(chan struct{})
	bClosed := make(chan struct{})

	a := &inProcessEndpoint{
		localName:    nameA,
		remoteName:   nameB,
		out:          aToB,
		in:           bToA,
		localClosed:  aClosed,
		remoteClosed: bClosed,
		closeOnce:    &sync.Once{},
	}
	b := &inProcessEndpoint{
		localName:    nameB,
		remoteName:   nameA,
		out:          bToA,
		in:           aToB,
		localClosed:  bClosed,
		remoteClosed: aClosed,
		closeOnce:    &sync.Once{},
	}

	return a, b
}

func (e *inProcessEndpoint) LocalName() string {
	return e.localName
}

func (e *inProcessEndpoint) RemoteName() string {
	return e.remoteName
}

// PrepareEstablishment is a no-op for in-process pairs.
func (e *inProcessEndpoint) PrepareEstablishment() {}

// ConnectPrimary marks the endpoint connected.
func (e *inProcessEndpoint) ConnectPrimary() error {
	e.connected = true
	return nil
}

// ConnectSecondary marks the endpoint connected.
func (e *inProcessEndpoint) ConnectSecondary() error {
	e.connected = true
	return nil
}

// CleanupEstablishment is a no-op for in-process pairs.
func (e *inProcessEndpoint) CleanupEstablishment() {}

// IsConnected tells if the endpoint is usable.
func (e *inProcessEndpoint) IsConnected() bool {
	return e.connected
}

// CloseConnection marks this side closed. Peers blocked on the channel
// observe a communication error.
func (e *inProcessEndpoint) CloseConnection() error {
	e.closeOnce.Do(func() {
		close(e.localClosed)
	})
	e.connected = false

	return nil
}

func (e *inProcessEndpoint) send(p packet) error {
	if !e.connected {
		return fmt.Errorf("m2n %s->%s: send on unconnected channel",
			e.localName, e.remoteName)
	}

	select {
	case e.out <- p:
		return nil
	case <-e.remoteClosed:
		return fmt.Errorf("m2n %s->%s: peer closed the connection",
			e.localName, e.remoteName)
	case <-e.localClosed:
		return fmt.Errorf("m2n %s->%s: connection closed locally",
			e.localName, e.remoteName)
	}
}

func (e *inProcessEndpoint) receive(want packetKind) (packet, error) {
	if !e.connected {
		return packet{}, fmt.Errorf(
			"m2n %s<-%s: receive on unconnected channel",
			e.localName, e.remoteName)
	}

	select {
	case p := <-e.in:
		if p.kind != want {
			return packet{}, fmt.Errorf(
				"m2n %s<-%s: expected %s, peer sent %s",
				e.localName, e.remoteName, want, p.kind)
		}
		return p, nil
	case <-e.remoteClosed:
		return packet{}, fmt.Errorf("m2n %s<-%s: peer closed the connection",
			e.localName, e.remoteName)
	case <-e.localClosed:
		return packet{}, fmt.Errorf("m2n %s<-%s: connection closed locally",
			e.localName, e.remoteName)
	}
}

// Send transmits a value vector. The payload is copied so that the sender
// may keep mutating its buffer after Send returns.
func (e *inProcessEndpoint) Send(values []float64) error {
	payload := make([]float64, len(values))
	copy(payload, values)

	return e.send(packet{kind: kindVector, vector: payload})
}

// Receive fills values with the next transmitted vector.
func (e *inProcessEndpoint) Receive(values []float64) error {
	p, err := e.receive(kindVector)
	if err != nil {
		return err
	}

	if len(p.vector) != len(values) {
		return fmt.Errorf(
			"m2n %s<-%s: expected %d values, peer sent %d",
			e.localName, e.remoteName, len(values), len(p.vector))
	}

	copy(values, p.vector)

	return nil
}

// SendFloat64 transmits a single value.
func (e *inProcessEndpoint) SendFloat64(v float64) error {
	return e.send(packet{kind: kindScalar, scalar: v})
}

// ReceiveFloat64 receives a single value.
func (e *inProcessEndpoint) ReceiveFloat64() (float64, error) {
	p, err := e.receive(kindScalar)
	if err != nil {
		return 0, err
	}

	return p.scalar, nil
}

// SendBool transmits a single flag.
func (e *inProcessEndpoint) SendBool(v bool) error {
	return e.send(packet{kind: kindBool, flag: v})
}

// ReceiveBool receives a single flag.
func (e *inProcessEndpoint) ReceiveBool() (bool, error) {
	p, err := e.receive(kindBool)
	if err != nil {
		return false, err
	}

	return p.flag, nil
}
