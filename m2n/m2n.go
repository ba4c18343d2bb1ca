// Package m2n provides the point-to-point transport connecting two
// participants' processes. All send and receive calls are rendezvous-style
// blocking calls with no timeout: a mismatched protocol between two
// participants blocks indefinitely rather than failing detectably.
package m2n

// A Communicator is one endpoint of a channel between two participants. It
// is exclusively owned by the coupling scheme that created it and is never
// used concurrently by more than one exchange step.
type Communicator interface {
	// LocalName returns the name of the participant owning this endpoint.
	LocalName() string

	// RemoteName returns the name of the participant on the other end.
	RemoteName() string

	// PrepareEstablishment publishes whatever the remote side needs to find
	// this endpoint.
	PrepareEstablishment()

	// ConnectPrimary establishes the connection from the accepting side.
	ConnectPrimary() error

	// ConnectSecondary establishes the connection from the requesting side.
	ConnectSecondary() error

	// CleanupEstablishment removes what PrepareEstablishment published.
	CleanupEstablishment()

	// IsConnected tells if the channel is usable.
	IsConnected() bool

	// CloseConnection tears the channel down. Blocked peers observe a
	// communication error.
	CloseConnection() error

	// Send transmits a value vector. Blocks until the peer receives.
	Send(values []float64) error

	// Receive fills values with the next transmitted vector. Blocks until
	// the peer sends. The peer must have sent a vector of the same length.
	Receive(values []float64) error

	// SendFloat64 transmits a single value.
	SendFloat64(v float64) error

	// ReceiveFloat64 receives a single value.
	ReceiveFloat64() (float64, error)

	// SendBool transmits a single flag.
	SendBool(v bool) error

	// ReceiveBool receives a single flag.
	ReceiveBool() (bool, error)
}
