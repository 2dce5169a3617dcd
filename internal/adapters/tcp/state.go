package tcp

// State is the connection state of the manager. Exactly one instance
// exists per process, owned by the manager's run goroutine.
type State int

const (
	// StateDisconnected means no connection exists and no dial is in
	// flight. Initial state.
	StateDisconnected State = iota

	// StateConnecting means a dial is in flight.
	StateConnecting

	// StateConnected means frames can be sent.
	StateConnected

	// StateTerminated means the run loop has exited on shutdown.
	StateTerminated
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}
