package gateway

import (
	"github.com/bcast-labs/bcastgw/internal/adapters/tcp"
	"github.com/bcast-labs/bcastgw/internal/app"
)

// State is the lifecycle state of a Gateway instance.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}

// ConnState is the state of the outbound sink connection.
type ConnState int

const (
	ConnDisconnected ConnState = iota
	ConnConnecting
	ConnConnected
	ConnTerminated
)

// String returns a human-readable representation of the connection state.
func (s ConnState) String() string {
	switch s {
	case ConnDisconnected:
		return "Disconnected"
	case ConnConnecting:
		return "Connecting"
	case ConnConnected:
		return "Connected"
	case ConnTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

func convertConnState(s tcp.State) ConnState {
	switch s {
	case tcp.StateConnecting:
		return ConnConnecting
	case tcp.StateConnected:
		return ConnConnected
	case tcp.StateTerminated:
		return ConnTerminated
	default:
		return ConnDisconnected
	}
}
