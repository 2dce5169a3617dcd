package gateway

import (
	"time"

	"github.com/bcast-labs/bcastgw/internal/app"
)

// EventHandler receives gateway events. Events are called
// synchronously from gateway goroutines; handlers must not block.
type EventHandler interface {
	// OnStateChange is called on every lifecycle transition.
	OnStateChange(event StateChangeEvent)

	// OnConnStateChange is called on every sink connection
	// transition.
	OnConnStateChange(event ConnStateChangeEvent)

	// OnDropSummary is called when the forwarder flushes a drop
	// summary.
	OnDropSummary(event DropSummaryEvent)
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// ConnStateChangeEvent describes a sink connection transition.
type ConnStateChangeEvent struct {
	Previous ConnState
	Current  ConnState
}

// DropSummaryEvent describes datagrams dropped over a time window.
type DropSummaryEvent struct {
	Dropped uint64
	Window  time.Duration
}

// eventEmitterWrapper adapts EventHandler to the internal emitter
// interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnDropSummary(dropped uint64, window time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnDropSummary(DropSummaryEvent{
		Dropped: dropped,
		Window:  window,
	})
}
