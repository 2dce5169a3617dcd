// Package tcp owns the single outbound connection to the gateway's
// sink: dialing, failure detection, and reconnection with delay.
package tcp

import (
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/bcast-labs/bcastgw/internal/metrics"
	"github.com/bcast-labs/bcastgw/internal/ports"
)

// DialFunc dials the sink. It exists so tests can substitute the
// network; the default is a plain net.Dialer.
type DialFunc func(ctx context.Context, addr string) (net.Conn, error)

// Config holds the connection manager settings.
type Config struct {
	// Host and Port identify the sink.
	Host string
	Port int

	// ReconnectDelay is the wait between connection attempts, both
	// after a failed dial and after a lost connection.
	ReconnectDelay time.Duration

	// LivenessTimeout is the read deadline of the liveness watcher.
	// Short enough to notice a real closure quickly, long enough that
	// idle periods are not misclassified as failures.
	LivenessTimeout time.Duration

	// Dial overrides the dialer. Nil means net.Dialer.
	Dial DialFunc

	// OnStateChange, if set, is called on every state transition from
	// the manager's own goroutine.
	OnStateChange func(previous, current State)
}

// Manager maintains the outbound TCP connection. A single goroutine
// running Run owns the full Disconnected -> Connecting -> Connected
// cycle, so at most one dial is ever in flight. Send only reads the
// live connection handle; it never drives reconnection.
type Manager struct {
	cfg     Config
	target  string
	dial    DialFunc
	logger  ports.Logger
	metrics *metrics.Registry

	mu    sync.Mutex
	conn  net.Conn
	state State
}

// NewManager creates a connection manager. Run must be started for the
// manager to connect.
func NewManager(cfg Config, logger ports.Logger, reg *metrics.Registry) *Manager {
	dial := cfg.Dial
	if dial == nil {
		var d net.Dialer
		dial = func(ctx context.Context, addr string) (net.Conn, error) {
			return d.DialContext(ctx, "tcp", addr)
		}
	}
	return &Manager{
		cfg:     cfg,
		target:  net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		dial:    dial,
		logger:  logger,
		metrics: reg,
		state:   StateDisconnected,
	}
}

// State returns the current connection state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Send writes frame to the live connection. It returns true once the
// frame reached the OS send buffer, false if no connection exists or
// the write failed. A failed write closes the connection, which wakes
// the liveness watcher and drives the state machine to Disconnected.
// Send never blocks waiting for a connection; it may block only while
// the transport drains an already-connected socket.
func (m *Manager) Send(frame []byte) bool {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()

	if conn == nil {
		return false
	}

	if _, err := conn.Write(frame); err != nil {
		m.logger.Warn("sink write failed",
			ports.String("target", m.target),
			ports.Err(err),
		)
		m.dropConn(conn)
		return false
	}
	return true
}

// Run executes the reconnect loop until ctx is canceled. It is the
// sole owner of state transitions and must run in exactly one
// goroutine.
func (m *Manager) Run(ctx context.Context) {
	defer m.terminate()

	for ctx.Err() == nil {
		m.setState(StateConnecting)
		m.logger.Info("connecting to sink", ports.String("target", m.target))

		conn, err := m.dial(ctx, m.target)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.Warn("connect failed",
				ports.String("target", m.target),
				ports.Err(err),
			)
			m.setState(StateDisconnected)
			if !m.wait(ctx) {
				return
			}
			continue
		}

		m.mu.Lock()
		m.conn = conn
		m.mu.Unlock()
		m.setState(StateConnected)
		m.metrics.Connects.Inc()
		m.logger.Info("connected to sink", ports.String("target", m.target))

		m.watch(ctx, conn)

		m.dropConn(conn)
		m.setState(StateDisconnected)
		if ctx.Err() != nil {
			return
		}
		m.logger.Info("sink connection lost, retrying",
			ports.String("target", m.target),
			ports.Duration("delay", m.cfg.ReconnectDelay),
		)
		if !m.wait(ctx) {
			return
		}
	}
}

// watch observes conn for transport-level closure. A read deadline of
// LivenessTimeout bounds each read; a deadline expiry means the
// connection is idle but alive. Data sent back by the sink is read and
// discarded. watch returns when the connection is gone or ctx is
// canceled; it performs no application-level heartbeat.
func (m *Manager) watch(ctx context.Context, conn net.Conn) {
	buf := make([]byte, 1024)
	for {
		if ctx.Err() != nil {
			return
		}
		if err := conn.SetReadDeadline(time.Now().Add(m.cfg.LivenessTimeout)); err != nil {
			return
		}
		_, err := conn.Read(buf)
		if err == nil {
			continue
		}
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			continue
		}
		if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
			m.logger.Warn("sink closed connection", ports.Err(err))
		}
		return
	}
}

// dropConn detaches conn from the manager if still current and closes
// it. Closing also unblocks a watcher read on the same connection.
func (m *Manager) dropConn(conn net.Conn) {
	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()
	conn.Close()
}

func (m *Manager) terminate() {
	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	m.setState(StateTerminated)
}

// wait sleeps for ReconnectDelay. It returns false if ctx was canceled
// during the wait.
func (m *Manager) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(m.cfg.ReconnectDelay):
		return true
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	previous := m.state
	m.state = s
	m.mu.Unlock()

	if previous == s {
		return
	}
	if s == StateConnected {
		m.metrics.ConnectionState.Set(1)
	} else {
		m.metrics.ConnectionState.Set(0)
	}
	if m.cfg.OnStateChange != nil {
		m.cfg.OnStateChange(previous, s)
	}
}

// Ensure Manager implements the frame sink port.
var _ ports.FrameSink = (*Manager)(nil)
