package tcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"testing"
	"time"

	logAdapter "github.com/bcast-labs/bcastgw/internal/adapters/log"
	"github.com/bcast-labs/bcastgw/internal/metrics"
	"github.com/bcast-labs/bcastgw/pkg/frame"
)

func testConfig(host string, port int) Config {
	return Config{
		Host:            host,
		Port:            port,
		ReconnectDelay:  50 * time.Millisecond,
		LivenessTimeout: 50 * time.Millisecond,
	}
}

func newTestManager(cfg Config) *Manager {
	return NewManager(cfg, logAdapter.NewNoopLogger(), metrics.NewRegistry())
}

// waitFor polls cond until it returns true or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateDisconnected, "Disconnected"},
		{StateConnecting, "Connecting"},
		{StateConnected, "Connected"},
		{StateTerminated, "Terminated"},
		{State(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestSendWithoutConnection(t *testing.T) {
	m := newTestManager(testConfig("127.0.0.1", 1))

	if m.Send(frame.Encode([]byte("hello"))) {
		t.Error("Send() = true without a connection, want false")
	}
	if got := m.State(); got != StateDisconnected {
		t.Errorf("State() = %v, want Disconnected", got)
	}
}

func TestSendWhileConnecting(t *testing.T) {
	dialing := make(chan struct{})
	block := make(chan struct{})
	cfg := testConfig("127.0.0.1", 1)
	cfg.Dial = func(ctx context.Context, addr string) (net.Conn, error) {
		close(dialing)
		<-block
		return nil, errors.New("dial failed")
	}

	m := newTestManager(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	<-dialing
	if m.State() != StateConnecting {
		t.Errorf("State() = %v, want Connecting", m.State())
	}
	if m.Send([]byte("x")) {
		t.Error("Send() = true while connecting, want false")
	}

	close(block)
	cancel()
	<-done
}

func TestAtMostOneDialInFlight(t *testing.T) {
	var inFlight, maxInFlight int64
	cfg := testConfig("127.0.0.1", 1)
	cfg.ReconnectDelay = time.Millisecond
	cfg.Dial = func(ctx context.Context, addr string) (net.Conn, error) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			max := atomic.LoadInt64(&maxInFlight)
			if n <= max || atomic.CompareAndSwapInt64(&maxInFlight, max, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil, errors.New("dial failed")
	}

	m := newTestManager(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	if got := atomic.LoadInt64(&maxInFlight); got > 1 {
		t.Errorf("max concurrent dials = %d, want at most 1", got)
	}
}

func TestOrderingWhileConnected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	m := newTestManager(testConfig("127.0.0.1", port))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if !waitFor(t, 2*time.Second, func() bool { return m.State() == StateConnected }) {
		t.Fatalf("manager never connected, state = %v", m.State())
	}

	payloads := [][]byte{[]byte("d1"), []byte("d2"), []byte("d3")}
	for _, p := range payloads {
		if !m.Send(frame.Encode(p)) {
			t.Fatalf("Send(%q) = false while connected", p)
		}
	}

	conn := <-accepted
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i, want := range payloads {
		got, err := frame.Read(conn)
		if err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("frame %d = %q, want %q", i, got, want)
		}
	}
}

func TestReconnectAfterPeerClose(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port

	// Refuse the first connection window entirely.
	ln.Close()

	m := newTestManager(testConfig("127.0.0.1", port))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	// With no listener, frames are dropped without error.
	if m.Send(frame.Encode([]byte("hello"))) {
		t.Error("Send() = true with no listener, want false")
	}

	// Start the listener; the manager connects within one delay window.
	ln, err = net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatalf("rebind listener: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 2)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}
	}()

	if !waitFor(t, 2*time.Second, func() bool { return m.State() == StateConnected }) {
		t.Fatalf("manager never reconnected, state = %v", m.State())
	}

	if !m.Send(frame.Encode([]byte("world"))) {
		t.Fatal("Send() = false after reconnect")
	}

	conn := <-accepted
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	raw := make([]byte, 9)
	if _, err := io.ReadFull(conn, raw); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	want := []byte("\x00\x00\x00\x05world")
	if !bytes.Equal(raw, want) {
		t.Errorf("wire bytes = %q, want %q", raw, want)
	}

	// Peer closes; the watcher notices and the manager reconnects.
	conn.Close()
	if !waitFor(t, 2*time.Second, func() bool {
		select {
		case <-accepted:
			return true
		default:
			return false
		}
	}) {
		t.Error("manager did not reconnect after peer close")
	}
}

func TestSendWriteErrorDropsConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			// Close immediately to force write failures.
			conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	cfg := testConfig("127.0.0.1", port)
	cfg.ReconnectDelay = time.Second // keep the manager down after the drop
	m := newTestManager(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if !waitFor(t, 2*time.Second, func() bool { return m.State() == StateConnected }) {
		t.Fatalf("manager never connected, state = %v", m.State())
	}

	// The peer closed its side; repeated sends must start failing once
	// the OS reports the reset, and must never panic or block.
	if !waitFor(t, 2*time.Second, func() bool {
		return !m.Send(frame.Encode([]byte("payload")))
	}) {
		t.Error("Send() kept succeeding against a closed peer")
	}
}
