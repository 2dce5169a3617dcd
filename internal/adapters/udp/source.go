// Package udp implements the gateway's datagram source: one UDP socket
// bound for broadcast reception, exposed as a blocking receive loop.
package udp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/bcast-labs/bcastgw/internal/domain"
	"github.com/bcast-labs/bcastgw/internal/ports"
	"github.com/bcast-labs/bcastgw/pkg/frame"
)

// Source reads broadcast datagrams from a single bound UDP socket.
// If the forwarding loop falls behind, the OS socket buffer overflows
// and datagrams are lost silently; that loss is accepted and never
// surfaced as an error.
type Source struct {
	conn   *net.UDPConn
	logger ports.Logger
	buf    []byte
}

// Bind binds a UDP socket to (bindAddress, port) with address reuse
// and broadcast reception enabled. A bind failure indicates
// misconfiguration and is returned to the caller as fatal; it is
// never retried.
func Bind(ctx context.Context, bindAddress string, port int, logger ports.Logger) (*Source, error) {
	lc := net.ListenConfig{Control: controlSocket}

	addr := net.JoinHostPort(bindAddress, strconv.Itoa(port))
	pc, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind udp %s: %w", addr, err)
	}

	conn, ok := pc.(*net.UDPConn)
	if !ok {
		pc.Close()
		return nil, fmt.Errorf("bind udp %s: unexpected conn type %T", addr, pc)
	}

	logger.Info("udp listener started",
		ports.String("addr", conn.LocalAddr().String()),
	)

	return &Source{
		conn:   conn,
		logger: logger,
		buf:    make([]byte, frame.MaxDatagramSize),
	}, nil
}

// Next blocks until a datagram arrives and returns a copy of its
// payload with the sender address. It returns ctx.Err() if the context
// was canceled (the socket is closed to unblock the read) and the
// underlying error on any other socket failure.
func (s *Source) Next(ctx context.Context) (domain.Datagram, error) {
	n, sender, err := s.conn.ReadFromUDP(s.buf)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Datagram{}, ctx.Err()
		}
		if errors.Is(err, net.ErrClosed) {
			return domain.Datagram{}, net.ErrClosed
		}
		return domain.Datagram{}, fmt.Errorf("udp receive: %w", err)
	}

	// The receive buffer is reused; hand out a copy the pipeline owns.
	payload := make([]byte, n)
	copy(payload, s.buf[:n])

	return domain.Datagram{Payload: payload, Sender: sender}, nil
}

// LocalAddr returns the bound socket address.
func (s *Source) LocalAddr() string {
	return s.conn.LocalAddr().String()
}

// Close releases the socket and unblocks a pending Next.
func (s *Source) Close() error {
	return s.conn.Close()
}

// Ensure Source implements the datagram source port.
var _ ports.DatagramSource = (*Source)(nil)
