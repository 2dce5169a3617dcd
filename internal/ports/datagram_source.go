package ports

import (
	"context"

	"github.com/bcast-labs/bcastgw/internal/domain"
)

// DatagramSource produces the infinite sequence of UDP datagrams the
// gateway forwards. Implementations own one bound UDP socket.
type DatagramSource interface {
	// Next blocks until a datagram arrives and returns it.
	// It returns ctx.Err() once the context is canceled. Any other
	// error is a fatal socket failure; the sequence does not resume.
	Next(ctx context.Context) (domain.Datagram, error)

	// LocalAddr returns the bound address as a string, for logging.
	LocalAddr() string

	// Close releases the socket. It unblocks a pending Next.
	Close() error
}
