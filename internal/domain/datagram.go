package domain

import "net"

// Datagram is one UDP datagram as received from the socket.
// The payload is owned by the pipeline from receive until it is
// forwarded or dropped; it is never persisted.
type Datagram struct {
	// Payload is the raw datagram bytes, 0 to 65507 bytes.
	Payload []byte

	// Sender is the source address of the datagram.
	Sender *net.UDPAddr
}
