package frame

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// HeaderSize is the number of bytes in the length prefix.
	HeaderSize = 4

	// MaxDatagramSize is the largest payload a single frame can carry.
	// It matches the maximum UDP payload over IPv4 (65535 minus the
	// 8-byte UDP header and 20-byte IP header), so every datagram the
	// gateway can receive fits in one frame.
	MaxDatagramSize = 65507
)

// Encode returns a frame carrying payload: a 4-byte big-endian length
// prefix followed by the payload bytes. The payload length is bounded
// by the UDP receive path, so Encode has no error conditions.
func Encode(payload []byte) []byte {
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[:HeaderSize], uint32(len(payload)))
	copy(buf[HeaderSize:], payload)
	return buf
}

// Read reads one frame from r and returns its payload.
//
// It returns io.EOF when the stream closes cleanly before any byte of
// the next frame arrives, ErrIncompleteFrame (wrapping the cause) when
// the stream closes mid-frame, and ErrFrameTooLarge when the length
// prefix exceeds MaxDatagramSize, which indicates a corrupt or
// misaligned stream.
func Read(r io.Reader) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: reading length prefix: %v", ErrIncompleteFrame, err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > MaxDatagramSize {
		return nil, fmt.Errorf("%w: length %d", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: reading %d payload bytes: %v", ErrIncompleteFrame, length, err)
	}
	return payload, nil
}
