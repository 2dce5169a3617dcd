package frame

import "errors"

// Errors returned by Read. Both can be checked with errors.Is.
var (
	// ErrIncompleteFrame indicates the stream closed partway through a
	// frame, after the first byte of the length prefix and before the
	// last byte of the payload.
	ErrIncompleteFrame = errors.New("frame: incomplete frame")

	// ErrFrameTooLarge indicates a length prefix larger than any UDP
	// datagram can be, meaning the stream is corrupt or misaligned.
	ErrFrameTooLarge = errors.New("frame: frame too large")
)
