package ports

// FrameSink accepts encoded frames for delivery to the remote sink.
// The gateway's connection manager implements it.
type FrameSink interface {
	// Send hands frame to the live connection. It returns true if the
	// frame was written to the OS send buffer, false if no connection
	// exists or the write failed. It never blocks waiting for a
	// connection and never returns an error; transient connection
	// failures are handled behind this interface.
	Send(frame []byte) bool
}
