// Package frame implements the length-prefixed wire format the gateway
// writes to its TCP sink.
//
// Each UDP datagram becomes exactly one frame on the stream:
//
//	byte 0-3: payload length, unsigned, big-endian
//	byte 4..: payload (opaque bytes, exactly length bytes)
//
// A consumer reads 4 bytes, interprets them as a big-endian unsigned
// 32-bit length L, then reads exactly L bytes as one message, and
// repeats until the stream closes:
//
//	for {
//	    msg, err := frame.Read(conn)
//	    if errors.Is(err, io.EOF) {
//	        break // clean close
//	    }
//	    if err != nil {
//	        // stream closed mid-frame or corrupt
//	    }
//	    handle(msg)
//	}
//
// The gateway itself only encodes; Read exists for downstream consumers.
package frame
