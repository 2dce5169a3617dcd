// Package gateway provides an embeddable UDP broadcast to TCP
// gateway. It binds a UDP socket, maintains one outbound TCP
// connection to a sink, and forwards each datagram as a
// length-prefixed frame.
//
// Example usage:
//
//	cfg := gateway.Config{TCPHost: "collector.internal"}
//	g, err := gateway.New(cfg, gateway.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := g.Start(ctx); err != nil {
//	    return err
//	}
//	defer g.Stop(context.Background())
//
// Datagrams received while the sink is unreachable are dropped, not
// buffered; the sink reconnects automatically with a configurable
// delay. See the frame package for the wire format consumers read.
package gateway
